package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/duality-2/SilkRoad/internal/adapter/http/middleware"
	domain "github.com/duality-2/SilkRoad/internal/entity"
	"github.com/duality-2/SilkRoad/internal/logging"
	"github.com/duality-2/SilkRoad/internal/usecase"
	"github.com/gin-gonic/gin"
)

const defaultTimeout = 3 * time.Second

type errorResp struct {
	Error  string         `json:"error"`
	Notice *domain.Notice `json:"notice,omitempty"`
}

// classify maps an operation error to an HTTP status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrCartEmpty):
		return http.StatusConflict, "cart_empty"
	case errors.Is(err, usecase.ErrPaymentPending):
		return http.StatusConflict, "payment_pending"
	case errors.Is(err, usecase.ErrPaymentDeclined):
		return http.StatusPaymentRequired, "payment_declined"
	case errors.Is(err, usecase.ErrIllegalTransition):
		return http.StatusUnprocessableEntity, "illegal_transition"
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusUnprocessableEntity, "index_out_of_range"
	case errors.Is(err, domain.ErrDetailsIncomplete),
		errors.Is(err, domain.ErrUnknownPaymentMethod),
		errors.Is(err, domain.ErrUPIRequired),
		errors.Is(err, domain.ErrCardIncomplete),
		errors.Is(err, usecase.ErrCredentialsRequired),
		errors.Is(err, usecase.ErrSignupIncomplete),
		errors.Is(err, usecase.ErrInvalidAmount),
		errors.Is(err, usecase.ErrTrackingIDRequired),
		errors.Is(err, usecase.ErrContactIncomplete):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

func writeError(c *gin.Context, err error, n *domain.Notice) {
	status, code := classify(err)
	if n == nil {
		n, _ = usecase.NoticeOf(err)
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, errorResp{Error: code, Notice: n})
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, errorResp{Error: "bad_request"})
}

// sessionRunner runs session operations for the session named by the token.
type sessionRunner struct {
	sessions *usecase.Registry
	timeout  time.Duration
}

func (r sessionRunner) run(c *gin.Context, op func(ctx context.Context, s *usecase.Session) (usecase.Result, error)) {
	sid := middleware.SessionID(c)
	timeout := r.timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()
	ctx = logging.WithCtx(ctx, logging.From(c).With("session_id", sid))

	res, err := r.sessions.Do(ctx, sid, func(s *usecase.Session) (usecase.Result, error) {
		return op(ctx, s)
	})
	if err != nil {
		writeError(c, err, res.Notice)
		return
	}
	c.JSON(http.StatusOK, res)
}

func view(_ context.Context, s *usecase.Session) (usecase.Result, error) {
	return usecase.Result{View: s.View()}, nil
}
