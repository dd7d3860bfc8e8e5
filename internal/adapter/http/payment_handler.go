package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/duality-2/SilkRoad/internal/adapter/http/middleware"
	domain "github.com/duality-2/SilkRoad/internal/entity"
	"github.com/duality-2/SilkRoad/internal/logging"
	"github.com/duality-2/SilkRoad/internal/usecase"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments *usecase.PaymentSimulator
	timeout  time.Duration
}

// timeout must cover the simulated gateway delay.
func NewPaymentHandler(payments *usecase.PaymentSimulator, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{payments: payments, timeout: timeout}
}

type paymentReq struct {
	Method string `json:"method"`
	Amount int64  `json:"amount"`
}

type paymentResp struct {
	Receipt usecase.PaymentReceipt `json:"receipt"`
	Notice  *domain.Notice         `json:"notice"`
}

// POST /v1/payments
func (h *PaymentHandler) Pay(c *gin.Context) {
	var req paymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sid := middleware.SessionID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	ctx = logging.WithCtx(ctx, logging.From(c).With("session_id", sid))

	rc, err := h.payments.Process(ctx, sid, usecase.PaymentRequest{Method: req.Method, Amount: req.Amount})
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, paymentResp{
		Receipt: rc,
		Notice:  domain.Success(fmt.Sprintf("Payment successful! Transaction ID: %s", rc.TransactionID)),
	})
}
