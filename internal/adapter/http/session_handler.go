package http

import (
	"context"
	"net/http"
	"time"

	"github.com/duality-2/SilkRoad/internal/adapter/http/middleware"
	"github.com/duality-2/SilkRoad/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionHandler struct {
	sessionRunner
	auth *middleware.SessionAuth
}

func NewSessionHandler(sessions *usecase.Registry, auth *middleware.SessionAuth, timeout time.Duration) *SessionHandler {
	return &SessionHandler{sessionRunner: sessionRunner{sessions: sessions, timeout: timeout}, auth: auth}
}

type sessionResp struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"`
	View      usecase.View `json:"view"`
}

// POST /v1/sessions
// Starts a fresh visitor session and returns its bearer token.
func (h *SessionHandler) Start(c *gin.Context) {
	sid := uuid.NewString()
	token, ttl, err := h.auth.Issue(sid)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResp{Error: "server_error"})
		return
	}

	res, _ := h.sessions.Do(c.Request.Context(), sid, func(s *usecase.Session) (usecase.Result, error) {
		return view(c.Request.Context(), s)
	})
	c.JSON(http.StatusCreated, sessionResp{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(ttl / time.Second),
		View:      res.View,
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *SessionHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.run(c, func(ctx context.Context, s *usecase.Session) (usecase.Result, error) {
		return s.Login(ctx, req.Email, req.Password)
	})
}

type signupReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *SessionHandler) Signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.run(c, func(ctx context.Context, s *usecase.Session) (usecase.Result, error) {
		return s.Signup(ctx, req.Name, req.Email, req.Password, req.ConfirmPassword)
	})
}

func (h *SessionHandler) Logout(c *gin.Context) {
	h.run(c, func(ctx context.Context, s *usecase.Session) (usecase.Result, error) {
		return s.Logout(ctx)
	})
}
