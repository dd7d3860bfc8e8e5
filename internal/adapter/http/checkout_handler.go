package http

import (
	"context"
	"time"

	domain "github.com/duality-2/SilkRoad/internal/entity"
	"github.com/duality-2/SilkRoad/internal/usecase"
	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	sessionRunner
}

func NewCheckoutHandler(sessions *usecase.Registry, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{sessionRunner{sessions: sessions, timeout: timeout}}
}

type confirmReq struct {
	Method     string `json:"method"`
	UPIID      string `json:"upiId"`
	CardNumber string `json:"cardNumber"`
	CardExpiry string `json:"cardExpiry"`
	CardCVV    string `json:"cardCvv"`
}

func (r confirmReq) selection() domain.PaymentSelection {
	sel := domain.PaymentSelection{
		Method:     domain.PaymentMethod(r.Method),
		UPIID:      r.UPIID,
		CardNumber: r.CardNumber,
		CardExpiry: r.CardExpiry,
		CardCVV:    r.CardCVV,
	}
	if m, err := domain.ParsePaymentMethod(r.Method); err == nil {
		sel.Method = m
	}
	return sel
}

func (h *CheckoutHandler) Get(c *gin.Context) { h.run(c, view) }

func (h *CheckoutHandler) Begin(c *gin.Context) {
	h.run(c, func(ctx context.Context, s *usecase.Session) (usecase.Result, error) {
		return s.Begin(ctx)
	})
}

func (h *CheckoutHandler) Details(c *gin.Context) {
	var req domain.CheckoutDetails
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.run(c, func(ctx context.Context, s *usecase.Session) (usecase.Result, error) {
		return s.SubmitDetails(ctx, req)
	})
}

func (h *CheckoutHandler) Back(c *gin.Context) {
	h.run(c, func(ctx context.Context, s *usecase.Session) (usecase.Result, error) {
		return s.Back(ctx)
	})
}

func (h *CheckoutHandler) Confirm(c *gin.Context) {
	var req confirmReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.run(c, func(ctx context.Context, s *usecase.Session) (usecase.Result, error) {
		return s.Confirm(ctx, req.selection())
	})
}

func (h *CheckoutHandler) Reset(c *gin.Context) {
	h.run(c, func(ctx context.Context, s *usecase.Session) (usecase.Result, error) {
		return s.Reset(ctx)
	})
}
