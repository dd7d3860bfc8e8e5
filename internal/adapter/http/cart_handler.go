package http

import (
	"context"
	"strconv"
	"time"

	"github.com/duality-2/SilkRoad/internal/usecase"
	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	sessionRunner
}

func NewCartHandler(sessions *usecase.Registry, timeout time.Duration) *CartHandler {
	return &CartHandler{sessionRunner{sessions: sessions, timeout: timeout}}
}

type addItemReq struct {
	Name         string `json:"name" binding:"required"`
	DisplayPrice string `json:"displayPrice"`
	ImageRef     string `json:"imageRef"`
}

type setQuantityReq struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type changeQuantityReq struct {
	Delta *int `json:"delta" binding:"required"`
}

func (h *CartHandler) Get(c *gin.Context) { h.run(c, view) }

func (h *CartHandler) Add(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.run(c, func(ctx context.Context, s *usecase.Session) (usecase.Result, error) {
		return s.AddItem(ctx, req.Name, req.DisplayPrice, req.ImageRef)
	})
}

// PUT /v1/cart/items/:index
func (h *CartHandler) SetQuantity(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var req setQuantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.run(c, func(ctx context.Context, s *usecase.Session) (usecase.Result, error) {
		return s.SetQuantity(ctx, index, *req.Quantity)
	})
}

// PATCH /v1/cart/items/:index
func (h *CartHandler) ChangeQuantity(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var req changeQuantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.run(c, func(ctx context.Context, s *usecase.Session) (usecase.Result, error) {
		return s.ChangeQuantity(ctx, index, *req.Delta)
	})
}

func (h *CartHandler) Remove(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	h.run(c, func(ctx context.Context, s *usecase.Session) (usecase.Result, error) {
		return s.RemoveItem(ctx, index)
	})
}

func (h *CartHandler) Clear(c *gin.Context) {
	h.run(c, func(ctx context.Context, s *usecase.Session) (usecase.Result, error) {
		return s.ClearCart(ctx)
	})
}

func indexParam(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, err)
		return 0, false
	}
	return i, true
}
