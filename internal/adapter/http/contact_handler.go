package http

import (
	"context"
	"net/http"
	"time"

	"github.com/duality-2/SilkRoad/internal/logging"
	"github.com/duality-2/SilkRoad/internal/usecase"
	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contact *usecase.ContactService
	timeout time.Duration
}

func NewContactHandler(contact *usecase.ContactService, timeout time.Duration) *ContactHandler {
	return &ContactHandler{contact: contact, timeout: timeout}
}

// POST /v1/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req usecase.ContactMessage
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	ctx = logging.WithCtx(ctx, logging.From(c))

	n, err := h.contact.Submit(ctx, req)
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": n})
}
