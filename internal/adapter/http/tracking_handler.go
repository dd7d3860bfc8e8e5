package http

import (
	"context"
	"net/http"
	"time"

	"github.com/duality-2/SilkRoad/internal/usecase"
	"github.com/gin-gonic/gin"
)

type TrackingHandler struct {
	tracking *usecase.TrackingService
	timeout  time.Duration
}

func NewTrackingHandler(tracking *usecase.TrackingService, timeout time.Duration) *TrackingHandler {
	return &TrackingHandler{tracking: tracking, timeout: timeout}
}

// GET /v1/tracking/:trackingId
func (h *TrackingHandler) Track(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	sh, err := h.tracking.Track(ctx, c.Param("trackingId"))
	if err != nil {
		writeError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, sh)
}
