package http

import (
	"log/slog"

	"github.com/duality-2/SilkRoad/internal/adapter/http/middleware"
	"github.com/duality-2/SilkRoad/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Sessions *SessionHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Payments *PaymentHandler
	Tracking *TrackingHandler
	Contact  *ContactHandler
}

func NewRouter(h Handlers, auth *middleware.SessionAuth, l *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())
	if l == nil {
		l = logging.New("http")
	}
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.POST("/sessions", h.Sessions.Start)
	v1.POST("/contact", h.Contact.Submit)

	s := v1.Group("", auth.Require())
	{
		s.POST("/auth/login", h.Sessions.Login)
		s.POST("/auth/signup", h.Sessions.Signup)
		s.POST("/auth/logout", h.Sessions.Logout)

		s.GET("/cart", h.Cart.Get)
		s.DELETE("/cart", h.Cart.Clear)
		s.POST("/cart/items", h.Cart.Add)
		s.PUT("/cart/items/:index", h.Cart.SetQuantity)
		s.PATCH("/cart/items/:index", h.Cart.ChangeQuantity)
		s.DELETE("/cart/items/:index", h.Cart.Remove)

		s.GET("/checkout", h.Checkout.Get)
		s.POST("/checkout/begin", h.Checkout.Begin)
		s.POST("/checkout/details", h.Checkout.Details)
		s.POST("/checkout/back", h.Checkout.Back)
		s.POST("/checkout/confirm", h.Checkout.Confirm)
		s.POST("/checkout/reset", h.Checkout.Reset)

		s.POST("/payments", h.Payments.Pay)
		s.GET("/tracking/:trackingId", h.Tracking.Track)
	}

	return r
}
