package queue

import (
	"context"
	"sync/atomic"

	"github.com/duality-2/SilkRoad/internal/logging"
	"github.com/duality-2/SilkRoad/internal/usecase"
)

// OrderConfirmedHandler hands confirmed orders to the notifier.
// Use it with JSONHandler[usecase.OrderConfirmedMsg].
type OrderConfirmedHandler struct {
	Notifier usecase.ConfirmationNotifier
}

func NewOrderConfirmedHandler(n usecase.ConfirmationNotifier) *OrderConfirmedHandler {
	return &OrderConfirmedHandler{Notifier: n}
}

func (h *OrderConfirmedHandler) HandleConfirmed(ctx context.Context, msg usecase.OrderConfirmedMsg) error {
	return h.Notifier.NotifyOrderConfirmed(ctx, msg)
}

// Handler returns the raw delivery handler to register on a Router.
func (h *OrderConfirmedHandler) Handler() Handler {
	return JSONHandler[usecase.OrderConfirmedMsg]{HandleFunc: h.HandleConfirmed}
}

// LogNotifier stands in for an e-mail or SMS gateway: it logs the
// confirmation that would be sent.
type LogNotifier struct {
	sent atomic.Int64
}

func (n *LogNotifier) NotifyOrderConfirmed(ctx context.Context, msg usecase.OrderConfirmedMsg) error {
	n.sent.Add(1)
	logging.FromCtx(ctx).Info("order confirmation dispatched",
		"session_id", msg.SessionID,
		"customer", msg.CustomerName,
		"total", msg.Total,
		"method", msg.Method,
	)
	return nil
}

func (n *LogNotifier) Sent() int64 { return n.sent.Load() }

var _ usecase.ConfirmationNotifier = (*LogNotifier)(nil)
