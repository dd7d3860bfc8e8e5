package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/duality-2/SilkRoad/internal/logging"
	"github.com/duality-2/SilkRoad/internal/usecase"
)

// HandlerFunc processes a decoded event.
type HandlerFunc func(ctx context.Context, ev usecase.CartActivityMsg) error

// Consumer consumes a topic with a single handler.
type Consumer struct {
	Group  sarama.ConsumerGroup
	Topics []string
	Handle HandlerFunc
	Logger *slog.Logger
}

func NewConsumer(group sarama.ConsumerGroup, topics []string, h HandlerFunc) *Consumer {
	return &Consumer{
		Group:  group,
		Topics: topics,
		Handle: h,
		Logger: logging.New("kafka-consumer"),
	}
}

// Start blocks until ctx is cancelled or the group fails.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &cgHandler{handle: c.Handle, logger: c.Logger}
	for {
		if err := c.Group.Consume(ctx, c.Topics, handler); err != nil {
			return err
		}
		// Consume returns on rebalance or cancellation.
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

type cgHandler struct {
	handle HandlerFunc
	logger *slog.Logger
}

func (h *cgHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *cgHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *cgHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var ev usecase.CartActivityMsg
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			h.logger.Warn("kafka decode error", "err", err, "offset", msg.Offset)
			// mark to avoid reprocessing poison
			sess.MarkMessage(msg, "decode-error")
			continue
		}
		if err := h.handle(sess.Context(), ev); err != nil {
			h.logger.Error("handler error", "err", err, "key", string(msg.Key), "offset", msg.Offset)
			// left unmarked, redelivered after the next rebalance
			continue
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}

// AuditLog writes one log line per cart activity event.
func AuditLog(l *slog.Logger) HandlerFunc {
	return func(_ context.Context, ev usecase.CartActivityMsg) error {
		l.Info("cart activity",
			"session_id", ev.SessionID,
			"op", ev.Op,
			"item", ev.ItemName,
			"quantity", ev.Quantity,
			"cart_total", ev.CartTotal,
			"item_count", ev.ItemCount,
		)
		return nil
	}
}
