package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/duality-2/SilkRoad/internal/logging"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer is the subset of *amqp.Channel the Router needs.
type Consumer interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Router manages multiple consumers (one per registered queue) on a single AMQP channel.
type Router struct {
	ch            Consumer
	prefetch      int
	callTimeout   time.Duration
	requeueOnErr  bool
	log           *slog.Logger
	registrations []registration
}

type registration struct {
	queueName   string
	handler     Handler
	consumerTag string
}

// --- Options ---

type RouterOption func(*Router)

func WithPrefetch(n int) RouterOption          { return func(r *Router) { r.prefetch = n } }
func WithTimeout(d time.Duration) RouterOption { return func(r *Router) { r.callTimeout = d } }
func WithRequeue(b bool) RouterOption          { return func(r *Router) { r.requeueOnErr = b } }

// NewRouter constructs a Router. Defaults: prefetch=50, timeout=10s, requeueOnErr=true.
func NewRouter(ch Consumer, opts ...RouterOption) *Router {
	r := &Router{
		ch:           ch,
		prefetch:     50,
		callTimeout:  10 * time.Second,
		requeueOnErr: true,
		log:          logging.New("rmq-router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register associates a queue with a handler. Call multiple times for multiple queues.
func (r *Router) Register(queueName string, h Handler) {
	r.registrations = append(r.registrations, registration{
		queueName:   queueName,
		handler:     h,
		consumerTag: "c_" + queueName,
	})
}

// Start begins consuming; non-blocking (spawns one goroutine per queue).
// QoS (prefetch) is set per-channel and applies to all consumers on this channel.
// Consumers stop when the channel closes.
func (r *Router) Start() error {
	if err := r.ch.Qos(r.prefetch, 0, false); err != nil {
		return err
	}

	for _, reg := range r.registrations {
		deliveries, err := r.ch.Consume(
			reg.queueName,
			reg.consumerTag,
			false, // manual ack
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		if err != nil {
			return err
		}

		go func(reg registration, msgs <-chan amqp.Delivery) {
			for d := range msgs {
				r.dispatch(reg, d)
			}
			r.log.Info("consumer stopped", "queue", reg.queueName, "tag", reg.consumerTag)
		}(reg, deliveries)
	}

	return nil
}

func (r *Router) dispatch(reg registration, d amqp.Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), r.callTimeout)
	err := reg.handler.Handle(logging.WithCtx(ctx, r.log.With("queue", reg.queueName)), d)
	cancel()

	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrPoison):
		r.log.Warn("dropping poison message", "queue", reg.queueName, "err", err, "body", string(d.Body))
		_ = d.Nack(false, false)
	default:
		r.log.Error("handler error", "queue", reg.queueName, "tag", reg.consumerTag,
			"rk", d.RoutingKey, "err", err, "requeue", r.requeueOnErr)
		_ = d.Nack(false, r.requeueOnErr)
	}
}
