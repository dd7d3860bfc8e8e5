package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/duality-2/SilkRoad/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Topology names the exchange, routing key and queue for order-confirmed events.
type Topology struct {
	Exchange   string
	RoutingKey string
	Queue      string
}

func DefaultTopology() Topology {
	return Topology{
		Exchange:   "silkroad.events",
		RoutingKey: "order.confirmed",
		Queue:      "order.confirmed.q",
	}
}

// Channel is the subset of *amqp.Channel the producer needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitProducer implements usecase.OrderEventPublisher
type RabbitProducer struct {
	ch   Channel
	topo Topology
}

// NewRabbitProducer sets up the exchange, queue, and binding once at startup.
func NewRabbitProducer(ch Channel, topo Topology) (*RabbitProducer, error) {
	if err := Declare(ch, topo); err != nil {
		return nil, err
	}
	return &RabbitProducer{ch: ch, topo: topo}, nil
}

// Declare creates the durable topic exchange and queue and binds them.
func Declare(ch Channel, topo Topology) error {
	if err := ch.ExchangeDeclare(
		topo.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		topo.Queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, topo.RoutingKey, topo.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	return nil
}

// PublishOrderConfirmed sends an "order.confirmed" event to the exchange.
func (p *RabbitProducer) PublishOrderConfirmed(ctx context.Context, msg usecase.OrderConfirmedMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.SessionID + ":" + msg.ConfirmedAt.Format("20060102T150405.000000000"),
		Timestamp:    msg.ConfirmedAt,
		Body:         body,
	}

	if err := p.ch.PublishWithContext(ctx, p.topo.Exchange, p.topo.RoutingKey, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

var _ usecase.OrderEventPublisher = (*RabbitProducer)(nil)
