package queue

import (
	"context"
	"errors"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeAck struct {
	mu      sync.Mutex
	acked   int
	nacked  int
	requeue []bool
	done    chan struct{}
}

func newFakeAck() *fakeAck { return &fakeAck{done: make(chan struct{}, 16)} }

func (a *fakeAck) Ack(uint64, bool) error {
	a.mu.Lock()
	a.acked++
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	a.nacked++
	a.requeue = append(a.requeue, requeue)
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *fakeAck) Reject(tag uint64, requeue bool) error { return a.Nack(tag, false, requeue) }

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	exchanges  []string
	queues     []string
	binds      [][3]string
	published  []published
	prefetch   int
	consumed   map[string]chan amqp.Delivery
	publishErr error
	declareErr error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{consumed: map[string]chan amqp.Delivery{}}
}

func (c *fakeChannel) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	if c.declareErr != nil {
		return c.declareErr
	}
	c.exchanges = append(c.exchanges, name)
	return nil
}

func (c *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	c.queues = append(c.queues, name)
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	c.binds = append(c.binds, [3]string{name, key, exchange})
	return nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, published{exchange, key, msg})
	return nil
}

func (c *fakeChannel) Qos(n, _ int, _ bool) error {
	c.prefetch = n
	return nil
}

func (c *fakeChannel) Consume(queue, _ string, _, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	ch, ok := c.consumed[queue]
	if !ok {
		return nil, errors.New("no such queue")
	}
	return ch, nil
}
