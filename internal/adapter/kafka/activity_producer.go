package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/duality-2/SilkRoad/internal/usecase"
)

// ActivityProducer publishes cart activity keyed by session id, so every
// event of a session lands on the same partition in order.
type ActivityProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewActivityProducer(p sarama.SyncProducer, topic string) *ActivityProducer {
	if topic == "" {
		topic = "silkroad.cart-activity"
	}
	return &ActivityProducer{producer: p, topic: topic}
}

func (p *ActivityProducer) PublishCartActivity(ctx context.Context, msg usecase.CartActivityMsg) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.SessionID),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("op"), Value: []byte(msg.Op)},
		},
	})
	if err != nil {
		return fmt.Errorf("send activity: %w", err)
	}
	return nil
}

func (p *ActivityProducer) Close() error { return p.producer.Close() }

var _ usecase.ActivityPublisher = (*ActivityProducer)(nil)
