package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

func baseConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_6_0_0
	cfg.Net.DialTimeout = 5 * time.Second
	return cfg
}

// NewSyncProducer returns a producer that waits for all in-sync replicas.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := ProducerConfig()
	return sarama.NewSyncProducer(brokers, cfg)
}

func ProducerConfig() *sarama.Config {
	cfg := baseConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	return cfg
}

func NewGroup(brokers []string, groupID string) (sarama.ConsumerGroup, error) {
	cfg := baseConfig()
	cfg.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRange
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	return sarama.NewConsumerGroup(brokers, groupID, cfg)
}
