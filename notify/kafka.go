package notify

import (
	"encoding/json"
	"fmt"
	"log"

	"newsbrief/types"

	"github.com/IBM/sarama"
)

// Notifier publishes pipeline run summaries to Kafka so downstream consumers
// (dashboards, alerting) can react to completed runs.
type Notifier struct {
	producer sarama.SyncProducer
	topic    string
}

// NotifierConfig holds Kafka producer configuration.
type NotifierConfig struct {
	Brokers []string
	Topic   string
}

// NewNotifier creates a Kafka-backed run notifier.
func NewNotifier(config NotifierConfig) (*Notifier, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &Notifier{producer: producer, topic: config.Topic}, nil
}

// PublishRunCompleted sends a run summary keyed by run ID.
func (n *Notifier) PublishRunCompleted(result *types.RunResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}

	partition, offset, err := n.producer.SendMessage(&sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(result.RunID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish run result: %w", err)
	}

	log.Printf("Published run %s to %s (partition %d, offset %d)", result.RunID, n.topic, partition, offset)
	return nil
}

// Close shuts down the underlying producer.
func (n *Notifier) Close() error {
	return n.producer.Close()
}
