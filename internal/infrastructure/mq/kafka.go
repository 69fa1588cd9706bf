package mq

import (
	"log"

	"github.com/IBM/sarama"

	"giftshop/internal/config"
)

var kafkaProducer sarama.SyncProducer

// InitKafka sets up the synchronous producer used by the outbox sender.
func InitKafka(cfg *config.KafkaConfig) sarama.SyncProducer {
	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Producer.RequiredAcks = sarama.WaitForAll
	kafkaConfig.Producer.Retry.Max = 3
	kafkaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, kafkaConfig)
	if err != nil {
		log.Fatalf("failed to create Kafka producer: %v", err)
	}

	kafkaProducer = producer
	log.Println("Kafka producer ready")
	return producer
}

// SendMessage publishes one message through the shared producer.
func SendMessage(topic, key, value string) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.StringEncoder(value),
	}

	_, _, err := kafkaProducer.SendMessage(msg)
	return err
}

// NewConsumerGroup creates the consumer group used by the catalog
// ingest job. Oldest offset: asset drafts are idempotent, replaying
// the backlog on a fresh group is safe.
func NewConsumerGroup(cfg *config.KafkaConfig) (sarama.ConsumerGroup, error) {
	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	kafkaConfig.Consumer.Return.Errors = true

	return sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, kafkaConfig)
}

// CloseKafka shuts the producer down.
func CloseKafka() {
	if kafkaProducer != nil {
		kafkaProducer.Close()
	}
}
