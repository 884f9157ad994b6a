package queue

import (
	"context"
	"strconv"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/emrgen/headline/internal/compress"
	"github.com/sirupsen/logrus"
)

const kafkaFlushTimeoutMs = 5000

var _ HeadlineQueue = (*Kafka)(nil)

// Kafka produces changes to a topic, keyed by headline ID so the changes of
// one headline stay ordered within a partition.
type Kafka struct {
	producer *kafka.Producer
	topic    string
	encoder  compress.Compress
}

func NewKafka(brokers, topic string, encoder compress.Compress) (*Kafka, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}

	return &Kafka{producer: producer, topic: topic, encoder: encoder}, nil
}

func (k *Kafka) PublishChange(ctx context.Context, event *HeadlineEvent) error {
	payload, err := Encode(k.encoder, event)
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Key:            []byte(strconv.FormatUint(uint64(event.HeadlineID), 10)),
		Value:          payload,
	}, delivery)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		msg, ok := e.(*kafka.Message)
		if !ok {
			return nil
		}
		return msg.TopicPartition.Error
	}
}

func (k *Kafka) Close() error {
	if remaining := k.producer.Flush(kafkaFlushTimeoutMs); remaining > 0 {
		logrus.Warnf("kafka queue closed with %d undelivered changes", remaining)
	}
	k.producer.Close()
	return nil
}
