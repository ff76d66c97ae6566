package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"shoplike-service/internal/entity"
)

// KafkaProducer publishes order lifecycle events to the order topic.
type KafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(writer *kafka.Writer) *KafkaProducer {
	return &KafkaProducer{writer: writer}
}

// PublishOrderEvent writes the order as JSON, keyed order-<verb>-<id>,
// e.g. order-created-1 or order-delivered-1.
func (p *KafkaProducer) PublishOrderEvent(ctx context.Context, order *entity.Order, verb string) error {
	orderJSON, err := json.Marshal(order)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s-%d", verb, order.ID)),
		Value: orderJSON,
	}

	return p.writer.WriteMessages(ctx, msg)
}
