package kafka

import (
	"context"
	"encoding/json"
	"time"

	"experience-gift-fulfillment/internal/core/domain"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher streams fulfilled-order events to downstream consumers
// (analytics, partner integrations). Delivery is best-effort and fully
// decoupled from the webhook response: a broker outage never fails
// fulfillment.
type Publisher struct {
	writer *kafkago.Writer
	log    zerolog.Logger
}

// NewPublisher creates a Kafka publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string, log zerolog.Logger) *Publisher {
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireOne,
			Async:        false,
		},
		log: log,
	}
}

// PublishFulfilled emits one message keyed by payment reference, so all
// deliveries for a charge land in the same partition.
func (p *Publisher) PublishFulfilled(result *domain.FulfillmentResult) {
	go func() {
		value, err := json.Marshal(result)
		if err != nil {
			p.log.Error().Err(err).Str("reference", result.PaymentReference).Msg("kafka: marshal fulfilled event")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err = p.writer.WriteMessages(ctx, kafkago.Message{
			Key:   []byte(result.PaymentReference),
			Value: value,
			Time:  time.Now(),
		})
		if err != nil {
			p.log.Warn().Err(err).Str("reference", result.PaymentReference).Msg("kafka: publish fulfilled event failed")
			return
		}
		p.log.Debug().Str("reference", result.PaymentReference).Msg("kafka: fulfilled event published")
	}()
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
