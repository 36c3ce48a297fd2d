package notify

import (
	"context"
	"encoding/json"
	"time"

	"marketplace-delivery/internal/models"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes dispatch events to a Kafka topic. Providers
// consume the topic and answer with inbound SubmitQuote calls, so the
// fan-out is message passing rather than a synchronous fan-in.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier builds a producer for the given brokers and topic.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &KafkaNotifier{writer: w}
}

// quoteRequestEvent is the wire shape of a solicitation event. Each
// addressed provider receives its own message keyed by provider id.
type quoteRequestEvent struct {
	Type       string    `json:"type"`
	RequestID  string    `json:"request_id"`
	ProviderID string    `json:"provider_id"`
	ItemCount  int       `json:"item_count"`
	Subtotal   int64     `json:"subtotal"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (k *KafkaNotifier) QuoteRequestOpened(ctx context.Context, req *models.QuoteRequest, cart *models.CartSession) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msgs := make([]kafka.Message, 0, len(req.ProviderIDs))
	for _, providerID := range req.ProviderIDs {
		ev := quoteRequestEvent{
			Type:       "quote_request_opened",
			RequestID:  req.ID,
			ProviderID: providerID,
			ItemCount:  len(cart.Items),
			Subtotal:   cart.Subtotal,
			ExpiresAt:  req.ExpiresAt,
		}
		b, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{Key: []byte(providerID), Value: b})
	}
	return k.writer.WriteMessages(ctx, msgs...)
}

// DeliveryCodeIssued is a no-op on the bus: the code goes to the shop
// owner by email only, never to the provider-facing topic.
func (k *KafkaNotifier) DeliveryCodeIssued(ctx context.Context, order *models.Order, ownerEmail, code string) error {
	return nil
}

// Close flushes and closes the underlying writer.
func (k *KafkaNotifier) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
