package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// CallEventPayload is published for every webhook event matched to a lead.
type CallEventPayload struct {
	LeadID        string          `json:"lead_id"`
	Name          string          `json:"name,omitempty"`
	Phone         string          `json:"phone"`
	Event         string          `json:"event"`
	Status        string          `json:"status"`
	VapiCallID    string          `json:"vapi_call_id,omitempty"`
	Transcription json.RawMessage `json:"transcription,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch channelPublisher
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishCallEvent(ctx context.Context, payload CallEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("queue: encode call event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    uuid.NewString(),
			Timestamp:    payload.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("queue: publish call event: %w", err)
	}
	return nil
}
