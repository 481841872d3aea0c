package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/lead-caller/pkg/logging"
)

// CallEventHandler processes one consumed call event. A returned error nacks
// the delivery without requeue, routing it to the DLQ.
type CallEventHandler interface {
	HandleCallEvent(ctx context.Context, payload CallEventPayload) error
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type Worker struct {
	Channel *amqp.Channel
	Handler CallEventHandler
	Logger  *logging.Logger
}

func NewWorker(ch *amqp.Channel, handler CallEventHandler, logger *logging.Logger) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{Channel: ch, Handler: handler, Logger: logger}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	w.Logger.Info("worker consuming", "queue", queueName)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				w.Logger.Warn("worker delivery channel closed", "queue", queueName)
				return nil
			}
			w.process(ctx, d.Body, d)
		}
	}
}

func (w *Worker) process(ctx context.Context, body []byte, ack acknowledger) {
	var payload CallEventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		w.Logger.Error("worker: malformed call event", "error", err)
		ack.Nack(false, false)
		return
	}

	if err := w.Handler.HandleCallEvent(ctx, payload); err != nil {
		w.Logger.Error("worker: call event failed", "lead_id", payload.LeadID, "event", payload.Event, "error", err)
		ack.Nack(false, false)
		return
	}

	w.Logger.Info("worker: call event handled", "lead_id", payload.LeadID, "event", payload.Event)
	ack.Ack(false)
}
