package usecase

import (
	"context"

	"github.com/xavierca1/lead-caller/internal/infra/integration/vapi"
	"github.com/xavierca1/lead-caller/internal/infra/queue"
)

type VoiceCaller interface {
	StartCall(ctx context.Context, req vapi.CallRequest) (string, error)
}

type QueueProducerInterface interface {
	PublishCallEvent(ctx context.Context, payload queue.CallEventPayload) error
}
