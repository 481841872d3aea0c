package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/xavierca1/lead-caller/internal/entity"
	"github.com/xavierca1/lead-caller/internal/infra/integration/vapi"
	"github.com/xavierca1/lead-caller/internal/infra/queue"
	"github.com/xavierca1/lead-caller/pkg/logging"
)

type RecordCallEventUseCase struct {
	Repo     entity.LeadRepositoryInterface
	Producer QueueProducerInterface // optional
	Logger   *logging.Logger

	now func() time.Time
}

func NewRecordCallEventUseCase(
	repo entity.LeadRepositoryInterface,
	producer QueueProducerInterface,
	logger *logging.Logger,
) *RecordCallEventUseCase {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecordCallEventUseCase{
		Repo:     repo,
		Producer: producer,
		Logger:   logger,
		now:      time.Now,
	}
}

// Execute stores ev as the lead's last event and, for final outcomes,
// overwrites the status regardless of its current value. Events that match
// no lead are reported as unmatched, not as errors.
func (uc *RecordCallEventUseCase) Execute(ctx context.Context, ev vapi.Event) (*RecordCallEventOutput, error) {
	lead, err := uc.resolve(ctx, ev)
	if err != nil {
		return nil, &InternalFault{Op: "resolve lead", Err: err}
	}
	if lead == nil {
		uc.Logger.Info("webhook: no matching lead", "lead_id", ev.LeadID, "call_id", ev.CallID, "event", ev.Name)
		return &RecordCallEventOutput{Matched: false}, nil
	}

	ts := uc.now().UTC()
	updated, err := uc.Repo.Update(ctx, lead.ID, func(l *entity.Lead) {
		l.LastEvent = &entity.CallEvent{
			Event:         ev.Name,
			Transcription: ev.Transcription,
			Raw:           ev.Raw,
			Ts:            ts,
		}
		if entity.IsTerminal(ev.Name) {
			l.Status = entity.LeadStatus(ev.Name)
		}
	})
	if errors.Is(err, entity.ErrLeadNotFound) {
		return &RecordCallEventOutput{Matched: false}, nil
	}
	if err != nil {
		return nil, &InternalFault{Op: "update lead", Err: err}
	}

	uc.Logger.Info("webhook: event recorded", "lead_id", updated.ID, "event", ev.Name, "status", updated.Status)
	uc.publish(ctx, updated, ev, ts)
	return &RecordCallEventOutput{Matched: true, Lead: updated}, nil
}

// resolve prefers the lead id echoed in the call context. Only when no lead
// id is present does it fall back to the provider call id.
func (uc *RecordCallEventUseCase) resolve(ctx context.Context, ev vapi.Event) (*entity.Lead, error) {
	var (
		lead *entity.Lead
		err  error
	)
	switch {
	case ev.LeadID != "":
		lead, err = uc.Repo.Get(ctx, ev.LeadID)
	case ev.CallID != "":
		lead, err = uc.Repo.FindByCallID(ctx, ev.CallID)
	default:
		return nil, nil
	}
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, nil
	}
	return lead, err
}

func (uc *RecordCallEventUseCase) publish(ctx context.Context, lead *entity.Lead, ev vapi.Event, ts time.Time) {
	if uc.Producer == nil {
		return
	}
	payload := queue.CallEventPayload{
		LeadID:        lead.ID,
		Name:          lead.DisplayName(),
		Phone:         lead.Phone,
		Event:         ev.Name,
		Status:        string(lead.Status),
		VapiCallID:    lead.VapiCallID,
		Transcription: ev.Transcription,
		OccurredAt:    ts,
	}
	if err := uc.Producer.PublishCallEvent(ctx, payload); err != nil {
		uc.Logger.Warn("webhook: publish call event failed", "lead_id", lead.ID, "error", err)
	}
}
