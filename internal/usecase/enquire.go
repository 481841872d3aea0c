package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/xavierca1/lead-caller/internal/entity"
	"github.com/xavierca1/lead-caller/internal/infra/integration/vapi"
	"github.com/xavierca1/lead-caller/pkg/logging"
)

const (
	callTriggeredMessage = "Call triggered. You should receive a call shortly."
	callFailedMessage    = "server error triggering call"
)

type CallSettings struct {
	CallerID          string
	WebhookPublicBase string
}

type EnquireUseCase struct {
	Repo     entity.LeadRepositoryInterface
	Caller   VoiceCaller
	Settings CallSettings
	Logger   *logging.Logger

	ids *LeadIDGenerator
	now func() time.Time
}

func NewEnquireUseCase(
	repo entity.LeadRepositoryInterface,
	caller VoiceCaller,
	settings CallSettings,
	logger *logging.Logger,
) *EnquireUseCase {
	if logger == nil {
		logger = logging.Default()
	}
	return &EnquireUseCase{
		Repo:     repo,
		Caller:   caller,
		Settings: settings,
		Logger:   logger,
		ids:      &LeadIDGenerator{},
		now:      time.Now,
	}
}

// Execute validates the enquiry, stores a queued lead and asks the voice API
// to call it. A failed call leaves the lead queued without a call id; there
// is no rollback and no retry.
func (uc *EnquireUseCase) Execute(ctx context.Context, input EnquireInput) (*EnquireOutput, error) {
	phone, err := ValidateEnquireInput(input)
	if err != nil {
		return nil, err
	}

	// Once validated, the enquiry runs to completion even if the caller
	// disconnects. The voice API request stays bounded by the client timeout.
	ctx = context.WithoutCancel(ctx)

	var name *string
	if input.Name != "" {
		name = &input.Name
	}

	createdAt := uc.now().UTC()
	lead := &entity.Lead{
		ID:        uc.ids.Next(createdAt),
		Name:      name,
		Phone:     phone,
		CreatedAt: createdAt,
		Status:    entity.StatusQueued,
	}
	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, &InternalFault{Op: "create lead", Err: err}
	}

	callID, err := uc.Caller.StartCall(ctx, uc.buildCallRequest(lead))
	if err != nil {
		uc.Logger.Error("enquire: call trigger failed", "lead_id", lead.ID, "error", err)
		return nil, &UpstreamError{Message: callFailedMessage, Err: err}
	}

	_, err = uc.Repo.Update(ctx, lead.ID, func(l *entity.Lead) {
		l.VapiCallID = callID
		l.Status = entity.StatusCallInitiated
	})
	if err != nil {
		return nil, &InternalFault{Op: "record call id", Err: err}
	}

	uc.Logger.Info("enquire: call initiated", "lead_id", lead.ID, "call_id", callID)
	return &EnquireOutput{
		OK:      true,
		LeadID:  lead.ID,
		Message: callTriggeredMessage,
	}, nil
}

func (uc *EnquireUseCase) buildCallRequest(lead *entity.Lead) vapi.CallRequest {
	var from *string
	if uc.Settings.CallerID != "" {
		v := uc.Settings.CallerID
		from = &v
	}

	return vapi.CallRequest{
		To:   lead.Phone,
		From: from,
		Messages: []vapi.Message{
			{Role: "system", Content: SystemPrompt},
			{Role: "assistant", Content: Greeting},
		},
		Context:    vapi.CallContext{LeadID: lead.ID, Name: lead.Name},
		WebhookURL: WebhookURL(uc.Settings.WebhookPublicBase),
	}
}

// WebhookURL joins the public base with /webhook. An empty base yields the
// bare path.
func WebhookURL(base string) string {
	return strings.TrimSuffix(strings.TrimSpace(base), "/") + "/webhook"
}
