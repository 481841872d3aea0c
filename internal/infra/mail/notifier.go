package mail

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/xavierca1/lead-caller/internal/entity"
	"github.com/xavierca1/lead-caller/internal/infra/queue"
	"github.com/xavierca1/lead-caller/pkg/logging"
)

type callOutcomeSender interface {
	SendCallOutcome(to string, data CallOutcomeEmailData) error
}

// CallOutcomeNotifier emails the sales inbox when a call reaches a final
// outcome. Intermediate events are acknowledged and dropped.
type CallOutcomeNotifier struct {
	Sender callOutcomeSender
	To     string
	Logger *logging.Logger
}

func NewCallOutcomeNotifier(sender callOutcomeSender, to string, logger *logging.Logger) *CallOutcomeNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &CallOutcomeNotifier{Sender: sender, To: to, Logger: logger}
}

func (n *CallOutcomeNotifier) HandleCallEvent(ctx context.Context, payload queue.CallEventPayload) error {
	if !entity.IsTerminal(payload.Event) {
		n.Logger.Debug("notifier: skipping non-final event", "lead_id", payload.LeadID, "event", payload.Event)
		return nil
	}

	return n.Sender.SendCallOutcome(n.To, CallOutcomeEmailData{
		LeadID:        payload.LeadID,
		Name:          payload.Name,
		Phone:         payload.Phone,
		Outcome:       payload.Event,
		VapiCallID:    payload.VapiCallID,
		Transcription: transcriptionText(payload.Transcription),
		OccurredAt:    payload.OccurredAt,
	})
}

// transcriptionText unquotes plain string transcriptions and leaves any other
// JSON as-is.
func transcriptionText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
