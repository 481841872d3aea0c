package entity

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

type LeadStatus string

const (
	StatusQueued        LeadStatus = "queued"
	StatusCallInitiated LeadStatus = "call_initiated"
	StatusCompleted     LeadStatus = "completed"
	StatusFailed        LeadStatus = "failed"
	StatusNoAnswer      LeadStatus = "no-answer"
)

// IsTerminal reports whether a webhook event name is one of the call outcomes
// that overwrite a lead's status.
func IsTerminal(event string) bool {
	switch LeadStatus(event) {
	case StatusCompleted, StatusFailed, StatusNoAnswer:
		return true
	}
	return false
}

var ErrLeadNotFound = errors.New("lead not found")

type Lead struct {
	ID         string     `json:"id"`
	Name       *string    `json:"name"` // null when the enquiry had no name
	Phone      string     `json:"phone"`
	CreatedAt  time.Time  `json:"createdAt"`
	Status     LeadStatus `json:"status"` // not guarded: any writer may set any status
	VapiCallID string     `json:"vapiCallId,omitempty"`
	LastEvent  *CallEvent `json:"lastEvent,omitempty"`
}

// CallEvent is the most recent webhook delivery for a lead. Earlier events
// are overwritten.
type CallEvent struct {
	Event         string          `json:"event"`
	Transcription json.RawMessage `json:"transcription"`
	Raw           json.RawMessage `json:"raw"`
	Ts            time.Time       `json:"ts"`
}

// Clone returns a copy that shares no mutable state with l.
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	c := *l
	if l.Name != nil {
		name := *l.Name
		c.Name = &name
	}
	if l.LastEvent != nil {
		ev := *l.LastEvent
		c.LastEvent = &ev
	}
	return &c
}

// DisplayName returns the name, or "" for anonymous leads.
func (l *Lead) DisplayName() string {
	if l.Name == nil {
		return ""
	}
	return *l.Name
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	Get(ctx context.Context, id string) (*Lead, error)
	FindByCallID(ctx context.Context, callID string) (*Lead, error)
	List(ctx context.Context) ([]*Lead, error)

	// Update applies mutate to the stored record under the store's lock and
	// persists the result. Fields are overwritten as-is.
	Update(ctx context.Context, id string, mutate func(*Lead)) (*Lead, error)
}
