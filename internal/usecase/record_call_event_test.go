package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-caller/internal/entity"
	"github.com/xavierca1/lead-caller/internal/infra/database"
	"github.com/xavierca1/lead-caller/internal/infra/integration/vapi"
	"github.com/xavierca1/lead-caller/internal/infra/queue"
)

type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishCallEvent(ctx context.Context, payload queue.CallEventPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func seedLead(t *testing.T, repo *database.MemoryLeadRepository, id, callID string, status entity.LeadStatus) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &entity.Lead{
		ID:         id,
		Phone:      "+919876543210",
		CreatedAt:  time.UnixMilli(1700000000000),
		Status:     status,
		VapiCallID: callID,
	}))
}

func mustParse(t *testing.T, body string) vapi.Event {
	t.Helper()
	ev, err := vapi.ParseEvent([]byte(body))
	require.NoError(t, err)
	return ev
}

func TestRecordCallEventByLeadID(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemoryLeadRepository()
	seedLead(t, repo, "1", "call-1", entity.StatusCallInitiated)
	uc := NewRecordCallEventUseCase(repo, nil, nil)
	uc.now = func() time.Time { return time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC) }

	out, err := uc.Execute(ctx, mustParse(t, `{"context":{"leadId":"1"},"event":"completed","transcription":"hi there"}`))

	require.NoError(t, err)
	assert.True(t, out.Matched)
	lead, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, lead.Status)
	require.NotNil(t, lead.LastEvent)
	assert.Equal(t, "completed", lead.LastEvent.Event)
	assert.JSONEq(t, `"hi there"`, string(lead.LastEvent.Transcription))
	assert.JSONEq(t, `{"context":{"leadId":"1"},"event":"completed","transcription":"hi there"}`, string(lead.LastEvent.Raw))
	assert.Equal(t, time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC), lead.LastEvent.Ts)
}

func TestRecordCallEventMetadataLeadIDAndStatusField(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemoryLeadRepository()
	seedLead(t, repo, "7", "", entity.StatusQueued)

	out, err := NewRecordCallEventUseCase(repo, nil, nil).Execute(ctx, mustParse(t, `{"metadata":{"leadId":7},"status":"no-answer"}`))

	require.NoError(t, err)
	assert.True(t, out.Matched)
	lead, _ := repo.Get(ctx, "7")
	assert.Equal(t, entity.StatusNoAnswer, lead.Status)
}

func TestRecordCallEventFallsBackToCallID(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemoryLeadRepository()
	seedLead(t, repo, "1", "call-1", entity.StatusCallInitiated)
	seedLead(t, repo, "2", "call-2", entity.StatusCallInitiated)
	uc := NewRecordCallEventUseCase(repo, nil, nil)

	out, err := uc.Execute(ctx, mustParse(t, `{"call_id":"call-2","event":"failed"}`))
	require.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Equal(t, "2", out.Lead.ID)

	out, err = uc.Execute(ctx, mustParse(t, `{"id":"call-1","event":"speech-update"}`))
	require.NoError(t, err)
	assert.True(t, out.Matched)

	first, _ := repo.Get(ctx, "1")
	second, _ := repo.Get(ctx, "2")
	assert.Equal(t, entity.StatusCallInitiated, first.Status)
	assert.Equal(t, "speech-update", first.LastEvent.Event)
	assert.Equal(t, entity.StatusFailed, second.Status)
}

func TestRecordCallEventNonTerminalKeepsStatus(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemoryLeadRepository()
	seedLead(t, repo, "1", "", entity.StatusCompleted)

	_, err := NewRecordCallEventUseCase(repo, nil, nil).Execute(ctx, mustParse(t, `{"context":{"leadId":"1"}}`))

	require.NoError(t, err)
	lead, _ := repo.Get(ctx, "1")
	assert.Equal(t, entity.StatusCompleted, lead.Status)
	assert.Equal(t, "unknown", lead.LastEvent.Event)
	assert.Nil(t, lead.LastEvent.Transcription)
}

func TestRecordCallEventTerminalOverwritesAnyStatus(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemoryLeadRepository()
	seedLead(t, repo, "1", "", entity.StatusCompleted)

	_, err := NewRecordCallEventUseCase(repo, nil, nil).Execute(ctx, mustParse(t, `{"context":{"leadId":"1"},"event":"failed"}`))

	require.NoError(t, err)
	lead, _ := repo.Get(ctx, "1")
	assert.Equal(t, entity.StatusFailed, lead.Status)
}

func TestRecordCallEventUnmatched(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemoryLeadRepository()
	seedLead(t, repo, "1", "call-1", entity.StatusCallInitiated)
	producer := new(MockQueueProducer)
	uc := NewRecordCallEventUseCase(repo, producer, nil)

	for _, body := range []string{
		`{"context":{"leadId":"missing"},"event":"completed"}`,
		`{"context":{"leadId":"missing"},"call_id":"call-1","event":"completed"}`,
		`{"call_id":"other","event":"completed"}`,
		`{"event":"completed"}`,
	} {
		out, err := uc.Execute(ctx, mustParse(t, body))
		require.NoError(t, err, body)
		assert.False(t, out.Matched, body)
	}

	lead, _ := repo.Get(ctx, "1")
	assert.Equal(t, entity.StatusCallInitiated, lead.Status)
	assert.Nil(t, lead.LastEvent)
	producer.AssertNotCalled(t, "PublishCallEvent", mock.Anything, mock.Anything)
}

func TestRecordCallEventPublishes(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemoryLeadRepository()
	seedLead(t, repo, "1", "call-1", entity.StatusCallInitiated)
	producer := new(MockQueueProducer)
	producer.On("PublishCallEvent", mock.Anything, mock.MatchedBy(func(p queue.CallEventPayload) bool {
		return p.LeadID == "1" && p.Event == "completed" && p.Status == "completed" &&
			p.VapiCallID == "call-1" && string(p.Transcription) == `"bye"`
	})).Return(errors.New("channel closed"))

	out, err := NewRecordCallEventUseCase(repo, producer, nil).Execute(ctx, mustParse(t, `{"call_id":"call-1","event":"completed","transcription":"bye"}`))

	require.NoError(t, err)
	assert.True(t, out.Matched)
	producer.AssertExpectations(t)
}

func TestRecordCallEventStoreFailure(t *testing.T) {
	repo := new(MockLeadRepository)
	repo.On("Get", mock.Anything, "1").Return(nil, errors.New("connection reset"))

	_, err := NewRecordCallEventUseCase(repo, nil, nil).Execute(context.Background(), vapi.Event{LeadID: "1", Name: "completed", Raw: json.RawMessage(`{}`)})

	var fault *InternalFault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, "resolve lead", fault.Op)
}
