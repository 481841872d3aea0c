package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-caller/internal/config"
	"github.com/xavierca1/lead-caller/internal/entity"
	"github.com/xavierca1/lead-caller/internal/infra/database"
	"github.com/xavierca1/lead-caller/internal/infra/http/handlers"
	"github.com/xavierca1/lead-caller/internal/infra/integration/vapi"
	"github.com/xavierca1/lead-caller/internal/infra/queue"
	"github.com/xavierca1/lead-caller/internal/usecase"
	"github.com/xavierca1/lead-caller/pkg/logging"
)

var _ usecase.QueueProducerInterface = (*queue.RabbitMQProducer)(nil)

type fakeVapi struct {
	mu       sync.Mutex
	requests []map[string]any
	auth     string
	status   int
	reply    string
	delay    time.Duration

	cancelled bool
}

func (f *fakeVapi) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req map[string]any
	json.Unmarshal(body, &req)

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-r.Context().Done():
			f.mu.Lock()
			f.cancelled = true
			f.mu.Unlock()
			return
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.auth = r.Header.Get("Authorization")
	status, reply := f.status, f.reply
	f.mu.Unlock()

	w.WriteHeader(status)
	io.WriteString(w, reply)
}

func (f *fakeVapi) snapshot() ([]map[string]any, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.requests...), f.auth
}

type testServer struct {
	*httptest.Server
	vapi *fakeVapi
}

func newTestServer(t *testing.T, status int, reply string) *testServer {
	t.Helper()
	return newTestServerWithVapi(t, &fakeVapi{status: status, reply: reply})
}

func newTestServerWithVapi(t *testing.T, fake *fakeVapi) *testServer {
	t.Helper()
	upstream := httptest.NewServer(fake)
	t.Cleanup(upstream.Close)

	logger := logging.Default()
	store := database.NewMemoryLeadRepository()
	client := vapi.NewClient(upstream.URL, "test-key", logger)

	enquireUC := usecase.NewEnquireUseCase(store, client, usecase.CallSettings{
		CallerID:          "+14155550100",
		WebhookPublicBase: "https://public.example.com",
	}, logger)
	recordUC := usecase.NewRecordCallEventUseCase(store, nil, logger)

	router := newRouter(routeHandlers{
		Enquiry: handlers.NewEnquiryHandler(enquireUC, config.Load().EnquireRateLimit, logger),
		Webhook: handlers.NewWebhookHandler(recordUC, logger),
		Leads:   handlers.NewLeadsHandler(store, logger),
		Health:  handlers.NewHealthHandler(store, nil, client.Configured()),
	}, []string{"*"}, logger)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, vapi: fake}
}

func (s *testServer) post(t *testing.T, path, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(s.URL+path, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (s *testServer) leads(t *testing.T) []entity.Lead {
	t.Helper()
	resp, err := http.Get(s.URL + "/leads")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []entity.Lead
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestEnquireThenWebhookLifecycle(t *testing.T) {
	s := newTestServer(t, http.StatusCreated, `{"call_id":"call-abc"}`)

	code, body := s.post(t, "/enquire", `{"name":"Asha","phone":"98765 43210","consent":true}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])
	leadID, _ := body["leadId"].(string)
	require.NotEmpty(t, leadID)
	assert.Equal(t, "Call triggered. You should receive a call shortly.", body["message"])

	requests, auth := s.vapi.snapshot()
	require.Len(t, requests, 1)
	sent := requests[0]
	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "+919876543210", sent["to"])
	assert.Equal(t, "+14155550100", sent["from"])
	assert.Equal(t, "https://public.example.com/webhook", sent["webhook_url"])
	assert.Equal(t, map[string]any{"leadId": leadID, "name": "Asha"}, sent["context"])
	assert.Len(t, sent["messages"], 2)

	leads := s.leads(t)
	require.Len(t, leads, 1)
	assert.Equal(t, entity.StatusCallInitiated, leads[0].Status)
	assert.Equal(t, "call-abc", leads[0].VapiCallID)

	code, body = s.post(t, "/webhook", `{"call_id":"call-abc","event":"completed","transcription":{"text":"thanks"}}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"ok": true}, body)

	leads = s.leads(t)
	require.Len(t, leads, 1)
	assert.Equal(t, entity.StatusCompleted, leads[0].Status)
	require.NotNil(t, leads[0].LastEvent)
	assert.Equal(t, "completed", leads[0].LastEvent.Event)
	assert.JSONEq(t, `{"text":"thanks"}`, string(leads[0].LastEvent.Transcription))
}

func TestEnquireRejectsWithoutConsentOrPhone(t *testing.T) {
	s := newTestServer(t, http.StatusOK, `{"id":"x"}`)

	code, body := s.post(t, "/enquire", `{"phone":"9876543210","consent":0}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "consent required", body["message"])

	code, body = s.post(t, "/enquire", `{"phone":"12-34","consent":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid phone format", body["message"])

	assert.Empty(t, s.leads(t))
	requests, _ := s.vapi.snapshot()
	assert.Empty(t, requests)
}

func TestEnquireUpstreamFailureKeepsQueuedLead(t *testing.T) {
	s := newTestServer(t, http.StatusInternalServerError, `{"error":"boom"}`)

	code, body := s.post(t, "/enquire", `{"phone":"+447700900123","consent":true}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "server error triggering call", body["message"])

	leads := s.leads(t)
	require.Len(t, leads, 1)
	assert.Equal(t, entity.StatusQueued, leads[0].Status)
	assert.Empty(t, leads[0].VapiCallID)
	assert.Equal(t, "+447700900123", leads[0].Phone)
}

func TestWebhookIgnoresUnknownAndGarbage(t *testing.T) {
	s := newTestServer(t, http.StatusOK, `{"id":"call-1"}`)
	code, _ := s.post(t, "/enquire", `{"phone":"9876543210","consent":true}`)
	require.Equal(t, http.StatusOK, code)

	code, body := s.post(t, "/webhook", `{"call_id":"someone-else","event":"failed"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])

	code, body = s.post(t, "/webhook", `<<not json>>`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])

	leads := s.leads(t)
	require.Len(t, leads, 1)
	assert.Equal(t, entity.StatusCallInitiated, leads[0].Status)
	assert.Nil(t, leads[0].LastEvent)
}

func TestAuxiliaryRoutes(t *testing.T) {
	s := newTestServer(t, http.StatusOK, `{}`)

	for path, want := range map[string]string{
		"/":        "text/html",
		"/health":  "application/json",
		"/metrics": "text/plain",
	} {
		resp, err := http.Get(s.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, resp.Header.Get("Content-Type"), want, path)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"), path)
	}

	resp, err := http.Get(s.URL + "/enquire")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestEnquireCallSurvivesClientDisconnect(t *testing.T) {
	s := newTestServerWithVapi(t, &fakeVapi{status: http.StatusOK, reply: `{"call_id":"slow-call"}`, delay: 300 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL+"/enquire",
		bytes.NewBufferString(`{"phone":"9876543210","consent":true}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	_, err = http.DefaultClient.Do(req)
	require.Error(t, err)

	require.Eventually(t, func() bool {
		resp, err := http.Get(s.URL + "/leads")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var leads []entity.Lead
		if err := json.NewDecoder(resp.Body).Decode(&leads); err != nil {
			return false
		}
		return len(leads) == 1 && leads[0].Status == entity.StatusCallInitiated
	}, 3*time.Second, 25*time.Millisecond)

	leads := s.leads(t)
	assert.Equal(t, "slow-call", leads[0].VapiCallID)

	s.vapi.mu.Lock()
	defer s.vapi.mu.Unlock()
	assert.False(t, s.vapi.cancelled)
}

func TestEnquireNotRateLimitedByDefault(t *testing.T) {
	t.Setenv("ENQUIRE_RATE_LIMIT", "")
	s := newTestServer(t, http.StatusOK, `{"id":"call-1"}`)

	for i := 0; i < 15; i++ {
		code, _ := s.post(t, "/enquire", `{"phone":"9876543210","consent":true}`)
		require.Equal(t, http.StatusOK, code, "enquiry %d", i+1)
	}
	assert.Len(t, s.leads(t), 15)
}
