package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/xavierca1/lead-caller/internal/infra/http/middleware"
	"github.com/xavierca1/lead-caller/internal/infra/integration/vapi"
	"github.com/xavierca1/lead-caller/internal/usecase"
	"github.com/xavierca1/lead-caller/pkg/logging"
)

const webhookLogLimit = 2000

type callEventRecorder interface {
	Execute(ctx context.Context, ev vapi.Event) (*usecase.RecordCallEventOutput, error)
}

type WebhookHandler struct {
	UseCase callEventRecorder
	logger  *logging.Logger
}

func NewWebhookHandler(uc callEventRecorder, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{UseCase: uc, logger: logger}
}

// Handle acknowledges every delivery, matched or not. Only internal faults
// answer 500, since the provider cannot usefully redeliver.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("webhook handler panic", "panic", rec)
			writeJSON(w, http.StatusInternalServerError, AckResponse{OK: false})
		}
	}()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error("webhook: read body", "error", err)
		writeJSON(w, http.StatusInternalServerError, AckResponse{OK: false})
		return
	}
	h.logger.Info("webhook received", "body", truncateBody(body))

	ev, err := vapi.ParseEvent(body)
	if err != nil {
		h.logger.Warn("webhook: discarding unparseable body", "error", err)
		middleware.RecordWebhookEvent("invalid", false)
		writeJSON(w, http.StatusOK, AckResponse{OK: true})
		return
	}

	out, err := h.UseCase.Execute(r.Context(), ev)
	if err != nil {
		h.logger.Error("webhook handler error", "event", ev.Name, "error", err)
		writeJSON(w, http.StatusInternalServerError, AckResponse{OK: false})
		return
	}

	middleware.RecordWebhookEvent(ev.Name, out.Matched)
	writeJSON(w, http.StatusOK, AckResponse{OK: true})
}

func truncateBody(b []byte) string {
	if len(b) > webhookLogLimit {
		b = b[:webhookLogLimit]
	}
	return string(b)
}
