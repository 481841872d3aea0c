package handlers

import (
	"net/http"

	"github.com/xavierca1/lead-caller/internal/entity"
	"github.com/xavierca1/lead-caller/pkg/logging"
)

// LeadsHandler dumps every stored lead, unfiltered and unredacted.
type LeadsHandler struct {
	LeadRepo entity.LeadRepositoryInterface
	logger   *logging.Logger
}

func NewLeadsHandler(repo entity.LeadRepositoryInterface, logger *logging.Logger) *LeadsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadsHandler{LeadRepo: repo, logger: logger}
}

func (h *LeadsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	leads, err := h.LeadRepo.List(r.Context())
	if err != nil {
		h.logger.Error("list leads", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "server error listing leads"})
		return
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}
