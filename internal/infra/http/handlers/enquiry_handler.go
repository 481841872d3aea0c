package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/xavierca1/lead-caller/internal/infra/http/middleware"
	"github.com/xavierca1/lead-caller/internal/usecase"
	"github.com/xavierca1/lead-caller/pkg/logging"
)

type enquirer interface {
	Execute(ctx context.Context, input usecase.EnquireInput) (*usecase.EnquireOutput, error)
}

type EnquiryHandler struct {
	UseCase     enquirer
	rateLimiter *RateLimiter
	logger      *logging.Logger
}

// NewEnquiryHandler limits each client IP to ratePerMinute enquiries; zero
// or less disables the limit.
func NewEnquiryHandler(uc enquirer, ratePerMinute int, logger *logging.Logger) *EnquiryHandler {
	if logger == nil {
		logger = logging.Default()
	}
	h := &EnquiryHandler{UseCase: uc, logger: logger}
	if ratePerMinute > 0 {
		h.rateLimiter = NewRateLimiter(ratePerMinute, time.Minute)
	}
	return h
}

func (h *EnquiryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil && !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Message: "too many requests, please try again later"})
		return
	}

	var input usecase.EnquireInput
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&input)
	if err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	output, err := h.UseCase.Execute(r.Context(), input)
	switch {
	case usecase.IsValidationError(err):
		middleware.RecordCallTriggered("rejected")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return
	case err != nil:
		if usecase.IsUpstreamError(err) {
			middleware.RecordIntegrationError("vapi")
		}
		middleware.RecordCallTriggered("failed")
		h.logger.Error("enquire error", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "server error triggering call"})
		return
	}

	middleware.RecordCallTriggered("initiated")
	writeJSON(w, http.StatusOK, output)
}

// getClientIP uses the peer address only. Forwarding headers are client
// controlled and would let anyone pick their own rate-limit bucket.
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimiter is a fixed-window counter per IP. Stale visitors are pruned
// during Allow, so no goroutine is needed.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     limit,
		window:    window,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window*2 {
		return
	}
	for ip, v := range rl.visitors {
		if now.Sub(v.lastReset) > rl.window*2 {
			delete(rl.visitors, ip)
		}
	}
	rl.lastSweep = now
}
