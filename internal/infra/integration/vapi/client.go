package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/lead-caller/pkg/logging"
)

// DefaultTimeout bounds a single call-trigger request. There is no retry.
const DefaultTimeout = 15 * time.Second

var (
	ErrNotConfigured      = errors.New("vapi: api url or key not configured")
	ErrUnexpectedResponse = errors.New("vapi: unexpected response body")
)

// HTTPStatusError is returned for non-2xx responses.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("vapi: api returned status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

func NewClient(apiURL, apiKey string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		apiURL:     strings.TrimSpace(apiURL),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

func (c *Client) Configured() bool {
	return c.apiURL != "" && c.apiKey != ""
}

// StartCall places an outbound call and returns the provider's call id, read
// from "call_id" and then "id". An empty id with a nil error means the
// provider accepted the call without returning an identifier.
func (c *Client) StartCall(ctx context.Context, input CallRequest) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("vapi: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("vapi: build request: %w", err)
	}
	c.addAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vapi: send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("vapi: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPStatusError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 512)}
	}

	var result map[string]json.RawMessage
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	callID := firstScalar(result, "call_id", "id")
	if callID == "" {
		c.logger.Warn("vapi: call accepted without call id", "to", input.To, "lead_id", input.Context.LeadID)
	} else {
		c.logger.Info("vapi: call triggered", "call_id", callID, "lead_id", input.Context.LeadID)
	}
	return callID, nil
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
