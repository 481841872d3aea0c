package vapi

import "encoding/json"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CallContext struct {
	LeadID string  `json:"leadId"`
	Name   *string `json:"name"`
}

// CallRequest is the body POSTed to the voice API to place a call. From is
// sent as null when no caller identity is configured.
type CallRequest struct {
	To         string      `json:"to"`
	From       *string     `json:"from"`
	Messages   []Message   `json:"messages"`
	Context    CallContext `json:"context"`
	WebhookURL string      `json:"webhook_url"`
}

// Event is a webhook delivery reduced to the fields used for correlation.
// Raw keeps the full payload.
type Event struct {
	LeadID        string
	CallID        string
	Name          string
	Transcription json.RawMessage
	Raw           json.RawMessage
}
