package vapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const unknownEvent = "unknown"

// ParseEvent extracts correlation fields from a webhook body. The payload
// shape belongs to the provider, so nothing beyond "is a JSON object" is
// enforced:
//
//	lead id:  context.leadId, then metadata.leadId
//	call id:  call_id, then id
//	event:    event, then status, then "unknown"
func ParseEvent(body []byte) (Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Event{}, fmt.Errorf("vapi: webhook body is not a JSON object: %w", err)
	}

	ev := Event{
		LeadID: nestedScalar(fields, "context", "leadId"),
		CallID: firstScalar(fields, "call_id", "id"),
		Name:   firstScalar(fields, "event", "status"),
	}
	if ev.LeadID == "" {
		ev.LeadID = nestedScalar(fields, "metadata", "leadId")
	}
	if ev.Name == "" {
		ev.Name = unknownEvent
	}
	if t, ok := fields["transcription"]; ok && !isNull(t) {
		ev.Transcription = t
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err == nil {
		ev.Raw = compact.Bytes()
	} else {
		ev.Raw = append(json.RawMessage(nil), body...)
	}
	return ev, nil
}

func nestedScalar(fields map[string]json.RawMessage, parent, key string) string {
	raw, ok := fields[parent]
	if !ok {
		return ""
	}
	var inner map[string]json.RawMessage
	if err := json.Unmarshal(raw, &inner); err != nil {
		return ""
	}
	return scalar(inner[key])
}

func firstScalar(fields map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		if v := scalar(fields[k]); v != "" {
			return v
		}
	}
	return ""
}

// scalar renders a JSON string or number as text. Other kinds yield "".
func scalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return ""
		}
		return n.String()
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
