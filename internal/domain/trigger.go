package domain

import (
	"bytes"
	"encoding/json"
)

// Trigger is one inbound invocation. It is either request shaped
// (HTTPMethod, Path, Body) or event shaped (DetailType, Detail).
type Trigger struct {
	HTTPMethod string          `json:"httpMethod,omitempty"`
	Path       string          `json:"path,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`

	ID         string          `json:"id,omitempty"`
	Source     string          `json:"source,omitempty"`
	DetailType string          `json:"detail-type,omitempty"`
	Detail     json.RawMessage `json:"detail,omitempty"`
}

func (t Trigger) IsEvent() bool { return t.DetailType != "" }

// Payload returns the request body as a JSON object. Gateways that deliver
// the body as a JSON string are unwrapped once.
func (t Trigger) Payload() json.RawMessage {
	return unwrap(t.Body)
}

func (t Trigger) EventDetail() json.RawMessage {
	return unwrap(t.Detail)
}

func unwrap(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return trimmed
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return trimmed
	}
	return json.RawMessage(s)
}
