package domain

import (
	"encoding/json"
	"time"
)

// Event is an outbound notification. ID doubles as the checkout id for
// checkout events.
type Event struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	DetailType string          `json:"detail-type"`
	Time       time.Time       `json:"time"`
	Detail     json.RawMessage `json:"detail"`

	Channel string            `json:"-"`
	Key     string            `json:"-"`
	Headers map[string]string `json:"-"`
}
