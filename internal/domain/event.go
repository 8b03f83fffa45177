package domain

import "time"

// Event types published while recording.
const (
	EventRequestStarted    = "request_started"
	EventResponseCompleted = "response_completed"
	EventForwardFailed     = "forward_failed"
)

// Event is a lightweight notification about one transaction, sent to live monitors.
type Event struct {
	Type          string    `json:"type"`
	Session       string    `json:"session"`
	TransactionNo uint64    `json:"transactionNo"`
	Ts            time.Time `json:"ts"`
	Method        string    `json:"method,omitempty"`
	Href          string    `json:"href,omitempty"`
	Status        int       `json:"status,omitempty"`
}
