package phewas

import "time"

// Load event types
const (
	EventLoadStarted   = "load_started"
	EventGeneSkipped   = "gene_skipped"
	EventGeneFetched   = "gene_fetched"
	EventGeneFailed    = "gene_failed"
	EventLoadCompleted = "load_completed"
)

// LoadEvent reports progress of one load to listeners of a session
type LoadEvent struct {
	SessionID string    `json:"session_id"`
	EventType string    `json:"event_type"`
	Token     string    `json:"token,omitempty"`
	Symbol    string    `json:"symbol,omitempty"`
	Rows      int       `json:"rows"`
	Progress  float64   `json:"progress"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
