package models

import "time"

// EventKind is the kind of a ledger event.
type EventKind string

const (
	EventStart  EventKind = "START"
	EventPause  EventKind = "PAUSE"
	EventResume EventKind = "RESUME"
	EventEnd    EventKind = "END"
)

// Valid reports whether k is one of the four known kinds.
func (k EventKind) Valid() bool {
	switch k {
	case EventStart, EventPause, EventResume, EventEnd:
		return true
	}
	return false
}

// Event is a single immutable entry in the day's ledger.
// ID is assigned by the store on append.
type Event struct {
	ID        string    `json:"id"`
	Day       string    `json:"day"`       // YYYY-MM-DD
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"` // UTC, whole seconds
	Reason    string    `json:"reason,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportHash records the digest of a generated report file.
type ReportHash struct {
	ID        string    `json:"id"`
	Day       string    `json:"day"`
	Filename  string    `json:"filename"`
	SHA256    string    `json:"sha256"`
	CreatedAt time.Time `json:"created_at"`
}
