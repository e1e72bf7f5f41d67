package storage

import (
	"context"

	"github.com/julianstephens/timeledger/internal/models"
)

// EventLog is the append-only, per-day ordered event log the session engine
// depends on. Implementations assign the event ID, never update or delete
// rows, and return a day's events ordered by timestamp then insertion order.
type EventLog interface {
	Append(ctx context.Context, ev models.Event) (string, error)
	ListForDay(ctx context.Context, day string) ([]models.Event, error)
}

// HashRecorder stores report digests in a separate append-only record set.
type HashRecorder interface {
	RecordReportHash(ctx context.Context, rec models.ReportHash) (string, error)
	ListReportHashes(ctx context.Context, day string) ([]models.ReportHash, error)
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Events
	EventLog
	// ListForRange returns events for startDay..endDay inclusive, ordered by
	// day, then timestamp, then insertion order.
	ListForRange(ctx context.Context, startDay, endDay string) ([]models.Event, error)
	// ListDays returns every day that has at least one event, ascending.
	ListDays(ctx context.Context) ([]string, error)

	// Report hashes
	HashRecorder

	// Schema
	Migrate(ctx context.Context, logFn func(string)) (int, error)
	SchemaVersion() (current int, latest int, err error)

	// Utils
	Ping(ctx context.Context) error
	GetConfigPath() string
}
