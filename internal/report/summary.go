// Package report renders a day's figures as a summary record and writes it
// out as CSV or JSON files with a tamper-evidence hash.
package report

import (
	"time"

	"github.com/julianstephens/timeledger/internal/accounting"
	"github.com/julianstephens/timeledger/internal/models"
)

type Break struct {
	Reason          string `json:"reason"`
	DurationSeconds int64  `json:"duration_seconds"`
}

type TimelineEntry struct {
	Kind             models.EventKind `json:"kind"`
	Timestamp        time.Time        `json:"timestamp"`
	SinceLastSeconds int64            `json:"since_last_seconds"`
	Reason           string           `json:"reason,omitempty"`
}

// Summary is the serializable day record consumed by the writers. All
// durations are whole seconds and all instants are UTC.
type Summary struct {
	Date              string          `json:"date"`
	StartTime         *time.Time      `json:"start_time"`
	EndTime           *time.Time      `json:"end_time,omitempty"`
	SpanSeconds       int64           `json:"span_seconds"`
	TotalBreakSeconds int64           `json:"total_break_seconds"`
	NetWorkSeconds    int64           `json:"net_work_seconds"`
	Breaks            []Break         `json:"breaks"`
	Timeline          []TimelineEntry `json:"timeline"`
	UnresolvedBreak   bool            `json:"unresolved_break"`
	InProgress        bool            `json:"in_progress"`
}

// Build converts figures into a Summary. It does not touch the store.
func Build(day string, f accounting.Figures) Summary {
	s := Summary{
		Date:              day,
		StartTime:         f.Start,
		EndTime:           f.End,
		SpanSeconds:       seconds(f.Span),
		TotalBreakSeconds: seconds(f.TotalBreak),
		NetWorkSeconds:    seconds(f.NetWork),
		Breaks:            make([]Break, 0, len(f.Breaks)),
		Timeline:          make([]TimelineEntry, 0, len(f.Timeline)),
		UnresolvedBreak:   f.UnresolvedBreak,
		InProgress:        f.InProgress,
	}
	for _, b := range f.Breaks {
		s.Breaks = append(s.Breaks, Break{Reason: b.Reason, DurationSeconds: seconds(b.Duration())})
	}
	for _, e := range f.Timeline {
		s.Timeline = append(s.Timeline, TimelineEntry{
			Kind:             e.Kind,
			Timestamp:        e.Timestamp.UTC(),
			SinceLastSeconds: seconds(e.SinceLast),
			Reason:           e.Reason,
		})
	}
	return s
}

func seconds(d time.Duration) int64 { return int64(d / time.Second) }

func (s Summary) Span() time.Duration       { return time.Duration(s.SpanSeconds) * time.Second }
func (s Summary) TotalBreak() time.Duration { return time.Duration(s.TotalBreakSeconds) * time.Second }
func (s Summary) NetWork() time.Duration    { return time.Duration(s.NetWorkSeconds) * time.Second }
