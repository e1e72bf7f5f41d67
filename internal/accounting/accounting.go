// Package accounting derives time figures from a day's event log.
package accounting

import (
	"time"

	"github.com/julianstephens/timeledger/internal/models"
	"github.com/julianstephens/timeledger/internal/session"
)

// BreakInterval is one pause. Open breaks are still running at the
// evaluation instant.
type BreakInterval struct {
	Start  time.Time
	End    time.Time
	Reason string
	Open   bool
}

func (b BreakInterval) Duration() time.Duration { return b.End.Sub(b.Start) }

type TimelineEntry struct {
	Kind      models.EventKind
	Timestamp time.Time
	SinceLast time.Duration // zero for the first entry
	Reason    string
}

// Figures are the derived numbers for one day. They are recomputed from the
// log on every call and never stored.
type Figures struct {
	Day   string
	State models.State

	Start *time.Time
	End   *time.Time

	Span       time.Duration
	TotalBreak time.Duration
	NetWork    time.Duration

	Breaks   []BreakInterval
	Timeline []TimelineEntry

	// UnresolvedBreak is set when the day ended while paused.
	UnresolvedBreak bool
	InProgress      bool

	// Stale marks a past day that was never ended. Its figures stop at the
	// last logged event.
	Stale bool

	// CurrentInterval is the time since the last START or RESUME while
	// working, zero otherwise.
	CurrentInterval time.Duration
}

// Compute replays events and derives the day's figures as of now. The events
// must belong to a single day and be in log order. An empty slice yields
// zero figures in the idle state.
func Compute(events []models.Event, now time.Time) (Figures, error) {
	day := ""
	if len(events) > 0 {
		day = events[0].Day
	}
	s, err := session.Replay(day, events)
	if err != nil {
		return Figures{}, err
	}

	f := Figures{Day: day, State: s.State}
	if len(events) == 0 {
		return f, nil
	}

	now = now.UTC().Truncate(time.Second)
	if last := ts(events[len(events)-1]); now.Before(last) {
		now = last
	}

	var (
		prev      time.Time
		openPause *models.Event
		workSince time.Time
	)
	for i := range events {
		ev := events[i]
		t := ts(ev)

		entry := TimelineEntry{Kind: ev.Kind, Timestamp: t, Reason: ev.Reason}
		if i > 0 {
			entry.SinceLast = t.Sub(prev)
		}
		f.Timeline = append(f.Timeline, entry)
		prev = t

		switch ev.Kind {
		case models.EventStart:
			start := t
			f.Start = &start
			workSince = t
		case models.EventPause:
			openPause = &events[i]
		case models.EventResume:
			f.Breaks = append(f.Breaks, BreakInterval{Start: ts(*openPause), End: t, Reason: openPause.Reason})
			openPause = nil
			workSince = t
		case models.EventEnd:
			end := t
			f.End = &end
			if openPause != nil {
				f.Breaks = append(f.Breaks, BreakInterval{Start: ts(*openPause), End: t, Reason: openPause.Reason})
				f.UnresolvedBreak = true
				openPause = nil
			}
		}
	}

	f.InProgress = s.Active()
	if openPause != nil {
		f.Breaks = append(f.Breaks, BreakInterval{Start: ts(*openPause), End: now, Reason: openPause.Reason, Open: true})
	}
	if s.State == models.StateWorking {
		f.CurrentInterval = now.Sub(workSince)
	}

	switch {
	case f.End != nil:
		f.Span = f.End.Sub(*f.Start)
	case f.Start != nil:
		f.Span = now.Sub(*f.Start)
	}
	for _, b := range f.Breaks {
		f.TotalBreak += b.Duration()
	}
	f.NetWork = f.Span - f.TotalBreak
	if f.NetWork < 0 {
		last := len(events) - 1
		return Figures{}, &session.CorruptedLogError{
			Day:    day,
			Index:  last,
			Event:  events[last],
			Reason: "breaks exceed the working span",
		}
	}
	return f, nil
}

// ComputeDay is Compute for a day seen from today. Only today's open day
// runs up to now; an earlier day that never ended is cut off at its last
// event and marked Stale.
func ComputeDay(events []models.Event, today string, now time.Time) (Figures, error) {
	if len(events) == 0 || events[0].Day >= today {
		return Compute(events, now)
	}
	f, err := Compute(events, ts(events[len(events)-1]))
	if err != nil || !f.InProgress {
		return f, err
	}
	f.Stale = true
	f.InProgress = false
	f.CurrentInterval = 0
	for i := range f.Breaks {
		f.Breaks[i].Open = false
	}
	return f, nil
}

func ts(ev models.Event) time.Time {
	return ev.Timestamp.UTC().Truncate(time.Second)
}
