package accounting

import (
	"sort"
	"time"

	"github.com/julianstephens/timeledger/internal/logger"
	"github.com/julianstephens/timeledger/internal/models"
)

// CorruptedDay is a day left out of a range total because its log does not
// replay.
type CorruptedDay struct {
	Day string
	Err error
}

// Totals sums the figures of every day in a range that has a START.
type Totals struct {
	From string
	To   string

	Days       []Figures
	Span       time.Duration
	TotalBreak time.Duration
	NetWork    time.Duration
	BreakCount int

	Corrupted []CorruptedDay
	// Unended lists past days that have a START but no END.
	Unended []string
}

// AverageNetWork is the mean net work over the counted days.
func (t Totals) AverageNetWork() time.Duration {
	if len(t.Days) == 0 {
		return 0
	}
	return t.NetWork / time.Duration(len(t.Days))
}

// Aggregate groups events by day and sums their figures as of now. Days that
// fail to replay are skipped and listed in Corrupted. Today's open day counts
// up to now; earlier days that were never ended are left out and listed in
// Unended.
func Aggregate(from, to, today string, events []models.Event, now time.Time) Totals {
	byDay := make(map[string][]models.Event)
	for _, ev := range events {
		if ev.Day < from || ev.Day > to {
			continue
		}
		byDay[ev.Day] = append(byDay[ev.Day], ev)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	totals := Totals{From: from, To: to}
	for _, day := range days {
		f, err := ComputeDay(byDay[day], today, now)
		if err != nil {
			logger.Warn("Skipping corrupted day", "day", day, "error", err)
			totals.Corrupted = append(totals.Corrupted, CorruptedDay{Day: day, Err: err})
			continue
		}
		if f.Start == nil {
			continue
		}
		if f.Stale {
			logger.Warn("Skipping unended day", "day", day)
			totals.Unended = append(totals.Unended, day)
			continue
		}
		totals.Days = append(totals.Days, f)
		totals.Span += f.Span
		totals.TotalBreak += f.TotalBreak
		totals.NetWork += f.NetWork
		totals.BreakCount += len(f.Breaks)
	}
	return totals
}
