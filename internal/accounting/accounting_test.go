package accounting

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/timeledger/internal/models"
	"github.com/julianstephens/timeledger/internal/session"
)

const day = "2026-03-02"

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func ev(kind models.EventKind, ts time.Time, reason string) models.Event {
	return models.Event{Day: day, Kind: kind, Timestamp: ts, Reason: reason}
}

func fullDay() []models.Event {
	return []models.Event{
		ev(models.EventStart, at(9, 0), ""),
		ev(models.EventPause, at(12, 0), "lunch"),
		ev(models.EventResume, at(12, 30), ""),
		ev(models.EventEnd, at(17, 0), ""),
	}
}

func TestComputeFullDay(t *testing.T) {
	f, err := Compute(fullDay(), at(20, 0))
	if err != nil {
		t.Fatalf("Compute() failed: %v", err)
	}

	if f.Span != 8*time.Hour {
		t.Errorf("Span = %v, want 8h", f.Span)
	}
	if f.TotalBreak != 30*time.Minute {
		t.Errorf("TotalBreak = %v, want 30m", f.TotalBreak)
	}
	if f.NetWork != 7*time.Hour+30*time.Minute {
		t.Errorf("NetWork = %v, want 7h30m", f.NetWork)
	}
	if f.NetWork+f.TotalBreak != f.Span {
		t.Errorf("NetWork + TotalBreak = %v, Span = %v", f.NetWork+f.TotalBreak, f.Span)
	}
	if len(f.Breaks) != 1 || f.Breaks[0].Reason != "lunch" || f.Breaks[0].Open {
		t.Errorf("Breaks = %+v", f.Breaks)
	}
	if f.InProgress || f.UnresolvedBreak {
		t.Errorf("InProgress = %v, UnresolvedBreak = %v", f.InProgress, f.UnresolvedBreak)
	}
	if f.State != models.StateEnded {
		t.Errorf("State = %s, want ended", f.State)
	}

	wantSince := []time.Duration{0, 3 * time.Hour, 30 * time.Minute, 4*time.Hour + 30*time.Minute}
	if len(f.Timeline) != len(wantSince) {
		t.Fatalf("len(Timeline) = %d, want %d", len(f.Timeline), len(wantSince))
	}
	for i, want := range wantSince {
		if f.Timeline[i].SinceLast != want {
			t.Errorf("Timeline[%d].SinceLast = %v, want %v", i, f.Timeline[i].SinceLast, want)
		}
	}
	if f.Timeline[1].Reason != "lunch" {
		t.Errorf("Timeline[1].Reason = %q", f.Timeline[1].Reason)
	}
}

func TestComputeInProgress(t *testing.T) {
	tests := []struct {
		name       string
		events     []models.Event
		now        time.Time
		span       time.Duration
		totalBreak time.Duration
		current    time.Duration
		openBreak  bool
		wantState  models.State
		wantBreaks int
	}{
		{
			name:      "working",
			events:    fullDay()[:1],
			now:       at(10, 15),
			span:      75 * time.Minute,
			current:   75 * time.Minute,
			wantState: models.StateWorking,
		},
		{
			name:       "on break",
			events:     fullDay()[:2],
			now:        at(12, 20),
			span:       3*time.Hour + 20*time.Minute,
			totalBreak: 20 * time.Minute,
			openBreak:  true,
			wantState:  models.StatePaused,
			wantBreaks: 1,
		},
		{
			name:       "back from break",
			events:     fullDay()[:3],
			now:        at(13, 0),
			span:       4 * time.Hour,
			totalBreak: 30 * time.Minute,
			current:    30 * time.Minute,
			wantState:  models.StateWorking,
			wantBreaks: 1,
		},
		{
			name:      "now before last event is clamped",
			events:    fullDay()[:1],
			now:       at(8, 0),
			wantState: models.StateWorking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compute(tt.events, tt.now)
			if err != nil {
				t.Fatalf("Compute() failed: %v", err)
			}
			if !f.InProgress {
				t.Error("InProgress = false")
			}
			if f.End != nil {
				t.Errorf("End = %v, want nil", f.End)
			}
			if f.State != tt.wantState {
				t.Errorf("State = %s, want %s", f.State, tt.wantState)
			}
			if f.Span != tt.span || f.TotalBreak != tt.totalBreak {
				t.Errorf("Span/TotalBreak = %v/%v, want %v/%v", f.Span, f.TotalBreak, tt.span, tt.totalBreak)
			}
			if f.NetWork != tt.span-tt.totalBreak {
				t.Errorf("NetWork = %v, want %v", f.NetWork, tt.span-tt.totalBreak)
			}
			if f.CurrentInterval != tt.current {
				t.Errorf("CurrentInterval = %v, want %v", f.CurrentInterval, tt.current)
			}
			if len(f.Breaks) != tt.wantBreaks {
				t.Fatalf("len(Breaks) = %d, want %d", len(f.Breaks), tt.wantBreaks)
			}
			if tt.wantBreaks > 0 && f.Breaks[len(f.Breaks)-1].Open != tt.openBreak {
				t.Errorf("last break Open = %v, want %v", f.Breaks[len(f.Breaks)-1].Open, tt.openBreak)
			}
		})
	}
}

func TestComputeEndedWhilePaused(t *testing.T) {
	events := []models.Event{
		ev(models.EventStart, at(9, 0), ""),
		ev(models.EventPause, at(16, 0), "doctor"),
		ev(models.EventEnd, at(17, 0), ""),
	}

	f, err := Compute(events, at(23, 0))
	if err != nil {
		t.Fatalf("Compute() failed: %v", err)
	}
	if !f.UnresolvedBreak {
		t.Error("UnresolvedBreak = false, want true")
	}
	if len(f.Breaks) != 1 || !f.Breaks[0].End.Equal(at(17, 0)) || f.Breaks[0].Open {
		t.Errorf("Breaks = %+v, want one closed at END", f.Breaks)
	}
	if f.TotalBreak != time.Hour || f.NetWork != 7*time.Hour {
		t.Errorf("TotalBreak/NetWork = %v/%v, want 1h/7h", f.TotalBreak, f.NetWork)
	}
	if f.NetWork+f.TotalBreak != f.Span {
		t.Errorf("NetWork + TotalBreak != Span")
	}
}

func TestComputeTruncatesToSeconds(t *testing.T) {
	events := []models.Event{
		ev(models.EventStart, at(9, 0).Add(400*time.Millisecond), ""),
		ev(models.EventEnd, at(9, 1).Add(900*time.Millisecond), ""),
	}

	f, err := Compute(events, at(10, 0))
	if err != nil {
		t.Fatalf("Compute() failed: %v", err)
	}
	if f.Span != time.Minute {
		t.Errorf("Span = %v, want 1m", f.Span)
	}
	if f.Start.Nanosecond() != 0 || f.End.Nanosecond() != 0 {
		t.Errorf("instants not truncated: %v %v", f.Start, f.End)
	}
}

func TestComputeEmptyDay(t *testing.T) {
	f, err := Compute(nil, at(12, 0))
	if err != nil {
		t.Fatalf("Compute() failed: %v", err)
	}
	if f.Start != nil || f.Span != 0 || f.InProgress || f.State != models.StateIdle {
		t.Errorf("empty day figures = %+v", f)
	}
}

func TestComputeCorrupted(t *testing.T) {
	events := []models.Event{
		ev(models.EventStart, at(9, 0), ""),
		ev(models.EventResume, at(9, 30), ""),
	}

	_, err := Compute(events, at(10, 0))
	if !errors.Is(err, session.ErrCorruptedLog) {
		t.Fatalf("Compute() error = %v, want ErrCorruptedLog", err)
	}
	var cle *session.CorruptedLogError
	if !errors.As(err, &cle) || cle.Index != 1 {
		t.Errorf("CorruptedLogError = %+v, want index 1", cle)
	}
}

func TestAggregate(t *testing.T) {
	next := func(e models.Event) models.Event {
		e.Day = "2026-03-03"
		e.Timestamp = e.Timestamp.AddDate(0, 0, 1)
		return e
	}

	var events []models.Event
	events = append(events, fullDay()...)
	// Tuesday: 10:00-16:00 with no breaks
	events = append(events,
		next(ev(models.EventStart, at(10, 0), "")),
		next(ev(models.EventEnd, at(16, 0), "")),
	)
	// Wednesday is corrupted
	events = append(events,
		models.Event{Day: "2026-03-04", Kind: models.EventEnd, Timestamp: at(9, 0).AddDate(0, 0, 2)},
	)
	// Thursday was started and never ended
	events = append(events,
		models.Event{Day: "2026-03-05", Kind: models.EventStart, Timestamp: at(8, 0).AddDate(0, 0, 3)},
	)
	// Outside the range
	events = append(events,
		models.Event{Day: "2026-03-09", Kind: models.EventStart, Timestamp: at(9, 0).AddDate(0, 0, 7)},
	)

	totals := Aggregate("2026-03-02", "2026-03-08", "2026-03-06", events, at(9, 0).AddDate(0, 0, 4))

	if len(totals.Days) != 2 {
		t.Fatalf("len(Days) = %d, want 2", len(totals.Days))
	}
	if totals.Days[0].Day != "2026-03-02" || totals.Days[1].Day != "2026-03-03" {
		t.Errorf("days out of order: %s, %s", totals.Days[0].Day, totals.Days[1].Day)
	}
	if totals.Span != 14*time.Hour {
		t.Errorf("Span = %v, want 14h", totals.Span)
	}
	if totals.NetWork != 13*time.Hour+30*time.Minute {
		t.Errorf("NetWork = %v, want 13h30m", totals.NetWork)
	}
	if totals.BreakCount != 1 {
		t.Errorf("BreakCount = %d, want 1", totals.BreakCount)
	}
	if len(totals.Corrupted) != 1 || totals.Corrupted[0].Day != "2026-03-04" {
		t.Errorf("Corrupted = %+v, want 2026-03-04", totals.Corrupted)
	}
	if len(totals.Unended) != 1 || totals.Unended[0] != "2026-03-05" {
		t.Errorf("Unended = %v, want 2026-03-05", totals.Unended)
	}
	if avg := totals.AverageNetWork(); avg != 6*time.Hour+45*time.Minute {
		t.Errorf("AverageNetWork() = %v, want 6h45m", avg)
	}
}

func TestAggregateEmpty(t *testing.T) {
	totals := Aggregate("2026-03-01", "2026-03-31", "2026-03-02", nil, at(12, 0))
	if len(totals.Days) != 0 || totals.NetWork != 0 || totals.AverageNetWork() != 0 {
		t.Errorf("empty totals = %+v", totals)
	}
}

func TestComputeDay(t *testing.T) {
	// Monday 09:00 START with a pause at 11:00, seen from Thursday morning.
	working := []models.Event{ev(models.EventStart, at(9, 0), "")}
	paused := append(working[:1:1], ev(models.EventPause, at(11, 0), "errand"))
	later := at(9, 0).AddDate(0, 0, 3)

	tests := []struct {
		name       string
		events     []models.Event
		today      string
		wantSpan   time.Duration
		wantBreak  time.Duration
		wantStale  bool
		wantActive bool
	}{
		{"today working runs to now", working, day, 3 * time.Hour, 0, false, true},
		{"past working stops at last event", working, "2026-03-05", 0, 0, true, false},
		{"past paused stops at the pause", paused, "2026-03-05", 2 * time.Hour, 0, true, false},
		{"past ended day unchanged", fullDay(), "2026-03-05", 8 * time.Hour, 30 * time.Minute, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := later
			if tt.today == day {
				now = at(12, 0)
			}
			f, err := ComputeDay(tt.events, tt.today, now)
			if err != nil {
				t.Fatalf("ComputeDay() failed: %v", err)
			}
			if f.Span != tt.wantSpan || f.TotalBreak != tt.wantBreak {
				t.Errorf("span=%v break=%v, want %v and %v", f.Span, f.TotalBreak, tt.wantSpan, tt.wantBreak)
			}
			if f.Stale != tt.wantStale || f.InProgress != tt.wantActive {
				t.Errorf("stale=%v in progress=%v", f.Stale, f.InProgress)
			}
			if f.Stale && f.CurrentInterval != 0 {
				t.Errorf("stale day has a current interval of %v", f.CurrentInterval)
			}
			for _, b := range f.Breaks {
				if f.Stale && b.Open {
					t.Error("stale day reports an open break")
				}
			}
		})
	}
}

func TestAggregateLeavesOutPastUnendedDay(t *testing.T) {
	events := []models.Event{
		ev(models.EventStart, at(9, 0), ""),
		{Day: "2026-03-03", Kind: models.EventStart, Timestamp: at(10, 0).AddDate(0, 0, 1)},
		{Day: "2026-03-03", Kind: models.EventEnd, Timestamp: at(16, 0).AddDate(0, 0, 1)},
	}

	totals := Aggregate("2026-03-02", "2026-03-08", "2026-03-05", events, at(9, 0).AddDate(0, 0, 3))

	if totals.Span != 6*time.Hour || totals.NetWork != 6*time.Hour {
		t.Errorf("span=%v net=%v, want 6h each", totals.Span, totals.NetWork)
	}
	if len(totals.Days) != 1 || len(totals.Unended) != 1 || totals.Unended[0] != day {
		t.Errorf("days=%d unended=%v", len(totals.Days), totals.Unended)
	}
}

// endedLogs returns every event log of up to maxLen events that replays to
// an ENDED day. Gaps between events vary so that no two intervals match.
func endedLogs(t *testing.T, maxLen int) [][]models.Event {
	t.Helper()
	kinds := []models.EventKind{models.EventStart, models.EventPause, models.EventResume, models.EventEnd}

	var out [][]models.Event
	var walk func(prefix []models.Event)
	walk = func(prefix []models.Event) {
		if len(prefix) > 0 {
			if s, err := session.Replay(day, prefix); err == nil && s.State == models.StateEnded {
				out = append(out, append([]models.Event(nil), prefix...))
			}
		}
		if len(prefix) == maxLen {
			return
		}
		last := at(8, 0)
		if len(prefix) > 0 {
			last = prefix[len(prefix)-1].Timestamp
		}
		step := time.Duration(7*len(prefix)+13) * time.Minute
		for _, k := range kinds {
			reason := ""
			if k == models.EventPause {
				reason = "break"
			}
			walk(append(prefix, ev(k, last.Add(step), reason)))
		}
	}
	walk(nil)
	return out
}

func TestEndedDayNetWorkPlusBreakIsSpan(t *testing.T) {
	logs := endedLogs(t, 6)
	if len(logs) < 5 {
		t.Fatalf("only %d ended logs generated", len(logs))
	}
	for _, events := range logs {
		f, err := Compute(events, at(23, 0))
		if err != nil {
			t.Fatalf("Compute(%v) failed: %v", kindsOf(events), err)
		}
		if f.NetWork+f.TotalBreak != f.Span {
			t.Errorf("%v: net %v + break %v != span %v", kindsOf(events), f.NetWork, f.TotalBreak, f.Span)
		}
		if want := f.End.Sub(*f.Start); f.Span != want {
			t.Errorf("%v: span %v, want END-START %v", kindsOf(events), f.Span, want)
		}
		if f.InProgress || f.CurrentInterval != 0 {
			t.Errorf("%v: ended day still in progress", kindsOf(events))
		}
	}
}

func kindsOf(events []models.Event) []models.EventKind {
	out := make([]models.EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}
