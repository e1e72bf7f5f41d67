package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/timeledger/internal/models"
	"github.com/julianstephens/timeledger/internal/session"
)

type memStore struct {
	events    []models.Event
	appendErr error
	reads     int
}

func (s *memStore) Append(_ context.Context, ev models.Event) (string, error) {
	if s.appendErr != nil {
		return "", s.appendErr
	}
	ev.ID = time.Now().Format(time.RFC3339Nano)
	s.events = append(s.events, ev)
	return ev.ID, nil
}

func (s *memStore) ListForDay(_ context.Context, day string) ([]models.Event, error) {
	s.reads++
	var out []models.Event
	for _, ev := range s.events {
		if ev.Day == day {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *memStore) ListForRange(_ context.Context, startDay, endDay string) ([]models.Event, error) {
	s.reads++
	var out []models.Event
	for _, ev := range s.events {
		if ev.Day >= startDay && ev.Day <= endDay {
			out = append(out, ev)
		}
	}
	return out, nil
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func event(kind models.EventKind, ts time.Time, reason string) models.Event {
	return models.Event{Day: "2026-03-02", Kind: kind, Timestamp: ts, Reason: reason}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

// newLoadedModel builds a model over store and delivers the first load.
func newLoadedModel(t *testing.T, store *memStore, clk *testClock) Model {
	t.Helper()
	engine := session.NewEngine(store, clk)
	m := NewModel(engine, store, clk, time.UTC, time.Second)
	if !m.Busy() {
		t.Fatal("model should be busy until the first load lands")
	}
	m, _ = update(t, m, m.loadSession(m.day)())
	return m
}

func TestFirstLoadAnnouncesDayInProgress(t *testing.T) {
	store := &memStore{events: []models.Event{event(models.EventStart, at(9, 0), "")}}
	m := newLoadedModel(t, store, &testClock{now: at(10, 30)})

	if m.Busy() || m.halted {
		t.Fatalf("busy=%v halted=%v after load", m.Busy(), m.halted)
	}
	if m.Session().State != models.StateWorking {
		t.Errorf("state = %s, want working", m.Session().State)
	}
	if !strings.Contains(m.notice, "working since 09:00:00") {
		t.Errorf("notice = %q", m.notice)
	}
	if m.figures.NetWork != 90*time.Minute {
		t.Errorf("net work = %v, want 1h30m", m.figures.NetWork)
	}
	if m.keys.Start.Enabled() || !m.keys.Pause.Enabled() || m.keys.Resume.Enabled() || !m.keys.End.Enabled() {
		t.Error("enabled keys do not match a working day")
	}
}

func TestActionKeysDisabledWhileBusy(t *testing.T) {
	store := &memStore{}
	clk := &testClock{now: at(9, 0)}
	m := newLoadedModel(t, store, clk)

	m, cmd := update(t, m, runeKey('s'))
	if cmd == nil {
		t.Fatal("start key produced no command")
	}
	if !m.Busy() || m.notice != "Saving..." {
		t.Errorf("busy=%v notice=%q after dispatch", m.Busy(), m.notice)
	}
	for name, enabled := range map[string]bool{
		"start": m.keys.Start.Enabled(), "pause": m.keys.Pause.Enabled(),
		"resume": m.keys.Resume.Enabled(), "end": m.keys.End.Enabled(),
	} {
		if enabled {
			t.Errorf("%s enabled while busy", name)
		}
	}

	// A second press before the result lands is ignored.
	if _, again := update(t, m, runeKey('s')); again != nil {
		t.Error("second start press produced a command")
	}

	m, _ = update(t, m, cmd())
	if m.Busy() {
		t.Error("still busy after the action completed")
	}
	if len(store.events) != 1 || store.events[0].Kind != models.EventStart {
		t.Fatalf("stored events = %+v", store.events)
	}
	if m.Session().State != models.StateWorking || m.notice != "Work started at 09:00:00" {
		t.Errorf("state=%s notice=%q", m.Session().State, m.notice)
	}
}

func TestForbiddenKeysDoNothing(t *testing.T) {
	store := &memStore{}
	m := newLoadedModel(t, store, &testClock{now: at(9, 0)})

	for _, r := range []rune{'p', 'r', 'e'} {
		var cmd tea.Cmd
		m, cmd = update(t, m, runeKey(r))
		if cmd != nil || m.Busy() || m.mode != modeNormal {
			t.Errorf("key %q on an idle day changed the model", r)
		}
	}
	if len(store.events) != 0 {
		t.Errorf("events appended: %+v", store.events)
	}
}

func TestPauseForm(t *testing.T) {
	store := &memStore{events: []models.Event{event(models.EventStart, at(9, 0), "")}}
	clk := &testClock{now: at(12, 0)}
	m := newLoadedModel(t, store, clk)

	m, _ = update(t, m, runeKey('p'))
	if m.mode != modePausing || m.form == nil {
		t.Fatal("pause key did not open the reason form")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeNormal || m.form != nil {
		t.Fatal("esc did not cancel the form")
	}
	if len(store.events) != 1 {
		t.Fatal("cancelled pause appended an event")
	}

	m, _ = update(t, m, runeKey('p'))
	m.pauseForm.Reason = "  lunch  "
	m.form.State = huh.StateCompleted
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !m.Busy() {
		t.Fatal("completed form did not dispatch the pause")
	}

	m, _ = update(t, m, cmd())
	if m.Session().State != models.StatePaused || m.Session().ActiveBreakReason != "lunch" {
		t.Errorf("session = %+v", m.Session())
	}
	if m.notice != "Paused at 12:00:00: lunch" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestAppendFailureKeepsSession(t *testing.T) {
	store := &memStore{events: []models.Event{event(models.EventStart, at(9, 0), "")}}
	m := newLoadedModel(t, store, &testClock{now: at(17, 0)})
	store.appendErr = errors.New("disk full")

	m, cmd := update(t, m, runeKey('e'))
	m, reload := update(t, m, cmd())
	if reload == nil || !m.Busy() {
		t.Fatal("failed append did not reread the log")
	}
	m, _ = update(t, m, reload())

	if m.Session().State != models.StateWorking {
		t.Errorf("state = %s after failed append", m.Session().State)
	}
	if m.Busy() || !strings.Contains(m.err, "disk full") {
		t.Errorf("busy=%v err=%q", m.Busy(), m.err)
	}
	if !m.keys.End.Enabled() {
		t.Error("end key not re-enabled after failure")
	}
}

func TestCorruptedLogHalts(t *testing.T) {
	store := &memStore{events: []models.Event{
		event(models.EventStart, at(9, 0), ""),
		event(models.EventResume, at(10, 0), ""),
	}}
	m := newLoadedModel(t, store, &testClock{now: at(11, 0)})

	if !m.halted || !strings.Contains(m.err, "corrupted") {
		t.Fatalf("halted=%v err=%q", m.halted, m.err)
	}
	if _, cmd := update(t, m, runeKey('s')); cmd != nil {
		t.Error("action dispatched on a corrupted log")
	}
	if !strings.Contains(m.View(), "cannot be replayed") {
		t.Error("view does not explain the halt")
	}
}

func TestTickRecomputesInMemory(t *testing.T) {
	store := &memStore{events: []models.Event{event(models.EventStart, at(9, 0), "")}}
	m := newLoadedModel(t, store, &testClock{now: at(9, 0)})
	reads := store.reads

	m, _ = update(t, m, tickMsg(at(11, 15)))
	if m.figures.NetWork != 2*time.Hour+15*time.Minute {
		t.Errorf("net work = %v", m.figures.NetWork)
	}
	if store.reads != reads {
		t.Errorf("tick read the store %d time(s)", store.reads-reads)
	}
}

func TestTickReloadsOnDayRollover(t *testing.T) {
	store := &memStore{events: []models.Event{event(models.EventStart, at(9, 0), "")}}
	m := newLoadedModel(t, store, &testClock{now: at(23, 59)})

	m, _ = update(t, m, tickMsg(time.Date(2026, 3, 3, 0, 0, 1, 0, time.UTC)))
	if m.day != "2026-03-03" || !m.Busy() || m.loaded {
		t.Errorf("day=%s busy=%v loaded=%v after rollover", m.day, m.Busy(), m.loaded)
	}

	// A late result for the previous day is dropped.
	m, _ = update(t, m, sessionLoadedMsg{day: "2026-03-02", session: models.NewSession("2026-03-02")})
	if m.loaded {
		t.Error("stale load was applied")
	}

	m, _ = update(t, m, m.loadSession("2026-03-03")())
	if m.Session().State != models.StateIdle || !m.keys.Start.Enabled() {
		t.Errorf("new day state = %s", m.Session().State)
	}
}

func TestResumeNotice(t *testing.T) {
	tests := []struct {
		name   string
		events []models.Event
		state  models.State
		reason string
		want   string
	}{
		{"idle", nil, models.StateIdle, "", ""},
		{"working", []models.Event{event(models.EventStart, at(9, 0), "")}, models.StateWorking, "", "working since 09:00:00"},
		{"paused", []models.Event{event(models.EventPause, at(12, 0), "lunch")}, models.StatePaused, "lunch", "on a break (lunch) since 12:00:00"},
		{"ended", []models.Event{event(models.EventEnd, at(17, 0), "")}, models.StateEnded, "", "ended at 17:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.Session{State: tt.state, Events: tt.events, ActiveBreakReason: tt.reason}
			got := resumeNotice(s, time.UTC)
			if tt.want == "" && got != "" || !strings.Contains(got, tt.want) {
				t.Errorf("resumeNotice() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

// lateCommitStore keeps the event but reports a deadline, as a remote store
// does when its reply is lost after the commit.
type lateCommitStore struct {
	memStore
}

func (s *lateCommitStore) Append(ctx context.Context, ev models.Event) (string, error) {
	if _, err := s.memStore.Append(ctx, ev); err != nil {
		return "", err
	}
	return "", context.DeadlineExceeded
}

func TestFailedAppendReloadsBeforeRetry(t *testing.T) {
	store := &lateCommitStore{memStore{events: []models.Event{event(models.EventStart, at(9, 0), "")}}}
	clk := &testClock{now: at(17, 0)}
	engine := session.NewEngine(store, clk)
	m := NewModel(engine, store, clk, time.UTC, time.Second)
	m, _ = update(t, m, m.loadSession(m.day)())

	m, cmd := update(t, m, runeKey('e'))
	m, reload := update(t, m, cmd())
	if reload == nil || !m.Busy() {
		t.Fatalf("failed append did not trigger a reload (busy=%v)", m.Busy())
	}
	if m.keys.End.Enabled() {
		t.Error("end key enabled before the log was reread")
	}

	m, _ = update(t, m, reload())
	if m.Busy() || m.Session().State != models.StateEnded {
		t.Fatalf("busy=%v state=%s after reload", m.Busy(), m.Session().State)
	}
	if m.keys.End.Enabled() || m.err != "" {
		t.Errorf("end enabled=%v err=%q after the stored END was found", m.keys.End.Enabled(), m.err)
	}
	if _, again := update(t, m, runeKey('e')); again != nil {
		t.Error("second end dispatched")
	}
	if n := len(store.events); n != 2 {
		t.Errorf("store has %d events, want START and one END", n)
	}
}
