package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/timeledger/internal/clock"
	"github.com/julianstephens/timeledger/internal/constants"
	"github.com/julianstephens/timeledger/internal/logger"
	"github.com/julianstephens/timeledger/internal/models"
	"github.com/julianstephens/timeledger/internal/storage"
)

// Engine drives live actions against the event log. It keeps no session
// state of its own beyond a replay cache that is dropped on every append.
type Engine struct {
	log   storage.EventLog
	clock clock.Clock

	mu    sync.RWMutex
	cache map[string]models.Session
	gen   uint64 // bumped by every Invalidate
}

// NewEngine returns an engine over log. A nil clock means the system clock.
func NewEngine(log storage.EventLog, clk clock.Clock) *Engine {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Engine{
		log:   log,
		clock: clk,
		cache: make(map[string]models.Session),
	}
}

// Load reconstructs the session for day by replaying its stored events.
func (e *Engine) Load(ctx context.Context, day string) (models.Session, error) {
	e.mu.RLock()
	cached, ok := e.cache[day]
	gen := e.gen
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	events, err := e.log.ListForDay(ctx, day)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to list events for %s: %w", day, err)
	}

	s, err := Replay(day, events)
	if err != nil {
		logger.Error("Replay failed", "day", day, "error", err)
		return models.Session{}, err
	}

	// An append that landed while the log was being read makes s stale.
	e.mu.Lock()
	if e.gen == gen {
		e.cache[day] = s
	}
	e.mu.Unlock()
	return s, nil
}

// Invalidate drops any cached session for day.
func (e *Engine) Invalidate(day string) {
	e.mu.Lock()
	delete(e.cache, day)
	e.gen++
	e.mu.Unlock()
}

// Apply validates a against s, appends the resulting event and returns the
// advanced session. On any error the returned session is s unchanged.
func (e *Engine) Apply(ctx context.Context, s models.Session, a Action) (models.Session, error) {
	if err := Validate(s, a); err != nil {
		logger.Debug("Action rejected", "day", s.Day, "action", a.String(), "state", s.State, "error", err)
		return s, err
	}

	ev := models.Event{
		Day:       s.Day,
		Kind:      a.Kind,
		Timestamp: e.timestamp(s),
		Source:    constants.EventSource,
	}
	if a.Kind == models.EventPause {
		ev.Reason = strings.TrimSpace(a.Reason)
	}

	id, err := e.log.Append(ctx, ev)
	if err != nil {
		// The write may have committed before the error surfaced.
		e.Invalidate(s.Day)
		logger.Warn("Append failed", "day", s.Day, "kind", a.Kind, "error", err)
		return s, &AppendFailedError{Action: a.Kind, Day: s.Day, Err: err}
	}
	ev.ID = id
	e.Invalidate(s.Day)

	logger.Debug("Event appended", "day", s.Day, "kind", ev.Kind, "id", id)
	return Advance(s, ev), nil
}

// StartWork applies StartWork to s.
func (e *Engine) StartWork(ctx context.Context, s models.Session) (models.Session, error) {
	return e.Apply(ctx, s, StartWork())
}

// Pause applies Pause(reason) to s.
func (e *Engine) Pause(ctx context.Context, s models.Session, reason string) (models.Session, error) {
	return e.Apply(ctx, s, Pause(reason))
}

// Resume applies Resume to s.
func (e *Engine) Resume(ctx context.Context, s models.Session) (models.Session, error) {
	return e.Apply(ctx, s, Resume())
}

// EndDay applies EndDay to s.
func (e *Engine) EndDay(ctx context.Context, s models.Session) (models.Session, error) {
	return e.Apply(ctx, s, EndDay())
}

// timestamp is the clock reading truncated to whole seconds, never earlier
// than the session's last event.
func (e *Engine) timestamp(s models.Session) time.Time {
	now := e.clock.Now().UTC().Truncate(time.Second)
	if last, ok := s.LastEvent(); ok && now.Before(last.Timestamp) {
		return last.Timestamp
	}
	return now
}
