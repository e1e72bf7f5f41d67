package session

import (
	"strings"

	"github.com/julianstephens/timeledger/internal/models"
)

// transitions is the full table of legal moves. ENDED has no entry and is
// therefore terminal.
var transitions = map[models.State]map[models.EventKind]models.State{
	models.StateIdle: {
		models.EventStart: models.StateWorking,
	},
	models.StateWorking: {
		models.EventPause: models.StatePaused,
		models.EventEnd:   models.StateEnded,
	},
	models.StatePaused: {
		models.EventResume: models.StateWorking,
		models.EventEnd:    models.StateEnded,
	},
}

// Next returns the state reached by applying kind in state.
func Next(state models.State, kind models.EventKind) (models.State, bool) {
	next, ok := transitions[state][kind]
	return next, ok
}

// Action is a user command against a session.
type Action struct {
	Kind   models.EventKind
	Reason string
}

// StartWork begins the day.
func StartWork() Action { return Action{Kind: models.EventStart} }

// Pause steps away from work. The reason is trimmed and must not be blank.
func Pause(reason string) Action { return Action{Kind: models.EventPause, Reason: reason} }

// Resume returns from a pause.
func Resume() Action { return Action{Kind: models.EventResume} }

// EndDay closes the day. It is allowed while working or paused.
func EndDay() Action { return Action{Kind: models.EventEnd} }

func (a Action) String() string { return ActionName(a.Kind) }

// ActionName is the user-facing verb for an event kind.
func ActionName(kind models.EventKind) string {
	switch kind {
	case models.EventStart:
		return "start work"
	case models.EventPause:
		return "pause"
	case models.EventResume:
		return "resume"
	case models.EventEnd:
		return "end the day"
	default:
		return strings.ToLower(string(kind))
	}
}

// Validate checks a against the transition table and its guard. It has no
// side effects.
func Validate(s models.Session, a Action) error {
	if _, ok := Next(s.State, a.Kind); !ok {
		return &InvalidTransitionError{Action: a.Kind, State: s.State}
	}
	if a.Kind == models.EventPause && strings.TrimSpace(a.Reason) == "" {
		return ErrMissingReason
	}
	return nil
}

// Advance returns s with ev applied. ev must already be known to be legal.
// The input session is not modified.
func Advance(s models.Session, ev models.Event) models.Session {
	next, _ := Next(s.State, ev.Kind)

	events := make([]models.Event, len(s.Events), len(s.Events)+1)
	copy(events, s.Events)

	out := models.Session{
		Day:    s.Day,
		State:  next,
		Events: append(events, ev),
	}
	if ev.Kind == models.EventPause {
		out.ActiveBreakReason = ev.Reason
	}
	return out
}

// Replay folds a day's ordered events through the transition table without
// emitting anything. The first event that breaks an invariant is reported
// as a CorruptedLogError; no partial state is returned in that case.
func Replay(day string, events []models.Event) (models.Session, error) {
	s := models.NewSession(day)
	for i, ev := range events {
		if ev.Day != day {
			return models.Session{}, corrupted(day, i, ev, "event belongs to day %s", ev.Day)
		}
		if !ev.Kind.Valid() {
			return models.Session{}, corrupted(day, i, ev, "unknown event kind %q", ev.Kind)
		}
		if i > 0 && ev.Timestamp.Before(events[i-1].Timestamp) {
			return models.Session{}, corrupted(day, i, ev, "timestamp %s precedes previous event", ev.Timestamp.Format("15:04:05"))
		}
		if _, ok := Next(s.State, ev.Kind); !ok {
			return models.Session{}, corrupted(day, i, ev, "%s is not allowed while %s", ev.Kind, s.State)
		}
		hasReason := strings.TrimSpace(ev.Reason) != ""
		if ev.Kind == models.EventPause && !hasReason {
			return models.Session{}, corrupted(day, i, ev, "pause without a reason")
		}
		if ev.Kind != models.EventPause && hasReason {
			return models.Session{}, corrupted(day, i, ev, "reason on a %s event", ev.Kind)
		}
		s = Advance(s, ev)
	}
	return s, nil
}
