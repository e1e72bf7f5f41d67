package session

import (
	"errors"
	"fmt"

	"github.com/julianstephens/timeledger/internal/models"
)

// Sentinels for errors.Is. The concrete error types below match them.
var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrMissingReason     = errors.New("a pause reason is required")
	ErrAppendFailed      = errors.New("append failed")
	ErrCorruptedLog      = errors.New("corrupted event log")
)

// InvalidTransitionError is returned when an action is not allowed in the
// session's current state. Nothing was written.
type InvalidTransitionError struct {
	Action models.EventKind
	State  models.State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", ActionName(e.Action), e.State)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// AppendFailedError wraps a store failure. The session did not advance, but
// the write may have committed anyway: reload the session from the log
// before retrying.
type AppendFailedError struct {
	Action models.EventKind
	Day    string
	Err    error
}

func (e *AppendFailedError) Error() string {
	return fmt.Sprintf("failed to record %s for %s: %v", ActionName(e.Action), e.Day, e.Err)
}

func (e *AppendFailedError) Unwrap() error { return e.Err }

func (e *AppendFailedError) Is(target error) bool { return target == ErrAppendFailed }

// CorruptedLogError identifies the first event of a day that cannot be
// replayed. Index is the event's position in the day's ordered log.
type CorruptedLogError struct {
	Day    string
	Index  int
	Event  models.Event
	Reason string
}

func (e *CorruptedLogError) Error() string {
	return fmt.Sprintf("corrupted log for %s at event %d (%s %s): %s",
		e.Day, e.Index, e.Event.Kind, e.Event.ID, e.Reason)
}

func (e *CorruptedLogError) Is(target error) bool { return target == ErrCorruptedLog }

func corrupted(day string, index int, ev models.Event, format string, args ...any) error {
	return &CorruptedLogError{Day: day, Index: index, Event: ev, Reason: fmt.Sprintf(format, args...)}
}
