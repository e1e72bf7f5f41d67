package models

// State is the derived state of a day's session.
type State string

const (
	StateIdle    State = "idle"
	StateWorking State = "working"
	StatePaused  State = "paused"
	StateEnded   State = "ended"
)

// Session is the fold of one day's events. It is never stored directly.
type Session struct {
	Day               string  `json:"day"`
	State             State   `json:"state"`
	Events            []Event `json:"events"`
	ActiveBreakReason string  `json:"active_break_reason,omitempty"`
}

// NewSession returns the initial IDLE session for day.
func NewSession(day string) Session {
	return Session{Day: day, State: StateIdle}
}

// LastEvent returns the most recent event, if any.
func (s Session) LastEvent() (Event, bool) {
	if len(s.Events) == 0 {
		return Event{}, false
	}
	return s.Events[len(s.Events)-1], true
}

func (s Session) CanStart() bool  { return s.State == StateIdle }
func (s Session) CanPause() bool  { return s.State == StateWorking }
func (s Session) CanResume() bool { return s.State == StatePaused }
func (s Session) CanEnd() bool    { return s.State == StateWorking || s.State == StatePaused }

// Active reports whether the day has been started but not ended.
func (s Session) Active() bool {
	return s.State == StateWorking || s.State == StatePaused
}

// StatusText returns the human-readable label for the session state.
func (s Session) StatusText() string {
	switch s.State {
	case StateIdle:
		return "Ready to Start"
	case StateWorking:
		return "Working"
	case StatePaused:
		return "On Break"
	case StateEnded:
		return "Day Ended"
	default:
		return "Unknown"
	}
}
