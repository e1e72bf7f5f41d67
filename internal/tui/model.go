package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/timeledger/internal/accounting"
	"github.com/julianstephens/timeledger/internal/clock"
	"github.com/julianstephens/timeledger/internal/models"
	"github.com/julianstephens/timeledger/internal/session"
	"github.com/julianstephens/timeledger/internal/storage"
	"github.com/julianstephens/timeledger/internal/tui/components/history"
	"github.com/julianstephens/timeledger/internal/tui/components/timeline"
	"github.com/julianstephens/timeledger/internal/utils"
)

// HistoryDays is how many days the History tab covers, today included.
const HistoryDays = 14

type Tab int

const (
	TabToday Tab = iota
	TabTimeline
	TabHistory
)

var tabTitles = []string{"Today", "Timeline", "History"}

type mode int

const (
	modeNormal mode = iota
	modePausing
)

// Store is the read side the dashboard needs beyond the engine.
type Store interface {
	storage.EventLog
	ListForRange(ctx context.Context, startDay, endDay string) ([]models.Event, error)
}

type PauseFormModel struct {
	Reason string
}

type Model struct {
	engine   *session.Engine
	store    Store
	clock    clock.Clock
	location *time.Location
	timeout  time.Duration

	tab       Tab
	mode      mode
	keys      KeyMap
	help      help.Model
	form      *huh.Form
	pauseForm *PauseFormModel

	day         string
	now         time.Time
	session     models.Session
	figures     accounting.Figures
	loaded      bool
	halted      bool // the day's log does not replay
	busy        bool // an action is in flight
	reconciling bool // reloading after a failed append
	announced   bool

	notice string
	err    string

	timeline timeline.Model
	history  history.Model

	width    int
	height   int
	quitting bool
}

func NewModel(engine *session.Engine, store Store, clk clock.Clock, loc *time.Location, timeout time.Duration) Model {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	now := clk.Now()
	day := utils.DayOf(now, loc)

	m := Model{
		engine:   engine,
		store:    store,
		clock:    clk,
		location: loc,
		timeout:  timeout,
		tab:      TabToday,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		day:      day,
		now:      now,
		session:  models.NewSession(day),
		busy:     true, // until the first load lands
		timeline: timeline.New(0, 0, loc),
		history:  history.New(0, 0, loc),
	}
	m.syncEnabled()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadSession(m.day), m.loadHistory(m.day), tick())
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Start, m.keys.Pause, m.keys.Resume, m.keys.End, m.keys.Tab, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	actions := []key.Binding{m.keys.Start, m.keys.Pause, m.keys.Resume, m.keys.End, m.keys.Refresh}
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}
	return [][]key.Binding{actions, global, navigation}
}

// Session returns the session as last loaded or advanced.
func (m Model) Session() models.Session {
	return m.session
}

// Busy reports whether an action is in flight.
func (m Model) Busy() bool {
	return m.busy
}

// refresh recomputes the live figures from the in-memory session. It never
// touches the store.
func (m *Model) refresh() {
	if !m.loaded || m.halted {
		return
	}
	f, err := accounting.Compute(m.session.Events, m.now)
	if err != nil {
		m.halt(err)
		return
	}
	if f.Day == "" {
		f.Day = m.day
	}
	m.figures = f
	m.timeline.SetEntries(f.Timeline)
}

func (m *Model) halt(err error) {
	m.halted = true
	m.err = errorText(err)
	m.syncEnabled()
}

func (m *Model) newPauseForm() {
	m.pauseForm = &PauseFormModel{}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Why are you pausing?").
				Placeholder("lunch").
				Value(&m.pauseForm.Reason).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return session.ErrMissingReason
					}
					return nil
				}),
		),
	)
	m.mode = modePausing
}
