package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/timeledger/internal/logger"
	"github.com/julianstephens/timeledger/internal/models"
	"github.com/julianstephens/timeledger/internal/session"
	"github.com/julianstephens/timeledger/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.timeline.SetSize(msg.Width-4, msg.Height-8)
		m.history.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		cmds := []tea.Cmd{tick()}
		if today := utils.DayOf(m.now, m.location); today != m.day && !m.busy {
			logger.Info("Day rolled over", "from", m.day, "to", today)
			m.day = today
			m.loaded = false
			m.halted = false
			m.busy = true
			m.syncEnabled()
			cmds = append(cmds, m.loadSession(today), m.loadHistory(today))
		}
		m.refresh()
		return m, tea.Batch(cmds...)

	case sessionLoadedMsg:
		return m.onSessionLoaded(msg), nil

	case actionDoneMsg:
		return m.onActionDone(msg)

	case historyLoadedMsg:
		if msg.err != nil {
			logger.Warn("Failed to load history", "error", msg.err)
			return m, nil
		}
		m.history.SetTotals(msg.totals)
		return m, nil
	}

	if m.mode == modePausing {
		return m.updatePauseForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) onSessionLoaded(msg sessionLoadedMsg) Model {
	if msg.day != m.day {
		return m
	}
	m.busy = false
	reconciled := m.reconciling
	m.reconciling = false
	if msg.err != nil {
		m.halt(msg.err)
		return m
	}

	prev := len(m.session.Events)
	m.session = msg.session
	m.loaded = true
	m.halted = false
	switch {
	case !reconciled:
		m.err = ""
	case len(m.session.Events) > prev:
		m.err = ""
		m.notice = "The store recorded the last action after all."
	}
	m.syncEnabled()
	m.refresh()

	if !m.announced {
		m.announced = true
		m.notice = resumeNotice(m.session, m.location)
	}
	return m
}

func (m Model) onActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.err = errorText(msg.err)
		m.notice = ""
		if errors.Is(msg.err, session.ErrAppendFailed) {
			// Keys stay disabled until the log says what was stored.
			m.busy = true
			m.reconciling = true
			m.syncEnabled()
			return m, m.loadSession(m.day)
		}
		m.syncEnabled()
		return m, nil
	}

	m.session = msg.session
	m.err = ""
	m.notice = actionNotice(msg.action, m.session, m.location)
	m.syncEnabled()
	m.refresh()
	return m, m.loadHistory(m.day)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		m.tab = (m.tab + 1) % Tab(len(tabTitles))
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.tab = (m.tab - 1 + Tab(len(tabTitles))) % Tab(len(tabTitles))
		return m, nil
	case key.Matches(msg, m.keys.Start):
		return m.dispatch(session.StartWork())
	case key.Matches(msg, m.keys.Pause):
		m.newPauseForm()
		return m, m.form.Init()
	case key.Matches(msg, m.keys.Resume):
		return m.dispatch(session.Resume())
	case key.Matches(msg, m.keys.End):
		return m.dispatch(session.EndDay())
	case key.Matches(msg, m.keys.Refresh):
		m.engine.Invalidate(m.day)
		m.busy = true
		m.syncEnabled()
		return m, tea.Batch(m.loadSession(m.day), m.loadHistory(m.day))
	}

	var cmd tea.Cmd
	switch m.tab {
	case TabTimeline:
		m.timeline, cmd = m.timeline.Update(msg)
	case TabHistory:
		m.history, cmd = m.history.Update(msg)
	}
	return m, cmd
}

// dispatch starts a at most once: keys stay disabled until its result lands.
func (m Model) dispatch(a session.Action) (tea.Model, tea.Cmd) {
	if m.busy || m.halted {
		return m, nil
	}
	m.busy = true
	m.err = ""
	m.notice = "Saving..."
	m.syncEnabled()
	return m, m.apply(m.session, a)
}

func (m Model) updatePauseForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.mode = modeNormal
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		reason := strings.TrimSpace(m.pauseForm.Reason)
		m.mode = modeNormal
		m.form = nil
		return m.dispatch(session.Pause(reason))
	case huh.StateAborted:
		m.mode = modeNormal
		m.form = nil
	}
	return m, cmd
}

// resumeNotice announces a day that was already under way when the
// dashboard opened.
func resumeNotice(s models.Session, loc *time.Location) string {
	last, ok := s.LastEvent()
	if !ok {
		return ""
	}
	clock := utils.FormatClock(last.Timestamp, loc)
	switch s.State {
	case models.StateWorking:
		return fmt.Sprintf("Welcome back. You have been working since %s.", clock)
	case models.StatePaused:
		return fmt.Sprintf("Welcome back. You are on a break (%s) since %s.", s.ActiveBreakReason, clock)
	case models.StateEnded:
		return fmt.Sprintf("Today's work ended at %s.", clock)
	}
	return ""
}

func actionNotice(a session.Action, s models.Session, loc *time.Location) string {
	last, ok := s.LastEvent()
	if !ok {
		return ""
	}
	clock := utils.FormatClock(last.Timestamp, loc)
	switch a.Kind {
	case models.EventStart:
		return "Work started at " + clock
	case models.EventPause:
		return fmt.Sprintf("Paused at %s: %s", clock, s.ActiveBreakReason)
	case models.EventResume:
		return "Resumed at " + clock
	case models.EventEnd:
		return "Day ended at " + clock
	}
	return ""
}
