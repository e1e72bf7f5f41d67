package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/timeledger/internal/accounting"
	"github.com/julianstephens/timeledger/internal/constants"
	apperrors "github.com/julianstephens/timeledger/internal/errors"
	"github.com/julianstephens/timeledger/internal/models"
	"github.com/julianstephens/timeledger/internal/session"
	"github.com/julianstephens/timeledger/internal/utils"
)

type tickMsg time.Time

type sessionLoadedMsg struct {
	day     string
	session models.Session
	err     error
}

type actionDoneMsg struct {
	action  session.Action
	session models.Session
	err     error
}

type historyLoadedMsg struct {
	totals accounting.Totals
	err    error
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) storeContext() (context.Context, context.CancelFunc) {
	timeout := m.timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (m Model) loadSession(day string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.storeContext()
		defer cancel()
		s, err := m.engine.Load(ctx, day)
		return sessionLoadedMsg{day: day, session: s, err: err}
	}
}

// apply runs one action against s off the UI goroutine.
func (m Model) apply(s models.Session, a session.Action) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.storeContext()
		defer cancel()
		next, err := m.engine.Apply(ctx, s, a)
		return actionDoneMsg{action: a, session: next, err: err}
	}
}

func (m Model) loadHistory(today string) tea.Cmd {
	now := m.now
	return func() tea.Msg {
		end, err := utils.ParseDay(today, time.UTC)
		if err != nil {
			return historyLoadedMsg{err: err}
		}
		from := end.AddDate(0, 0, 1-HistoryDays).Format(constants.DateFormat)

		ctx, cancel := m.storeContext()
		defer cancel()
		events, err := m.store.ListForRange(ctx, from, today)
		if err != nil {
			return historyLoadedMsg{err: err}
		}
		return historyLoadedMsg{totals: accounting.Aggregate(from, today, today, events, now)}
	}
}

func errorText(err error) string {
	return apperrors.UserMessage(err)
}
