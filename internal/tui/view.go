package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/timeledger/internal/models"
	"github.com/julianstephens/timeledger/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.mode == modePausing && m.form != nil:
		content = docStyle.Render(m.form.View())
	case m.tab == TabTimeline:
		content = docStyle.Render(m.timeline.View())
	case m.tab == TabHistory:
		content = docStyle.Render(m.history.View())
	default:
		content = m.viewToday()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatusLine(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		if m.tab == Tab(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewToday() string {
	title := titleStyle.Render(fmt.Sprintf("%s  %s", m.day, utils.FormatClock(m.now, m.location)))
	if !m.loaded {
		msg := "Loading..."
		if m.halted {
			msg = dangerStyle.Render("This day's log cannot be replayed. Run 'timeledger doctor'.")
		}
		return m.place(lipgloss.JoinVertical(lipgloss.Center, title, msg))
	}

	f := m.figures
	state := stateStyle(m.session.State).Render(m.session.StatusText())

	var big string
	switch m.session.State {
	case models.StateWorking:
		big = "Working for " + utils.FormatDuration(f.CurrentInterval)
	case models.StatePaused:
		if n := len(f.Breaks); n > 0 {
			big = "On break for " + utils.FormatDuration(f.Breaks[n-1].Duration())
		}
	case models.StateEnded:
		big = "Net work " + utils.FormatDuration(f.NetWork)
	default:
		big = "Press 's' to start your day"
	}

	rows := []string{title, state, clockStyle.Render(big)}
	if f.Start != nil {
		rows = append(rows,
			row("Started", utils.FormatClock(*f.Start, m.location)),
			row("Net work", utils.FormatDuration(f.NetWork)),
			row("Break time", fmt.Sprintf("%s (%d)", utils.FormatDuration(f.TotalBreak), len(f.Breaks))),
			row("Span", utils.FormatDuration(f.Span)),
		)
	}
	if f.End != nil {
		rows = append(rows, row("Ended", utils.FormatClock(*f.End, m.location)))
	}
	if m.session.State == models.StatePaused {
		rows = append(rows, row("Reason", m.session.ActiveBreakReason))
	}
	if f.UnresolvedBreak {
		rows = append(rows, warningStyle.Render("The last break was never resumed; it was closed at end of day."))
	}
	return m.place(lipgloss.JoinVertical(lipgloss.Center, rows...))
}

func (m Model) viewStatusLine() string {
	switch {
	case m.err != "":
		return dangerStyle.Render(m.err)
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	}
	return ""
}

func (m Model) place(content string) string {
	if m.width > 0 && m.height > 6 {
		return lipgloss.Place(m.width, m.height-6, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}
