package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/timeledger/internal/accounting"
	"github.com/julianstephens/timeledger/internal/utils"
)

// Item is one worked day.
type Item struct {
	Figures  accounting.Figures
	location *time.Location
}

func (i Item) Title() string {
	return fmt.Sprintf("%s  %s net", i.Figures.Day, utils.FormatDuration(i.Figures.NetWork))
}

func (i Item) Description() string {
	end := "running"
	if i.Figures.End != nil {
		end = utils.FormatClock(*i.Figures.End, i.location)
	}
	desc := fmt.Sprintf("%s - %s | span %s | %d break(s) %s",
		utils.FormatClock(*i.Figures.Start, i.location), end,
		utils.FormatDuration(i.Figures.Span),
		len(i.Figures.Breaks), utils.FormatDuration(i.Figures.TotalBreak))
	if i.Figures.UnresolvedBreak {
		desc += " | unresolved break"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Figures.Day }

// Model lists recent days, newest first.
type Model struct {
	list      list.Model
	location  *time.Location
	corrupted []accounting.CorruptedDay
	unended   []string
}

func New(width, height int, loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "History"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	return Model{list: l, location: loc}
}

// SetTotals loads the days of t.
func (m *Model) SetTotals(t accounting.Totals) {
	items := make([]list.Item, 0, len(t.Days))
	for i := len(t.Days) - 1; i >= 0; i-- {
		items = append(items, Item{Figures: t.Days[i], location: m.location})
	}
	m.list.SetItems(items)
	m.corrupted = t.Corrupted
	m.unended = t.Unended
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No work recorded recently."
	}
	view := m.list.View()
	if len(m.corrupted) > 0 {
		view += fmt.Sprintf("\n  ⚠ %d corrupted day(s) skipped; run 'timeledger doctor'", len(m.corrupted))
	}
	if len(m.unended) > 0 {
		view += fmt.Sprintf("\n  ⚠ %d day(s) never ended: %s", len(m.unended), strings.Join(m.unended, ", "))
	}
	return view
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
