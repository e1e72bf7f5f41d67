package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/timeledger/internal/accounting"
	"github.com/julianstephens/timeledger/internal/models"
	"github.com/julianstephens/timeledger/internal/utils"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(10)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Width(8)

	sinceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(12)

	reasonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)
)

// Model shows the day's events in a scrollable viewport.
type Model struct {
	viewport viewport.Model
	entries  []accounting.TimelineEntry
	location *time.Location
	width    int
	height   int
}

func New(width, height int, loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	return Model{
		viewport: viewport.New(width, height),
		location: loc,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.entries) == 0 {
		return "No events recorded today. Press 's' to start work."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetEntries replaces the timeline. Rendering is skipped when nothing changed
// so the scroll position survives the once-a-second refresh.
func (m *Model) SetEntries(entries []accounting.TimelineEntry) {
	if len(entries) == len(m.entries) {
		return
	}
	m.entries = entries
	m.Render()
}

func (m *Model) Render() {
	var b strings.Builder
	for i, e := range m.entries {
		since := "-"
		if i > 0 {
			since = "+" + utils.FormatDuration(e.SinceLast)
		}
		line := fmt.Sprintf("%s %s %s %s\n",
			timeStyle.Render(utils.FormatClock(e.Timestamp, m.location)),
			kindStyle.Render(string(e.Kind)),
			sinceStyle.Render(since),
			reasonStyle.Render(reasonText(e)),
		)
		b.WriteString(line)
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func reasonText(e accounting.TimelineEntry) string {
	if e.Kind != models.EventPause {
		return ""
	}
	return e.Reason
}
