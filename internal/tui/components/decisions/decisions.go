package decisions

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/utils"
)

var (
	seqStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(5)
	reasonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)

	decisionStyles = map[models.Decision]lipgloss.Style{
		models.DecisionPlaced:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Width(11),
		models.DecisionSkipped:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(11),
		models.DecisionOverflowed: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Width(11),
		models.DecisionRejected:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Width(11),
	}
)

// Model shows the decision log of one plan run.
type Model struct {
	viewport viewport.Model
	entries  []models.LogEntry
	titles   map[string]string
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.entries) == 0 {
		return "No decisions recorded yet."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
}

func (m *Model) SetEntries(entries []models.LogEntry, titles map[string]string) {
	m.entries = entries
	m.titles = titles
	m.viewport.SetContent(Content(entries, titles))
	m.viewport.GotoTop()
}

// Content renders one line per entry with its slots and reason below.
func Content(entries []models.LogEntry, titles map[string]string) string {
	var b strings.Builder
	for _, e := range entries {
		title := e.TaskID
		if t, ok := titles[e.TaskID]; ok {
			title = t
		}
		style, ok := decisionStyles[e.Decision]
		if !ok {
			style = lipgloss.NewStyle().Width(11)
		}
		fmt.Fprintf(&b, "%s%s %s", seqStyle.Render(fmt.Sprintf("#%d", e.Seq)), style.Render(string(e.Decision)), title)
		if e.Decision == models.DecisionPlaced {
			fmt.Fprintf(&b, " (%.2f)", e.Score)
		}
		b.WriteString("\n")

		var spans []string
		for _, s := range e.Slots {
			spans = append(spans, s.Start.Format("01-02 ")+utils.FormatSpan(s.Start, s.End))
		}
		detail := e.Reason
		if len(spans) > 0 {
			detail = strings.Join(spans, ", ") + " · " + detail
		}
		if detail != "" {
			b.WriteString("     " + reasonStyle.Render(detail) + "\n")
		}
	}
	return b.String()
}
