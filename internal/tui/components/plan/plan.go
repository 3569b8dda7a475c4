package plan

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/utils"
)

var (
	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	taskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

type Model struct {
	viewport viewport.Model
	Run      *models.PlanRun
	Titles   map[string]string
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		Titles:   make(map[string]string),
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
	if m.Run == nil {
		return "No plan yet. Press 'g' to generate."
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

// SetRun shows run. Block times must already be in the user's location.
func (m *Model) SetRun(run models.PlanRun, titles map[string]string) {
	m.Run = &run
	m.Titles = titles
	m.Render()
	m.viewport.GotoTop()
}

func (m Model) title(id string) string {
	if t, ok := m.Titles[id]; ok {
		return t
	}
	return id
}

func (m *Model) Render() {
	if m.Run == nil {
		m.viewport.SetContent("No plan loaded.")
		return
	}
	m.viewport.SetContent(Content(*m.Run, m.title))
}

// Content renders run as day sections followed by overflow and advisories.
func Content(run models.PlanRun, title func(string) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Revision %d · planned %s\n\n", run.Revision, run.Today)

	if len(run.Blocks) == 0 {
		b.WriteString(statusStyle.Render("Nothing scheduled.") + "\n")
	}
	day := ""
	for _, blk := range run.Blocks {
		if d := blk.Day(); d != day {
			if day != "" {
				b.WriteString("\n")
			}
			day = d
			b.WriteString(dayStyle.Render(blk.Start.Format("Mon "+constants.DateFormat)) + "\n")
		}
		status := fmt.Sprintf("%dm", blk.Minutes())
		if blk.UserEdited {
			status += " · edited"
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			timeStyle.Render(utils.FormatSpan(blk.Start, blk.End)),
			taskStyle.Render(title(blk.TaskID)),
			statusStyle.Render(status),
		)
	}

	if len(run.Overflow) > 0 {
		b.WriteString("\n" + warningStyle.Render(fmt.Sprintf("Overflow (%d)", len(run.Overflow))) + "\n")
		for _, o := range run.Overflow {
			fmt.Fprintf(&b, "  %s %s\n", title(o.TaskID), statusStyle.Render(string(o.Reason)))
		}
	}
	for _, a := range run.Advisories {
		b.WriteString(warningStyle.Render("⚠ "+a.Message) + "\n")
	}
	return b.String()
}
