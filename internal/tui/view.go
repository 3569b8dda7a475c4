package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/termplan/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StatePlan:
		content = docStyle.Render(m.planModel.View())
	case constants.StateTasks:
		content = docStyle.Render(m.taskList.View())
	case constants.StateLog:
		content = docStyle.Render(m.logModel.View())
	case constants.StateAddTask:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmation:
		content = m.viewConfirmation()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewConflictBanner(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if active == constants.StateAddTask || active == constants.StateConfirmation {
		active = m.previousState
	}
	var rendered []string
	for _, t := range tabs {
		if t.state == active {
			rendered = append(rendered, activeTabStyle.Render(t.title))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(t.title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) viewStatus() string {
	switch {
	case m.err != nil:
		return dangerStyle.Render("Error: " + m.err.Error())
	case m.generating:
		return statusStyle.Render("Generating plan...")
	case m.status != "":
		return statusStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewConflictBanner() string {
	if m.conflicts == 0 || m.state != constants.StatePlan {
		return ""
	}

	return bannerStyle.Render(fmt.Sprintf("⚠ %d CONFLICT(S) DETECTED, run 'termplan validate'", m.conflicts))
}

func (m Model) viewConfirmation() string {
	msg := ""
	if m.confirm != nil {
		msg = m.confirm.Message
	}
	return lipgloss.Place(m.width, m.height-chromeHeight,
		lipgloss.Center, lipgloss.Center,
		confirmBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(msg),
			"",
			"[y] Yes   [n] No",
		)),
	)
}
