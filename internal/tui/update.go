package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/logger"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/planner"
	"github.com/julianstephens/termplan/internal/tui/components/tasklist"
)

// chromeHeight is the room taken by tabs, banner, status and help.
const chromeHeight = 7

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case constants.StateAddTask:
		if !isAppMsg(msg) {
			return m.updateForm(msg)
		}
	case constants.StateConfirmation:
		if msg, ok := msg.(tea.KeyMsg); ok {
			return m.updateConfirmation(msg)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h := msg.Height - chromeHeight
		if h < 1 {
			h = 1
		}
		m.planModel.SetSize(msg.Width, h)
		m.taskList.SetSize(msg.Width, h)
		m.logModel.SetSize(msg.Width, h)
		return m, nil

	case dataLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.conflicts = msg.conflicts
		m.titles = make(map[string]string, len(msg.tasks))
		for _, t := range msg.tasks {
			m.titles[t.ID] = t.Title
		}
		m.taskList.SetTasks(msg.tasks)
		if msg.run != nil {
			m.planModel.SetRun(*msg.run, m.titles)
			m.logModel.SetEntries(msg.run.Log, m.titles)
		}
		return m, nil

	case planGeneratedMsg:
		if !m.gen.IsCurrent(msg.token) {
			logger.Debug("Discarding superseded plan", "token", msg.token, "current", m.gen.Current())
			return m, nil
		}
		m.generating = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = summary(msg.out)
		return m, loadData(m.svc)

	case taskChangedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = msg.status
		return m, loadData(m.svc)

	case constants.ConfirmationMsg:
		m.confirm = &msg
		m.previousState = m.state
		m.state = constants.StateConfirmation
		return m, nil

	case tasklist.AddTaskMsg:
		m.taskForm = newTaskFormModel()
		m.form = newTaskForm(m.taskForm)
		m.previousState = m.state
		m.state = constants.StateAddTask
		return m, m.form.Init()

	case tasklist.CompleteTaskMsg:
		m.invalidate()
		return m, completeTask(m.svc, msg.ID)

	case tasklist.RestoreTaskMsg:
		m.invalidate()
		return m, restoreTask(m.svc, msg.ID, m.titles[msg.ID])

	case tasklist.DeleteTaskMsg:
		id, title := msg.ID, m.titles[msg.ID]
		svc := m.svc
		return m, func() tea.Msg {
			return constants.ConfirmationMsg{
				Message: fmt.Sprintf("Delete task %q?", title),
				Action:  func() tea.Cmd { return deleteTask(svc, id, title) },
			}
		}

	case tea.KeyMsg:
		filtering := m.state == constants.StateTasks && m.taskList.Filtering()
		if !filtering {
			if handled, cmd := m.handleGlobalKeys(msg); handled {
				return m, cmd
			}
		}
	}

	return m.updateActive(msg)
}

// isAppMsg reports messages the model handles in every state.
func isAppMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case tea.WindowSizeMsg, dataLoadedMsg, planGeneratedMsg, taskChangedMsg:
		return true
	}
	return false
}

func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil
	case key.Matches(msg, m.keys.Tab):
		m.state = nextTab(m.state, 1)
		return true, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.state = nextTab(m.state, -1)
		return true, nil
	case key.Matches(msg, m.keys.Generate):
		m.generating = true
		return true, generate(m.svc, m.gen.Next())
	}
	return false, nil
}

func nextTab(state constants.SessionState, step int) constants.SessionState {
	for i, t := range tabs {
		if t.state == state {
			return tabs[(i+step+len(tabs))%len(tabs)].state
		}
	}
	return constants.StatePlan
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case constants.StatePlan:
		m.planModel, cmd = m.planModel.Update(msg)
	case constants.StateTasks:
		m.taskList, cmd = m.taskList.Update(msg)
	case constants.StateLog:
		m.logModel, cmd = m.logModel.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = m.previousState
		task, err := m.taskForm.toTask(m.now())
		if err != nil {
			m.err = err
			return m, cmd
		}
		m.invalidate()
		return m, tea.Batch(cmd, addTask(m.svc, task))
	case huh.StateAborted:
		m.state = m.previousState
	}
	return m, cmd
}

func (m Model) updateConfirmation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		action := m.confirm.Action
		m.confirm = nil
		m.state = m.previousState
		m.invalidate()
		return m, action()
	case "n", "N", "esc":
		m.confirm = nil
		m.state = m.previousState
	}
	return m, nil
}

func (m Model) now() time.Time {
	if m.svc.Now != nil {
		return m.svc.Now()
	}
	return time.Now()
}

// invalidate drops any in-flight generation; its plan predates a task change.
func (m *Model) invalidate() {
	m.gen.Next()
	m.generating = false
}

func summary(out planner.Outcome) string {
	res := out.Result
	s := fmt.Sprintf("Revision %d: %d block(s), %d overflow, %d skipped",
		out.Run.Revision, len(res.Blocks), len(res.Overflow), planner.CountDecisions(res.Log, models.DecisionSkipped))
	if len(res.Rejections) > 0 {
		s += fmt.Sprintf(", %d edit(s) rejected", len(res.Rejections))
	}
	return s
}
