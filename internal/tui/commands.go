package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/planner"
	"github.com/julianstephens/termplan/internal/storage"
	"github.com/julianstephens/termplan/internal/utils"
	"github.com/julianstephens/termplan/internal/validation"
)

// dataLoadedMsg carries a fresh read of the store. run is nil before the
// first plan is generated.
type dataLoadedMsg struct {
	run       *models.PlanRun
	tasks     []models.Task
	conflicts int
	err       error
}

// planGeneratedMsg is the result of the generation identified by token.
type planGeneratedMsg struct {
	token uint64
	out   planner.Outcome
	err   error
}

type taskChangedMsg struct {
	status string
	err    error
}

func loadData(svc *planner.Service) tea.Cmd {
	return func() tea.Msg {
		settings, err := svc.Store.GetSettings()
		if err != nil {
			return dataLoadedMsg{err: fmt.Errorf("failed to get settings: %w", err)}
		}
		loc, err := utils.LocationFromSettings(settings)
		if err != nil {
			return dataLoadedMsg{err: err}
		}
		tasks, err := svc.Store.GetAllTasksIncludingDeleted()
		if err != nil {
			return dataLoadedMsg{err: fmt.Errorf("failed to get tasks: %w", err)}
		}
		events, err := svc.Store.GetAllEvents()
		if err != nil {
			return dataLoadedMsg{err: fmt.Errorf("failed to get events: %w", err)}
		}

		msg := dataLoadedMsg{tasks: tasks}
		run, err := svc.Store.GetLatestPlanRun()
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return dataLoadedMsg{err: fmt.Errorf("failed to get latest plan: %w", err)}
		default:
			local := run.In(loc)
			msg.run = &local
		}

		live := make([]models.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.DeletedAt == nil {
				live = append(live, t)
			}
		}
		v := validation.New()
		result := v.ValidateTasks(live)
		result.Merge(v.ValidateFixed(live, events))
		msg.conflicts = len(result.Conflicts)
		return msg
	}
}

func generate(svc *planner.Service, token uint64) tea.Cmd {
	return func() tea.Msg {
		out, err := svc.Generate(planner.Request{Source: "tui"})
		return planGeneratedMsg{token: token, out: out, err: err}
	}
}

func addTask(svc *planner.Service, task models.Task) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Store.AddTask(task); err != nil {
			return taskChangedMsg{err: fmt.Errorf("failed to add task: %w", err)}
		}
		return taskChangedMsg{status: fmt.Sprintf("Added %q", task.Title)}
	}
}

func completeTask(svc *planner.Service, id string) tea.Cmd {
	return func() tea.Msg {
		task, err := svc.Store.GetTask(id)
		if err != nil {
			return taskChangedMsg{err: fmt.Errorf("failed to get task: %w", err)}
		}
		task.Completed = true
		if err := svc.Store.UpdateTask(task); err != nil {
			return taskChangedMsg{err: fmt.Errorf("failed to update task: %w", err)}
		}
		return taskChangedMsg{status: fmt.Sprintf("Completed %q", task.Title)}
	}
}

func deleteTask(svc *planner.Service, id, title string) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Store.DeleteTask(id); err != nil {
			return taskChangedMsg{err: fmt.Errorf("failed to delete task: %w", err)}
		}
		return taskChangedMsg{status: fmt.Sprintf("Deleted %q", title)}
	}
}

func restoreTask(svc *planner.Service, id, title string) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Store.RestoreTask(id); err != nil {
			return taskChangedMsg{err: fmt.Errorf("failed to restore task: %w", err)}
		}
		return taskChangedMsg{status: fmt.Sprintf("Restored %q", title)}
	}
}
