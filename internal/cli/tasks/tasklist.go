package tasks

import (
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/utils"
)

type TaskListCmd struct {
	All     bool `short:"a" help:"Include completed tasks."`
	Deleted bool `help:"Show deleted tasks instead."`
	ShowIDs bool `help:"Show full task IDs." name:"show-ids"`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	tasks, err := ctx.Store.GetAllTasksIncludingDeleted()
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}

	var rows [][]string
	for _, t := range c.filter(tasks) {
		rows = append(rows, c.row(t, loc))
	}
	if len(rows) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	headers := []string{"ID", "Title", "Min", "Priority", "Category", "Energy", "Due", "Status"}
	fmt.Println(cli.Table(headers, rows))
	return nil
}

func (c *TaskListCmd) filter(tasks []models.Task) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if (t.DeletedAt != nil) != c.Deleted {
			continue
		}
		if t.Completed && !c.All && !c.Deleted {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (c *TaskListCmd) row(t models.Task, loc *time.Location) []string {
	id := t.ID
	if !c.ShowIDs {
		id = cli.ShortID(id)
	}
	due := t.DueDate
	if due == "" {
		due = "-"
	}
	return []string{id, t.Title, strconv.Itoa(t.EstimatedMin), string(t.Priority),
		string(t.Category), string(t.Energy), due, status(t, loc)}
}

func status(t models.Task, loc *time.Location) string {
	switch {
	case t.DeletedAt != nil:
		return "deleted"
	case t.Completed:
		return "done"
	case t.HasLockedTime():
		start := t.LockedStart.In(loc)
		return "locked " + start.Format(constants.DateFormat) + " " + utils.FormatSpan(start, t.LockedEnd.In(loc))
	case t.Locked:
		return "locked"
	}
	return "open"
}
