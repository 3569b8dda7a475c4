package tasks

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/models"
)

type TaskAddCmd struct {
	Title    string `arg:"" help:"Task title."`
	Minutes  int    `short:"m" help:"Estimated duration in minutes." required:""`
	Priority string `short:"p" help:"Priority (low|medium|high)." default:"medium"`
	Category string `short:"c" help:"Category (exam|project|quiz|homework|reading)." default:"homework"`
	Energy   string `short:"e" help:"Energy the task needs (low|medium|high)." default:"medium"`
	Due      string `short:"d" help:"Due date (YYYY-MM-DD)."`
	Locked   bool   `help:"Lock the task so the planner never moves it."`
	At       string `help:"Fixed start for a locked task (YYYY-MM-DD HH:MM). Implies --locked."`
}

func (c *TaskAddCmd) Validate() error {
	if c.Minutes <= 0 {
		return fmt.Errorf("duration must be greater than zero")
	}
	if _, err := models.ParsePriority(c.Priority); err != nil {
		return err
	}
	if _, err := models.ParseCategory(c.Category); err != nil {
		return err
	}
	if _, err := models.ParseEnergyLevel(c.Energy); err != nil {
		return err
	}
	if c.Due != "" {
		if _, err := time.Parse(constants.DateFormat, c.Due); err != nil {
			return fmt.Errorf("invalid due date %q (expected YYYY-MM-DD)", c.Due)
		}
	}
	return nil
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	// Already checked by Validate
	priority, _ := models.ParsePriority(c.Priority)
	category, _ := models.ParseCategory(c.Category)
	energy, _ := models.ParseEnergyLevel(c.Energy)

	task := models.Task{
		ID:           uuid.New().String(),
		Title:        c.Title,
		DueDate:      c.Due,
		EstimatedMin: c.Minutes,
		Priority:     priority,
		Category:     category,
		Energy:       energy,
		Locked:       c.Locked || c.At != "",
	}

	if c.At != "" {
		if err := setLockedSpan(ctx, &task, c.At); err != nil {
			return err
		}
	}

	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}
	if err := ctx.Store.AddTask(task); err != nil {
		return err
	}

	fmt.Printf("Added task: %s (ID: %s)\n", task.Title, task.ID)
	return nil
}

// setLockedSpan pins the task to [at, at+estimate).
func setLockedSpan(ctx *cli.Context, task *models.Task, at string) error {
	start, err := ctx.ParseDateTime(at)
	if err != nil {
		return err
	}
	end := start.Add(time.Duration(task.EstimatedMin) * time.Minute)
	task.Locked = true
	task.LockedStart = &start
	task.LockedEnd = &end
	return nil
}
