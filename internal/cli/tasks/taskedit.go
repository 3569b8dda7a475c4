package tasks

import (
	"fmt"
	"time"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/models"
)

type TaskEditCmd struct {
	ID       string  `arg:"" help:"Task ID or unique prefix."`
	Title    *string `help:"New title."`
	Minutes  *int    `short:"m" help:"New estimated duration in minutes."`
	Priority *string `short:"p" help:"New priority (low|medium|high)."`
	Category *string `short:"c" help:"New category (exam|project|quiz|homework|reading)."`
	Energy   *string `short:"e" help:"New energy level (low|medium|high)."`
	Due      *string `short:"d" help:"New due date (YYYY-MM-DD), empty to clear."`
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	task, err := ctx.ResolveTask(c.ID, false)
	if err != nil {
		return fmt.Errorf("failed to find task: %w", err)
	}

	if c.Title != nil {
		task.Title = *c.Title
	}
	if c.Minutes != nil {
		if *c.Minutes <= 0 {
			return fmt.Errorf("duration must be positive")
		}
		task.EstimatedMin = *c.Minutes
		// Keep a locked span in step with the estimate
		if task.HasLockedTime() {
			end := task.LockedStart.Add(time.Duration(task.EstimatedMin) * time.Minute)
			task.LockedEnd = &end
		}
	}
	if c.Priority != nil {
		if task.Priority, err = models.ParsePriority(*c.Priority); err != nil {
			return err
		}
	}
	if c.Category != nil {
		if task.Category, err = models.ParseCategory(*c.Category); err != nil {
			return err
		}
	}
	if c.Energy != nil {
		if task.Energy, err = models.ParseEnergyLevel(*c.Energy); err != nil {
			return err
		}
	}
	if c.Due != nil {
		if *c.Due != "" {
			if _, err := time.Parse(constants.DateFormat, *c.Due); err != nil {
				return fmt.Errorf("invalid due date %q (expected YYYY-MM-DD)", *c.Due)
			}
		}
		task.DueDate = *c.Due
	}

	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}
	if err := ctx.Store.UpdateTask(task); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	fmt.Printf("Task updated: %s\n", task.Title)
	return nil
}
