package tasks

import (
	"fmt"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/constants"
)

type TaskDoneCmd struct {
	ID   string `arg:"" help:"Task ID or unique prefix."`
	Undo bool   `help:"Mark the task as not done."`
}

func (c *TaskDoneCmd) Run(ctx *cli.Context) error {
	task, err := ctx.ResolveTask(c.ID, false)
	if err != nil {
		return err
	}
	task.Completed = !c.Undo
	if err := ctx.Store.UpdateTask(task); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if c.Undo {
		fmt.Printf("Reopened task: %s\n", task.Title)
	} else {
		fmt.Printf("Completed task: %s\n", task.Title)
	}
	return nil
}

// TaskLockCmd pins a task. Without --at the task keeps no time and is left
// out of planning until it is unlocked.
type TaskLockCmd struct {
	ID string `arg:"" help:"Task ID or unique prefix."`
	At string `help:"Fixed start (YYYY-MM-DD HH:MM)."`
}

func (c *TaskLockCmd) Run(ctx *cli.Context) error {
	task, err := ctx.ResolveTask(c.ID, false)
	if err != nil {
		return err
	}
	task.Locked = true
	if c.At != "" {
		if err := setLockedSpan(ctx, &task, c.At); err != nil {
			return err
		}
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}
	if err := ctx.Store.UpdateTask(task); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if task.HasLockedTime() {
		loc, err := ctx.Location()
		if err != nil {
			return err
		}
		fmt.Printf("Locked task: %s at %s\n", task.Title, task.LockedStart.In(loc).Format(constants.DateTimeFormat))
	} else {
		fmt.Printf("Locked task: %s (no fixed time, it will not be planned)\n", task.Title)
	}
	return nil
}

type TaskUnlockCmd struct {
	ID string `arg:"" help:"Task ID or unique prefix."`
}

func (c *TaskUnlockCmd) Run(ctx *cli.Context) error {
	task, err := ctx.ResolveTask(c.ID, false)
	if err != nil {
		return err
	}
	task.Locked = false
	task.LockedStart = nil
	task.LockedEnd = nil
	if err := ctx.Store.UpdateTask(task); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	fmt.Printf("Unlocked task: %s\n", task.Title)
	return nil
}

type TaskDeleteCmd struct {
	ID string `arg:"" help:"Task ID or unique prefix."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	task, err := ctx.ResolveTask(c.ID, false)
	if err != nil {
		return fmt.Errorf("failed to find task with ID %s: %w", c.ID, err)
	}
	if err := ctx.Store.DeleteTask(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	fmt.Printf("Deleted task: %s (ID: %s)\n", task.Title, task.ID)
	return nil
}

type TaskRestoreCmd struct {
	ID string `arg:"" help:"Task ID or unique prefix of a deleted task."`
}

func (c *TaskRestoreCmd) Run(ctx *cli.Context) error {
	task, err := ctx.ResolveTask(c.ID, true)
	if err != nil {
		return err
	}
	if err := ctx.Store.RestoreTask(task.ID); err != nil {
		return fmt.Errorf("failed to restore task: %w", err)
	}
	fmt.Printf("Restored task: %s (ID: %s)\n", task.Title, task.ID)
	return nil
}
