package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/scheduler"
	"github.com/julianstephens/termplan/internal/storage"
	"github.com/julianstephens/termplan/internal/validation"
)

type ValidateCmd struct {
	Fix bool `help:"Delete duplicate tasks, keeping the oldest of each title."`
}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	settings, loc, err := ctx.Settings()
	if err != nil {
		return err
	}
	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	events, err := ctx.Store.GetAllEvents()
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	validator := validation.New()

	fmt.Println("Validating tasks and events...")
	result := validator.ValidateTasks(tasks)
	result.Merge(validator.ValidateFixed(tasks, events))

	fmt.Println("Validating the latest plan...")
	run, err := ctx.Store.GetLatestPlanRun()
	switch {
	case errors.Is(err, storage.ErrNotFound):
		fmt.Println("  No plan saved yet")
	case err != nil:
		return fmt.Errorf("failed to load plan: %w", err)
	default:
		result.Merge(validator.ValidatePlan(run.In(loc), tasks, events, scheduler.ConfigFromSettings(settings)))
	}

	fmt.Println()
	fmt.Println(result.FormatReport())

	if cmd.Fix && result.HasConflicts() {
		ctx.PerformAutomaticBackup()
		actions := validation.AutoFixDuplicateTasks(result.Conflicts, tasks, ctx.Store.DeleteTask)
		if len(actions) == 0 {
			fmt.Println("Nothing to fix automatically.")
		}
		for _, a := range actions {
			fmt.Println(cli.Success(a.Action))
		}
	}
	return nil
}
