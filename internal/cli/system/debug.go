package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/storage"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpPlan     *DebugDumpPlanCmd     `cmd:"" help:"Dump a plan run as JSON."`
	DumpTask     *DebugDumpTaskCmd     `cmd:"" help:"Dump task data as JSON."`
	DumpEvents   *DebugDumpEventsCmd   `cmd:"" help:"Dump every stored event as JSON."`
	DumpSettings *DebugDumpSettingsCmd `cmd:"" help:"Dump settings and energy profile as JSON."`
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return writeJSON(os.Stdout, map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpPlanCmd struct {
	Revision int `arg:"" optional:"" help:"Revision to dump; defaults to the latest."`
}

func (cmd *DebugDumpPlanCmd) Run(ctx *cli.Context) error {
	var run models.PlanRun
	var err error
	if cmd.Revision > 0 {
		run, err = ctx.Store.GetPlanRun(cmd.Revision)
	} else {
		run, err = ctx.Store.GetLatestPlanRun()
	}
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no plan found: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to get plan: %w", err)
	}
	return writeJSON(os.Stdout, run)
}

type DebugDumpTaskCmd struct {
	ID string `arg:"" help:"ID of the task to dump."`
}

func (cmd *DebugDumpTaskCmd) Run(ctx *cli.Context) error {
	task, err := ctx.ResolveTask(cmd.ID, false)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	return writeJSON(os.Stdout, task)
}

type DebugDumpEventsCmd struct{}

func (cmd *DebugDumpEventsCmd) Run(ctx *cli.Context) error {
	events, err := ctx.Store.GetAllEvents()
	if err != nil {
		return fmt.Errorf("failed to get events: %w", err)
	}
	if events == nil {
		events = []models.Event{}
	}
	return writeJSON(os.Stdout, events)
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	profile, err := ctx.Store.GetEnergyProfile()
	if err != nil {
		return fmt.Errorf("failed to get energy profile: %w", err)
	}
	return writeJSON(os.Stdout, struct {
		Settings models.Settings      `json:"settings"`
		Energy   models.EnergyProfile `json:"energy_profile"`
	}{settings, profile})
}
