package plans

import (
	"fmt"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/planner"
	"github.com/julianstephens/termplan/internal/validation"
)

type PlanCmd struct {
	Date   string `arg:"" optional:"" help:"First day to plan (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
	DryRun bool   `help:"Show the plan without saving a new revision." name:"dry-run"`
}

func (c *PlanCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}

	out, err := ctx.Planner().Generate(planner.Request{Day: day, DryRun: c.DryRun, Source: "cli"})
	if err != nil {
		return err
	}
	titles, err := ctx.TaskTitles()
	if err != nil {
		return err
	}

	validator := validation.New()
	result := validator.ValidateFixed(out.Tasks, out.Events)
	result.Merge(validator.ValidatePlan(out.Run, out.Tasks, out.Events, out.Config))

	fmt.Print(renderRun(out.Run, titles))
	if result.HasConflicts() {
		fmt.Println()
		fmt.Println(cli.Warn("Validation warnings:"))
		for _, conflict := range result.Conflicts {
			fmt.Printf("  - %s\n", conflict.Description)
		}
	}

	fmt.Println()
	placed := planner.CountDecisions(out.Run.Log, models.DecisionPlaced)
	if c.DryRun {
		fmt.Println(cli.Muted(fmt.Sprintf("Dry run: %d placed, %d overflowed. Nothing was saved.", placed, len(out.Run.Overflow))))
		return nil
	}
	fmt.Println(cli.Success(fmt.Sprintf("Plan saved as revision %d (%d placed, %d overflowed)", out.Run.Revision, placed, len(out.Run.Overflow))))
	return nil
}
