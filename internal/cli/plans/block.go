package plans

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/planner"
	"github.com/julianstephens/termplan/internal/scheduler"
	"github.com/julianstephens/termplan/internal/storage"
	"github.com/julianstephens/termplan/internal/utils"
)

type BlockMoveCmd struct {
	ID string `arg:"" help:"Block ID (task@YYYY-MM-DDTHH:MM) or task ID."`
	To string `arg:"" help:"New start: HH:MM on the block's day, or YYYY-MM-DD HH:MM."`
}

func (c *BlockMoveCmd) Run(ctx *cli.Context) error {
	block, err := latestBlock(ctx, c.ID)
	if err != nil {
		return err
	}
	start, err := parseWhen(ctx, block.Start, c.To)
	if err != nil {
		return err
	}
	return applyMutation(ctx, scheduler.Mutation{Kind: scheduler.MutationMove, TargetID: block.ID(), NewStart: start})
}

type BlockResizeCmd struct {
	ID  string `arg:"" help:"Block ID (task@YYYY-MM-DDTHH:MM) or task ID."`
	End string `arg:"" help:"New end: HH:MM on the block's day, or YYYY-MM-DD HH:MM."`
}

func (c *BlockResizeCmd) Run(ctx *cli.Context) error {
	block, err := latestBlock(ctx, c.ID)
	if err != nil {
		return err
	}
	end, err := parseWhen(ctx, block.Start, c.End)
	if err != nil {
		return err
	}
	return applyMutation(ctx, scheduler.Mutation{Kind: scheduler.MutationResize, TargetID: block.ID(), NewEnd: end})
}

type BlockDeleteCmd struct {
	ID string `arg:"" help:"Block ID (task@YYYY-MM-DDTHH:MM) or task ID."`
}

func (c *BlockDeleteCmd) Run(ctx *cli.Context) error {
	block, err := latestBlock(ctx, c.ID)
	if err != nil {
		return err
	}
	return applyMutation(ctx, scheduler.Mutation{Kind: scheduler.MutationDelete, TargetID: block.ID()})
}

// latestBlock finds the target in the latest run, in the configured timezone.
func latestBlock(ctx *cli.Context, id string) (models.ScheduledBlock, error) {
	loc, err := ctx.Location()
	if err != nil {
		return models.ScheduledBlock{}, err
	}
	run, err := ctx.Store.GetLatestPlanRun()
	if errors.Is(err, storage.ErrNotFound) {
		return models.ScheduledBlock{}, fmt.Errorf("no plan found; run 'termplan plan' first")
	}
	if err != nil {
		return models.ScheduledBlock{}, fmt.Errorf("failed to get plan: %w", err)
	}
	block, ok := run.In(loc).FindBlock(id)
	if !ok {
		return models.ScheduledBlock{}, fmt.Errorf("no scheduled block %s in revision %d: %w", id, run.Revision, storage.ErrNotFound)
	}
	return block, nil
}

func parseWhen(ctx *cli.Context, day time.Time, s string) (time.Time, error) {
	if len(s) <= len(constants.TimeFormat) {
		return utils.CombineDateAndTime(day, s)
	}
	return ctx.ParseDateTime(s)
}

// applyMutation checks the edit with a dry run and saves a new revision only
// when the runner accepts it.
func applyMutation(ctx *cli.Context, m scheduler.Mutation) error {
	svc := ctx.Planner()
	req := planner.Request{Mutations: []scheduler.Mutation{m}, DryRun: true, Source: "cli"}

	trial, err := svc.Generate(req)
	if err != nil {
		return err
	}
	if len(trial.Result.Rejections) > 0 {
		return trial.Result.Rejections[0]
	}

	req.DryRun = false
	out, err := svc.Generate(req)
	if err != nil {
		return err
	}
	if len(out.Result.Rejections) > 0 {
		return out.Result.Rejections[0]
	}

	titles, err := ctx.TaskTitles()
	if err != nil {
		return err
	}
	fmt.Print(renderRun(out.Run, titles))
	fmt.Println()
	fmt.Println(cli.Success(fmt.Sprintf("%s applied, saved as revision %d", m.Kind, out.Run.Revision)))
	return nil
}
