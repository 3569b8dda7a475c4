package plans

import (
	"errors"
	"fmt"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/scheduler"
	"github.com/julianstephens/termplan/internal/storage"
)

// DayCmd shows the latest plan for one day next to its fixed commitments.
type DayCmd struct {
	Date string `arg:"" optional:"" help:"Day to show (YYYY-MM-DD, 'today' or 'tomorrow')." default:"today"`
}

func (c *DayCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	loc := day.Location()
	dayStr := day.Format(constants.DateFormat)

	run, err := ctx.Store.GetLatestPlanRun()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to get plan: %w", err)
	}
	run = run.In(loc)

	tasks, err := ctx.Store.GetAllTasks()
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}
	events, err := ctx.Store.GetEventsInRange(day, day.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("failed to get events: %w", err)
	}
	titles, err := ctx.TaskTitles()
	if err != nil {
		return err
	}
	eventTitles := make(map[string]string, len(events))
	for _, e := range events {
		eventTitles[e.ID] = e.Title
	}

	var items []agendaItem
	for _, b := range run.BlocksOn(dayStr) {
		kind := "planned"
		if b.UserEdited {
			kind = "planned, edited"
		}
		items = append(items, agendaItem{start: b.Start, end: b.End, label: title(titles, b.TaskID), kind: kind})
	}
	for _, f := range scheduler.CollectFixed(tasks, events) {
		start, end := f.Start.In(loc), f.End.In(loc)
		if !start.Before(day.AddDate(0, 0, 1)) || !end.After(day) {
			continue
		}
		if f.Source == models.SourceExternal {
			items = append(items, agendaItem{start: start, end: end, label: eventTitles[f.ItemID], kind: "event"})
		} else {
			items = append(items, agendaItem{start: start, end: end, label: title(titles, f.ItemID), kind: "locked"})
		}
	}

	fmt.Println(cli.Heading("Plan for " + dayStr))
	if len(items) == 0 {
		fmt.Println("  Nothing scheduled")
	} else {
		fmt.Println(renderAgenda(items))
	}
	if run.Revision > 0 {
		fmt.Println(revisionLine(run, loc))
	} else {
		fmt.Println(cli.Muted("No plan generated yet. Run 'termplan plan'."))
	}
	return nil
}

// LogCmd prints the decision log of a stored run.
type LogCmd struct {
	Revision int  `short:"r" help:"Revision to show; defaults to the latest."`
	List     bool `short:"l" help:"List stored revisions instead."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	if c.List {
		runs, err := ctx.Store.ListPlanRuns()
		if err != nil {
			return fmt.Errorf("failed to list plans: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No plans saved yet.")
			return nil
		}
		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, []string{fmt.Sprint(r.Revision), r.Today, r.CreatedAt, fmt.Sprint(r.Blocks), fmt.Sprint(r.Overflow)})
		}
		fmt.Println(cli.Table([]string{"Rev", "From", "Created", "Blocks", "Overflow"}, rows))
		return nil
	}

	var run models.PlanRun
	if c.Revision > 0 {
		run, err = ctx.Store.GetPlanRun(c.Revision)
	} else {
		run, err = ctx.Store.GetLatestPlanRun()
	}
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no plan found; run 'termplan plan' first: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to get plan: %w", err)
	}
	run = run.In(loc)

	titles, err := ctx.TaskTitles()
	if err != nil {
		return err
	}
	fmt.Println(revisionLine(run, loc))
	if len(run.Log) == 0 {
		fmt.Println("  No decisions recorded")
		return nil
	}
	fmt.Println(renderLog(run.Log, titles))
	for _, a := range run.Advisories {
		fmt.Println(cli.Warn(a.Message))
	}
	return nil
}

// NowCmd shows the block planned for the current time.
type NowCmd struct{}

func (c *NowCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ParseDay("today")
	if err != nil {
		return err
	}
	now := ctx.Clock().In(day.Location())

	run, err := ctx.Store.GetLatestPlanRun()
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Println("No active plan.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get plan: %w", err)
	}
	run = run.In(day.Location())

	titles, err := ctx.TaskTitles()
	if err != nil {
		return err
	}

	var next *models.ScheduledBlock
	for i, b := range run.Blocks {
		if !b.Start.After(now) && now.Before(b.End) {
			fmt.Printf("Now (%s): %s until %s\n", now.Format(constants.TimeFormat), title(titles, b.TaskID), b.End.Format(constants.TimeFormat))
			return nil
		}
		if b.Start.After(now) && (next == nil || b.Start.Before(next.Start)) {
			next = &run.Blocks[i]
		}
	}

	fmt.Printf("Now (%s): Free time\n", now.Format(constants.TimeFormat))
	if next != nil {
		fmt.Printf("Next: %s at %s\n", title(titles, next.TaskID), next.Start.Format(constants.DateTimeFormat))
	}
	return nil
}
