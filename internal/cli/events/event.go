package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/utils"
)

// EventAddCmd records a commitment from an external calendar. The planner
// treats it as read-only busy time.
type EventAddCmd struct {
	Title string `arg:"" help:"Event title."`
	Start string `short:"s" help:"Start (YYYY-MM-DD HH:MM)." required:""`
	End   string `short:"e" help:"End (YYYY-MM-DD HH:MM or HH:MM on the start day)." required:""`
	ID    string `help:"Stable ID from the source calendar. Re-adding an ID replaces the event."`
}

func (c *EventAddCmd) Run(ctx *cli.Context) error {
	start, err := ctx.ParseDateTime(c.Start)
	if err != nil {
		return err
	}
	end, err := parseEnd(ctx, start, c.End)
	if err != nil {
		return err
	}

	event := models.Event{ID: c.ID, Title: c.Title, Start: start, End: end}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	if err := ctx.Store.AddEvent(event); err != nil {
		return err
	}

	fmt.Printf("Added event: %s %s %s (ID: %s)\n", event.Title,
		start.Format(constants.DateFormat), utils.FormatSpan(start, end), event.ID)
	return nil
}

func parseEnd(ctx *cli.Context, start time.Time, s string) (time.Time, error) {
	if len(s) <= len(constants.TimeFormat) {
		return utils.CombineDateAndTime(start, s)
	}
	return ctx.ParseDateTime(s)
}

type EventListCmd struct {
	From string `help:"First day (YYYY-MM-DD or 'today')." default:"today"`
	Days int    `help:"Number of days to list." default:"7"`
	All  bool   `short:"a" help:"List every stored event."`
}

func (c *EventListCmd) Run(ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	var events []models.Event
	if c.All {
		events, err = ctx.Store.GetAllEvents()
	} else {
		if c.Days <= 0 {
			return fmt.Errorf("--days must be positive")
		}
		var from time.Time
		if from, err = ctx.ParseDay(c.From); err != nil {
			return err
		}
		events, err = ctx.Store.GetEventsInRange(from, from.AddDate(0, 0, c.Days))
	}
	if err != nil {
		return fmt.Errorf("failed to get events: %w", err)
	}

	if len(events) == 0 {
		fmt.Println("No events found")
		return nil
	}

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		start, end := e.Start.In(loc), e.End.In(loc)
		rows = append(rows, []string{e.ID, start.Format(constants.DateFormat), utils.FormatSpan(start, end), e.Title})
	}
	fmt.Println(cli.Table([]string{"ID", "Day", "Time", "Title"}, rows))
	return nil
}

type EventDeleteCmd struct {
	ID string `arg:"" help:"Event ID."`
}

func (c *EventDeleteCmd) Run(ctx *cli.Context) error {
	event, err := ctx.Store.GetEvent(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find event: %w", err)
	}
	if err := ctx.Store.DeleteEvent(event.ID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	fmt.Printf("Deleted event: %s\n", event.Title)
	return nil
}
