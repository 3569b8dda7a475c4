package settings

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/scheduler"
	"github.com/julianstephens/termplan/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	WorkdayStart   *int     `help:"First working hour (0-23)."`
	WorkdayEnd     *int     `help:"Hour the working day ends (1-24)."`
	HorizonDays    *int     `help:"Days searched before a task overflows."`
	Granularity    *int     `help:"Slot length in minutes." name:"slot-minutes"`
	MinUsable      *int     `help:"Ignore free runs shorter than this many minutes." name:"min-usable"`
	LookaheadDays  *int     `help:"Extra days inspected past the horizon to explain overflow."`
	PriorityWeight *float64 `help:"Urgency weight of the priority tier (0-1)."`
	DueWeight      *float64 `help:"Urgency weight of due-date proximity (0-1)."`
	CategoryWeight *float64 `help:"Urgency weight of the category (0-1)."`
	OverdueBoost   *float64 `help:"Bonus added to overdue tasks (0.05-0.15)."`
	EnergyWeight   *float64 `help:"Share of the placement score given to energy match (0-1)."`
	CrossDaySplit  *bool    `help:"Split tasks across days when no single day fits." name:"cross-day-split"`
	Timezone       *string  `help:"IANA timezone name or 'Local'."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		printSettings(settings)
		return nil
	}

	if !c.apply(&settings) {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("invalid timezone %q", settings.Timezone)
	}
	if err := scheduler.ConfigFromSettings(settings).Validate(); err != nil {
		return err
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}

// apply copies every given flag into s and reports whether anything was set.
func (c *SettingsCmd) apply(s *models.Settings) bool {
	updated := false
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
			updated = true
		}
	}
	setFloat := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
			updated = true
		}
	}

	setInt(&s.WorkdayStartHour, c.WorkdayStart)
	setInt(&s.WorkdayEndHour, c.WorkdayEnd)
	setInt(&s.HorizonDays, c.HorizonDays)
	setInt(&s.SlotGranularityMin, c.Granularity)
	setInt(&s.MinUsableMin, c.MinUsable)
	setInt(&s.LookaheadDays, c.LookaheadDays)
	setFloat(&s.PriorityWeight, c.PriorityWeight)
	setFloat(&s.DueWeight, c.DueWeight)
	setFloat(&s.CategoryWeight, c.CategoryWeight)
	setFloat(&s.OverdueBoost, c.OverdueBoost)
	setFloat(&s.EnergyWeight, c.EnergyWeight)
	if c.CrossDaySplit != nil {
		s.AllowCrossDaySplit = *c.CrossDaySplit
		updated = true
	}
	if c.Timezone != nil {
		s.Timezone = *c.Timezone
		updated = true
	}
	return updated
}

func printSettings(s models.Settings) {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

	fmt.Println(cli.Heading("Work hours"))
	fmt.Println(cli.Table([]string{"Setting", "Value"}, [][]string{
		{"Workday", fmt.Sprintf("%02d:00-%02d:00", s.WorkdayStartHour, s.WorkdayEndHour)},
		{"Timezone", s.Timezone},
	}))
	fmt.Println(cli.Heading("Planner"))
	fmt.Println(cli.Table([]string{"Setting", "Value"}, [][]string{
		{"Horizon", fmt.Sprintf("%d days", s.HorizonDays)},
		{"Lookahead", fmt.Sprintf("%d days", s.LookaheadDays)},
		{"Slot length", fmt.Sprintf("%d min", s.SlotGranularityMin)},
		{"Min usable run", fmt.Sprintf("%d min", s.MinUsableMin)},
		{"Priority weight", f(s.PriorityWeight)},
		{"Due weight", f(s.DueWeight)},
		{"Category weight", f(s.CategoryWeight)},
		{"Overdue boost", f(s.OverdueBoost)},
		{"Energy weight", f(s.EnergyWeight)},
		{"Cross-day split", strconv.FormatBool(s.AllowCrossDaySplit)},
	}))
}
