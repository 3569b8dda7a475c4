package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/models"
)

type EnergyShowCmd struct{}

func (c *EnergyShowCmd) Run(ctx *cli.Context) error {
	profile, err := ctx.Store.GetEnergyProfile()
	if err != nil {
		return fmt.Errorf("failed to get energy profile: %w", err)
	}

	rows := make([][]string, 0, 24)
	for h := 0; h < 24; h++ {
		v := profile.At(h)
		src := "default"
		if _, ok := profile.Hours[h]; ok {
			src = "set"
		}
		rows = append(rows, []string{fmt.Sprintf("%02d:00", h), strconv.FormatFloat(v, 'f', 2, 64), bar(v), src})
	}
	fmt.Println(cli.Table([]string{"Hour", "Energy", "", ""}, rows))
	return nil
}

func bar(v float64) string {
	return strings.Repeat("█", int(v*10+0.5))
}

// EnergySetCmd sets one hour or a range such as 9-12.
type EnergySetCmd struct {
	Hours string  `arg:"" help:"Hour (0-23) or inclusive range, e.g. 9-12."`
	Value float64 `arg:"" help:"Energy level between 0 and 1."`
}

func (c *EnergySetCmd) Run(ctx *cli.Context) error {
	from, to, err := parseHours(c.Hours)
	if err != nil {
		return err
	}
	profile, err := ctx.Store.GetEnergyProfile()
	if err != nil {
		return fmt.Errorf("failed to get energy profile: %w", err)
	}
	for h := from; h <= to; h++ {
		profile = profile.Set(h, c.Value)
	}
	if err := ctx.Store.SaveEnergyProfile(profile); err != nil {
		return fmt.Errorf("failed to save energy profile: %w", err)
	}
	fmt.Printf("Energy for %02d:00-%02d:00 set to %v\n", from, to+1, c.Value)
	return nil
}

func parseHours(s string) (from, to int, err error) {
	lo, hi, isRange := strings.Cut(strings.TrimSpace(s), "-")
	if from, err = strconv.Atoi(strings.TrimSpace(lo)); err != nil {
		return 0, 0, fmt.Errorf("invalid hour %q", lo)
	}
	to = from
	if isRange {
		if to, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
			return 0, 0, fmt.Errorf("invalid hour %q", hi)
		}
	}
	if from < 0 || to > 23 || from > to {
		return 0, 0, fmt.Errorf("hours must be within 0-23 and ascending, got %q", s)
	}
	return from, to, nil
}

type EnergyResetCmd struct{}

func (c *EnergyResetCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.SaveEnergyProfile(models.EnergyProfile{}); err != nil {
		return fmt.Errorf("failed to reset energy profile: %w", err)
	}
	fmt.Printf("Energy profile reset; every hour now uses %v\n", constants.DefaultHourEnergy)
	return nil
}
