package scheduler

import (
	"time"

	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/models"
)

// WorkHours bounds the schedulable part of every day. EndHour may be 24 (midnight).
type WorkHours struct {
	StartHour int
	EndHour   int
}

// PlannerWeights tunes scoring and packing.
type PlannerWeights struct {
	HorizonDays        int
	PriorityWeight     float64
	DueWeight          float64
	CategoryWeight     float64
	OverdueBoost       float64
	EnergyWeight       float64
	SlotGranularityMin int
	MinUsableMin       int

	// LookaheadDays extends slot discovery past the horizon. Runs found there
	// are never used; they only mark an overflow as "horizon exceeded".
	LookaheadDays int

	// AllowCrossDaySplit lets a task that fits on no single day be placed in
	// pieces on several days.
	AllowCrossDaySplit bool
}

// Config is the immutable input every scheduling call receives.
type Config struct {
	WorkHours WorkHours
	Weights   PlannerWeights
}

func DefaultConfig() Config {
	return Config{
		WorkHours: WorkHours{
			StartHour: constants.DefaultWorkdayStartHour,
			EndHour:   constants.DefaultWorkdayEndHour,
		},
		Weights: PlannerWeights{
			HorizonDays:        constants.DefaultHorizonDays,
			PriorityWeight:     constants.DefaultPriorityWeight,
			DueWeight:          constants.DefaultDueWeight,
			CategoryWeight:     constants.DefaultCategoryWeight,
			OverdueBoost:       constants.DefaultOverdueBoost,
			EnergyWeight:       constants.DefaultEnergyWeight,
			SlotGranularityMin: constants.DefaultSlotGranularityMin,
			MinUsableMin:       constants.DefaultMinUsableMin,
			LookaheadDays:      constants.DefaultLookaheadDays,
			AllowCrossDaySplit: constants.DefaultAllowCrossDaySplit,
		},
	}
}

// ConfigFromSettings builds the planner configuration from stored settings.
func ConfigFromSettings(s models.Settings) Config {
	return Config{
		WorkHours: WorkHours{StartHour: s.WorkdayStartHour, EndHour: s.WorkdayEndHour},
		Weights: PlannerWeights{
			HorizonDays:        s.HorizonDays,
			PriorityWeight:     s.PriorityWeight,
			DueWeight:          s.DueWeight,
			CategoryWeight:     s.CategoryWeight,
			OverdueBoost:       s.OverdueBoost,
			EnergyWeight:       s.EnergyWeight,
			SlotGranularityMin: s.SlotGranularityMin,
			MinUsableMin:       s.MinUsableMin,
			LookaheadDays:      s.LookaheadDays,
			AllowCrossDaySplit: s.AllowCrossDaySplit,
		},
	}
}

// Validate reports the first structural problem as a *ConfigError.
func (c Config) Validate() error {
	wh := c.WorkHours
	if wh.StartHour < 0 || wh.StartHour > 23 {
		return configErrorf("workday_start_hour", "must be within 0-23, got %d", wh.StartHour)
	}
	if wh.EndHour < 1 || wh.EndHour > 24 {
		return configErrorf("workday_end_hour", "must be within 1-24, got %d", wh.EndHour)
	}
	if wh.StartHour >= wh.EndHour {
		return configErrorf("workday_start_hour", "start hour %d must be before end hour %d", wh.StartHour, wh.EndHour)
	}

	w := c.Weights
	if w.HorizonDays <= 0 {
		return configErrorf("horizon_days", "must be positive, got %d", w.HorizonDays)
	}
	if w.SlotGranularityMin <= 0 {
		return configErrorf("slot_granularity_min", "must be positive, got %d", w.SlotGranularityMin)
	}
	if w.SlotGranularityMin > (wh.EndHour-wh.StartHour)*60 {
		return configErrorf("slot_granularity_min", "%d minutes does not fit in the work day", w.SlotGranularityMin)
	}
	if w.MinUsableMin < 0 {
		return configErrorf("min_usable_min", "must not be negative, got %d", w.MinUsableMin)
	}
	if w.LookaheadDays < 0 {
		return configErrorf("lookahead_days", "must not be negative, got %d", w.LookaheadDays)
	}

	if w.OverdueBoost < constants.MinOverdueBoost || w.OverdueBoost > constants.MaxOverdueBoost {
		return configErrorf("overdue_boost", "must be within [%.2f,%.2f], got %v",
			constants.MinOverdueBoost, constants.MaxOverdueBoost, w.OverdueBoost)
	}

	unit := []struct {
		field string
		v     float64
	}{
		{"priority_weight", w.PriorityWeight},
		{"due_weight", w.DueWeight},
		{"category_weight", w.CategoryWeight},
		{"energy_weight", w.EnergyWeight},
	}
	for _, u := range unit {
		if u.v < 0 || u.v > 1 {
			return configErrorf(u.field, "must be within [0,1], got %v", u.v)
		}
	}
	return nil
}

// SlotDuration is the atomic slot length.
func (c Config) SlotDuration() time.Duration {
	return time.Duration(c.Weights.SlotGranularityMin) * time.Minute
}

// SlotsNeeded is the number of contiguous slots a task of minutes occupies.
func (c Config) SlotsNeeded(minutes int) int {
	g := c.Weights.SlotGranularityMin
	n := (minutes + g - 1) / g
	if n < 1 {
		return 1
	}
	return n
}

// DiscoveryDays is how many days, starting today, get a slot grid.
func (c Config) DiscoveryDays() int {
	return c.Weights.HorizonDays + c.Weights.LookaheadDays
}
