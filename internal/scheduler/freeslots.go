package scheduler

import (
	"time"

	"github.com/julianstephens/termplan/internal/models"
)

// TimeSlot is one atomic, schedulable unit inside a day's work window.
type TimeSlot struct {
	// Day is the offset from the run's first day.
	Day    int
	Start  time.Time
	End    time.Time
	Energy float64
}

// SlotQuery describes one day of slot discovery.
type SlotQuery struct {
	Day       int
	WorkStart time.Time
	WorkEnd   time.Time
	Fixed     []models.FixedInterval
	Energy    models.EnergyProfile

	// NotBefore, when non-zero, drops slots starting earlier.
	NotBefore time.Time
}

// FreeSlots returns the ordered free slots between workStart and workEnd that
// do not overlap any fixed interval. day is the offset from the first planning
// day and is stamped on every slot. Slot energy uses the default profile.
func FreeSlots(day int, workStart, workEnd time.Time, fixed []models.FixedInterval, cfg Config) []TimeSlot {
	return FindSlots(SlotQuery{Day: day, WorkStart: workStart, WorkEnd: workEnd, Fixed: fixed}, cfg)
}

// FindSlots builds the slot grid for q. A trailing partial slot is never
// produced and runs shorter than MinUsableMin are discarded.
func FindSlots(q SlotQuery, cfg Config) []TimeSlot {
	step := cfg.SlotDuration()
	if step <= 0 || !q.WorkEnd.After(q.WorkStart) {
		return nil
	}

	var grid []TimeSlot
	for start := q.WorkStart; !start.Add(step).After(q.WorkEnd); start = start.Add(step) {
		end := start.Add(step)
		if !q.NotBefore.IsZero() && start.Before(q.NotBefore) {
			continue
		}
		if overlapsAny(q.Fixed, start, end) {
			continue
		}
		grid = append(grid, TimeSlot{
			Day:    q.Day,
			Start:  start,
			End:    end,
			Energy: q.Energy.At(start.Hour()),
		})
	}

	return dropShortRuns(grid, cfg.Weights.MinUsableMin)
}

func overlapsAny(fixed []models.FixedInterval, start, end time.Time) bool {
	for _, f := range fixed {
		if f.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// dropShortRuns removes maximal contiguous runs whose total length is below
// minMinutes.
func dropShortRuns(slots []TimeSlot, minMinutes int) []TimeSlot {
	if minMinutes <= 0 || len(slots) == 0 {
		return slots
	}
	minRun := time.Duration(minMinutes) * time.Minute

	out := make([]TimeSlot, 0, len(slots))
	runStart := 0
	for i := 1; i <= len(slots); i++ {
		if i < len(slots) && slots[i].Start.Equal(slots[i-1].End) {
			continue
		}
		run := slots[runStart:i]
		if run[len(run)-1].End.Sub(run[0].Start) >= minRun {
			out = append(out, run...)
		}
		runStart = i
	}
	return out
}

// workWindow returns the work-hour bounds on the given calendar day in loc.
// An end hour of 24 resolves to the following midnight.
func workWindow(day time.Time, wh WorkHours) (time.Time, time.Time) {
	y, m, d := day.Date()
	loc := day.Location()
	return time.Date(y, m, d, wh.StartHour, 0, 0, 0, loc),
		time.Date(y, m, d, wh.EndHour, 0, 0, 0, loc)
}

// dayAt returns midnight of the calendar day offset days after day.
func dayAt(day time.Time, offset int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+offset, 0, 0, 0, 0, day.Location())
}
