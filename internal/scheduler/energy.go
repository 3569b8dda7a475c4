package scheduler

import "math"

// EnergyMatch scores how well a slot's predicted energy suits a task's
// requirement. 1 is a perfect match.
func EnergyMatch(taskEnergy, slotEnergy float64) float64 {
	return 1 - math.Abs(taskEnergy-slotEnergy)
}

// PlacementScore blends urgency with energy match. The energy term is only a
// tie-break and quality signal.
func PlacementScore(index, match float64, cfg Config) float64 {
	ew := cfg.Weights.EnergyWeight
	return (1-ew)*index + ew*match
}

// bestMatch is the highest match the task can reach over the given slots.
// With no slots it returns 0 so that unplaceable tasks sort by urgency alone.
func bestMatch(taskEnergy float64, slotsByDay [][]TimeSlot) float64 {
	best := 0.0
	for _, day := range slotsByDay {
		for _, s := range day {
			if m := EnergyMatch(taskEnergy, s.Energy); m > best {
				best = m
			}
		}
	}
	return best
}

// meanMatch averages the match over a run of slots.
func meanMatch(taskEnergy float64, run []TimeSlot) float64 {
	if len(run) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range run {
		sum += EnergyMatch(taskEnergy, s.Energy)
	}
	return sum / float64(len(run))
}
