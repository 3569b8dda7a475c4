package models

import (
	"fmt"
	"sort"

	"github.com/julianstephens/termplan/internal/constants"
)

// EnergyProfile is the predicted energy (0..1) for each hour of the day.
type EnergyProfile struct {
	Hours map[int]float64 `json:"hours"`
}

// At returns the energy for hour, falling back to the default for unset hours.
func (p EnergyProfile) At(hour int) float64 {
	if v, ok := p.Hours[hour]; ok {
		return v
	}
	return constants.DefaultHourEnergy
}

// Set returns a copy of the profile with hour set to v.
func (p EnergyProfile) Set(hour int, v float64) EnergyProfile {
	out := EnergyProfile{Hours: make(map[int]float64, len(p.Hours)+1)}
	for h, e := range p.Hours {
		out.Hours[h] = e
	}
	out.Hours[hour] = v
	return out
}

// SortedHours lists the explicitly set hours in ascending order.
func (p EnergyProfile) SortedHours() []int {
	hours := make([]int, 0, len(p.Hours))
	for h := range p.Hours {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}

func (p EnergyProfile) Validate() error {
	for h, v := range p.Hours {
		if h < 0 || h > 23 {
			return fmt.Errorf("energy profile hour %d out of range 0-23", h)
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("energy for hour %d must be within [0,1], got %v", h, v)
		}
	}
	return nil
}
