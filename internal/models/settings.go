package models

// Settings represents application-wide settings
type Settings struct {
	WorkdayStartHour   int     `json:"workday_start_hour"`    // first working hour, e.g. 9
	WorkdayEndHour     int     `json:"workday_end_hour"`      // hour the working day ends, e.g. 17
	HorizonDays        int     `json:"horizon_days"`          // days ahead searched before a task overflows
	SlotGranularityMin int     `json:"slot_granularity_min"`  // atomic slot length in minutes
	MinUsableMin       int     `json:"min_usable_min"`        // free runs shorter than this are ignored
	LookaheadDays      int     `json:"lookahead_days"`        // days past the horizon inspected to tell overflow reasons apart
	PriorityWeight     float64 `json:"priority_weight"`       // urgency weight of the priority tier
	DueWeight          float64 `json:"due_weight"`            // urgency weight of due-date proximity
	CategoryWeight     float64 `json:"category_weight"`       // urgency weight of the task category
	OverdueBoost       float64 `json:"overdue_boost"`         // bonus added to overdue tasks
	EnergyWeight       float64 `json:"energy_weight"`         // share of the placement score given to energy match
	AllowCrossDaySplit bool    `json:"allow_cross_day_split"` // split tasks across days when no single day fits
	Timezone           string  `json:"timezone"`              // IANA timezone name or "Local"
}
