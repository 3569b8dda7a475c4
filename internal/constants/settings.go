package constants

const (
	// Work hours
	SettingWorkdayStartHour = "workday_start_hour"
	SettingWorkdayEndHour   = "workday_end_hour"

	// Planner weights
	SettingHorizonDays        = "horizon_days"
	SettingSlotGranularityMin = "slot_granularity_min"
	SettingMinUsableMin       = "min_usable_min"
	SettingLookaheadDays      = "lookahead_days"
	SettingPriorityWeight     = "priority_weight"
	SettingDueWeight          = "due_weight"
	SettingCategoryWeight     = "category_weight"
	SettingOverdueBoost       = "overdue_boost"
	SettingEnergyWeight       = "energy_weight"
	SettingAllowCrossDaySplit = "allow_cross_day_split"

	SettingTimezone = "timezone"

	// Default Settings Values
	DefaultWorkdayStartHour   = 9
	DefaultWorkdayEndHour     = 17
	DefaultHorizonDays        = 14
	DefaultSlotGranularityMin = 30
	DefaultMinUsableMin       = 30
	DefaultLookaheadDays      = 0
	DefaultPriorityWeight     = 0.5
	DefaultDueWeight          = 0.4
	DefaultCategoryWeight     = 0.1
	DefaultOverdueBoost       = 0.10
	MinOverdueBoost           = 0.05
	MaxOverdueBoost           = 0.15
	DefaultEnergyWeight       = 0.2
	DefaultAllowCrossDaySplit = false
	DefaultTimezone           = "Local" // Use system local timezone by default

	// Energy assumed for hours missing from the profile
	DefaultHourEnergy = 0.5
)
