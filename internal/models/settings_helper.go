package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/termplan/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Keys missing from data keep their default values.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	for key, value := range data {
		var err error
		switch key {
		case constants.SettingWorkdayStartHour:
			settings.WorkdayStartHour, err = strconv.Atoi(value)
		case constants.SettingWorkdayEndHour:
			settings.WorkdayEndHour, err = strconv.Atoi(value)
		case constants.SettingHorizonDays:
			settings.HorizonDays, err = strconv.Atoi(value)
		case constants.SettingSlotGranularityMin:
			settings.SlotGranularityMin, err = strconv.Atoi(value)
		case constants.SettingMinUsableMin:
			settings.MinUsableMin, err = strconv.Atoi(value)
		case constants.SettingLookaheadDays:
			settings.LookaheadDays, err = strconv.Atoi(value)
		case constants.SettingPriorityWeight:
			settings.PriorityWeight, err = strconv.ParseFloat(value, 64)
		case constants.SettingDueWeight:
			settings.DueWeight, err = strconv.ParseFloat(value, 64)
		case constants.SettingCategoryWeight:
			settings.CategoryWeight, err = strconv.ParseFloat(value, 64)
		case constants.SettingOverdueBoost:
			settings.OverdueBoost, err = strconv.ParseFloat(value, 64)
		case constants.SettingEnergyWeight:
			settings.EnergyWeight, err = strconv.ParseFloat(value, 64)
		case constants.SettingAllowCrossDaySplit:
			settings.AllowCrossDaySplit = value == "true"
		case constants.SettingTimezone:
			settings.Timezone = value
		}
		if err != nil {
			return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingWorkdayStartHour:   strconv.Itoa(settings.WorkdayStartHour),
		constants.SettingWorkdayEndHour:     strconv.Itoa(settings.WorkdayEndHour),
		constants.SettingHorizonDays:        strconv.Itoa(settings.HorizonDays),
		constants.SettingSlotGranularityMin: strconv.Itoa(settings.SlotGranularityMin),
		constants.SettingMinUsableMin:       strconv.Itoa(settings.MinUsableMin),
		constants.SettingLookaheadDays:      strconv.Itoa(settings.LookaheadDays),
		constants.SettingPriorityWeight:     strconv.FormatFloat(settings.PriorityWeight, 'g', -1, 64),
		constants.SettingDueWeight:          strconv.FormatFloat(settings.DueWeight, 'g', -1, 64),
		constants.SettingCategoryWeight:     strconv.FormatFloat(settings.CategoryWeight, 'g', -1, 64),
		constants.SettingOverdueBoost:       strconv.FormatFloat(settings.OverdueBoost, 'g', -1, 64),
		constants.SettingEnergyWeight:       strconv.FormatFloat(settings.EnergyWeight, 'g', -1, 64),
		constants.SettingAllowCrossDaySplit: strconv.FormatBool(settings.AllowCrossDaySplit),
		constants.SettingTimezone:           settings.Timezone,
	}
}

// DefaultSettings returns the settings a fresh store is initialized with.
func DefaultSettings() Settings {
	s := Settings{}
	ApplyDefaultSettings(&s)
	return s
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.WorkdayStartHour == 0 && settings.WorkdayEndHour == 0 {
		settings.WorkdayStartHour = constants.DefaultWorkdayStartHour
		settings.WorkdayEndHour = constants.DefaultWorkdayEndHour
	}
	if settings.HorizonDays == 0 {
		settings.HorizonDays = constants.DefaultHorizonDays
	}
	if settings.SlotGranularityMin == 0 {
		settings.SlotGranularityMin = constants.DefaultSlotGranularityMin
	}
	if settings.MinUsableMin == 0 {
		settings.MinUsableMin = constants.DefaultMinUsableMin
	}
	if settings.PriorityWeight == 0 && settings.DueWeight == 0 && settings.CategoryWeight == 0 {
		settings.PriorityWeight = constants.DefaultPriorityWeight
		settings.DueWeight = constants.DefaultDueWeight
		settings.CategoryWeight = constants.DefaultCategoryWeight
	}
	if settings.OverdueBoost == 0 {
		settings.OverdueBoost = constants.DefaultOverdueBoost
	}
	if settings.EnergyWeight == 0 {
		settings.EnergyWeight = constants.DefaultEnergyWeight
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
}
