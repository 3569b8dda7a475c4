package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DateTimeFormat is used for user-facing date and time input (YYYY-MM-DD HH:MM)
	DateTimeFormat = "2006-01-02 15:04"

	// BlockIDFormat is the start-time component of a scheduled block identifier
	BlockIDFormat = "2006-01-02T15:04"
)
