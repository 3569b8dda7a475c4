package constants

import (
	tea "github.com/charmbracelet/bubbletea"
)

// SessionState represents the current state of the TUI application
type SessionState int

// ConfirmationMsg is a message to trigger a confirmation dialog
type ConfirmationMsg struct {
	Message string
	Action  func() tea.Cmd
}

const (
	AppName            = "termplan"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/termplan/termplan.db"
	Version            = "v0.3.0"

	// EnvDBConnection holds a PostgreSQL connection string when the keyring is unavailable
	EnvDBConnection = "TERMPLAN_DB_CONNECTION"

	// KeyringConfigValue selects the connection string stored in the OS keyring
	KeyringConfigValue = "keyring"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "termplan-"
	BackupFileSuffix = ".db"
)

// Session States
const (
	StatePlan SessionState = iota
	StateTasks
	StateLog
	StateAddTask
	StateConfirmation
)
