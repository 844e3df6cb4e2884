package constants

import "time"

const (
	AppName            = "habitd"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/habitd"
	DefaultConfigPath  = "~/.config/habitd/habitd.db"
	DefaultConfigFile  = "~/.config/habitd/config.json"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// KeyringLocation selects the connection string stored in the OS keyring
	KeyringLocation = "keyring"

	// EnvDBConnection holds a PostgreSQL connection string outside of the command line
	EnvDBConnection = "HABITD_DB_CONNECTION"

	// Server defaults
	DefaultPort            = 3001
	DefaultTimezone        = "Local" // Use system local timezone by default
	DefaultRequestTimeout  = 10 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	// Habit constraints
	MaxTitleLength = 200
	MinWeekDay     = 0
	MaxWeekDay     = 6

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitd-"
	BackupFileSuffix = ".db"

	// Response messages
	MsgHello         = "Hello World!"
	MsgHabitCreated  = "Habit created"
	MsgHabitUpdated  = "Habit updated"
	MsgHabitDeleted  = "Habit deleted"
	MsgHabitToggled  = "Habit progress updated"
	MsgHabitNotFound = "Habit not found"
	MsgInternalError = "Internal server error"
)
