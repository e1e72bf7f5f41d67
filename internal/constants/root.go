package constants

import "time"

const (
	AppName            = "timeledger"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/timeledger"
	DefaultDBPath      = "~/.config/timeledger/timeledger.db"
	ConfigFileName     = "config.yaml"
	Version            = "v0.3.0"

	// EventSource is written to every event so rows can be traced back to this tool.
	EventSource = "timeledger"

	// DateFormat is the day key format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the wall-clock format used in reports (HH:MM:SS)
	TimeFormat = "15:04:05"

	// Report constants
	ReportFileSuffix = "-TimeLedger"
	ReportTitle      = "TimeLedger Daily Report"

	// Lock constants
	LockfileName = "timeledger.lock"

	// Environment variables
	EnvDBConnection = "TIMELEDGER_DB_CONNECTION"
	EnvConfigFile   = "TIMELEDGER_CONFIG"

	// DatabaseKeyring selects the connection string stored in the OS keyring.
	DatabaseKeyring = "keyring"
)

const (
	SettingDatabase     = "database"
	SettingTimezone     = "timezone"
	SettingReportDir    = "report_dir"
	SettingStoreTimeout = "store_timeout"
	SettingDebug        = "debug"

	DefaultTimezone     = "Local" // system local timezone
	DefaultReportDir    = "."
	DefaultStoreTimeout = 10 * time.Second
)
