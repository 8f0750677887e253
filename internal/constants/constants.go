package constants

// Session and context keys
const (
	SessionCookieName   = "taskflow_session"
	LoginCookieName     = "taskflow_login"
	SessionMaxAge       = 86400 * 30 // 30 days
	SessionKeyDeviceID  = "device_id"
	SessionKeyUserEmail = "user_email"

	ContextKeyDeviceID  = "device_id"
	ContextKeyUserEmail = "user_email"
)

// Storage keys. Device scoped keys are stored below StorageKeyDevicePrefix.
const (
	StorageKeyAccounts      = "users"
	StorageKeyLegacyAccount = "userData"
	StorageKeySession       = "session"
	StorageKeyLegacySession = "currentUser"
	StorageKeyTheme         = "theme"
	StorageKeyTasksPrefix   = "tasks/"
	StorageKeyLegacyTasks   = "tasks"
	StorageKeyDevicePrefix  = "devices/"
)

// Task collection envelope versions
const (
	LegacyTaskCollectionVersion = 1
	TaskCollectionVersion       = 2
)

// Themes
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// DateLayout is the canonical calendar date encoding for tasks.
const DateLayout = "2006-01-02"

// Limits
const (
	MaxDescriptionLength = 500
	MaxSuggestedTasks    = 20
)
