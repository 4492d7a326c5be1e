package constants

import "time"

const (
	AppName            = "hekate"
	DefaultKeyringUser = "api-token"
	DefaultConfigDir   = "~/.config/hekate"
	DefaultCacheFile   = "cache.db"
	ConfigFileName     = "config.yaml"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Environment variables. The EXPO_PUBLIC_* names are accepted so the same
	// .env file can be shared with the mobile app.
	EnvAPIURL                = "HEKATE_API_URL"
	EnvExpoAPIURL            = "EXPO_PUBLIC_API_URL"
	EnvGoogleWebClientID     = "HEKATE_GOOGLE_WEB_CLIENT_ID"
	EnvGoogleIOSClientID     = "HEKATE_GOOGLE_IOS_CLIENT_ID"
	EnvGoogleAndroidClientID = "HEKATE_GOOGLE_ANDROID_CLIENT_ID"
	EnvExpoGoogleWebID       = "EXPO_PUBLIC_GOOGLE_WEB_CLIENT_ID"
	EnvExpoGoogleIOSID       = "EXPO_PUBLIC_GOOGLE_IOS_CLIENT_ID"
	EnvExpoGoogleAndroidID   = "EXPO_PUBLIC_GOOGLE_ANDROID_CLIENT_ID"
	EnvCachePath             = "HEKATE_CACHE_PATH"
	EnvCacheTTL              = "HEKATE_CACHE_TTL"
	EnvRequestTimeout        = "HEKATE_REQUEST_TIMEOUT"
	EnvDebug                 = "HEKATE_DEBUG"

	// Defaults
	DefaultCacheTTL       = 5 * time.Minute
	DefaultRequestTimeout = 15 * time.Second
	DefaultCacheSize      = 256

	// Request headers
	HeaderRequestID = "X-Request-ID"

	// Image upload limits
	MaxImageBytes = 10 << 20

	// Notify constants
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "hekate-notifier.lock"
	NotificationDurationMs = 4000
	TrayAppIdentifier      = "com.julianstephens.hekate"
	TrayExecutablePrefix   = "hekate-tray"
)
