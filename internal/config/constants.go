package config

const (
	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// HTTP Client Defaults
	DefaultUserAgent                 = "Mozilla/5.0 (Linux; Android 14) ScamSiren/1.0"
	DefaultHTTPMaxIdleConns          = 100
	DefaultHTTPMaxIdleConnsPerHost   = 10
	DefaultHTTPDialTimeoutSecs       = 10
	DefaultOrchestratorDefaultScheme = "https"

	// Redirect Defaults
	DefaultRedirectMaxHops             = 10
	DefaultRedirectHopTimeoutSecs      = 10
	DefaultRedirectMaxMetaRefreshBytes = 64 * 1024

	// Reachability Defaults
	DefaultReachabilityTimeoutSecs     = 10
	DefaultReachabilityMaxRedirects    = 10
	DefaultReachabilityMaxContentBytes = 16 * 1024
	DefaultReachabilityDNSTimeoutMs    = 3000

	// urlscan Defaults
	DefaultURLScanBaseURL            = "https://urlscan.io"
	DefaultURLScanVisibility         = "public"
	DefaultURLScanExactWindowDays    = 30
	DefaultURLScanDomainWindowDays   = 90
	DefaultURLScanPollIntervalMillis = 1500
	DefaultURLScanMaxPollAttempts    = 15
	DefaultURLScanRequestTimeoutSecs = 20
	DefaultURLScanUserAgent          = "scamsiren-urlscan/1.0"

	// History Defaults
	DefaultHistorySQLiteDBPath = "database/history/verdicts.db"

	// Metrics Defaults
	DefaultMetricsNamespace = "scamsiren"

	// Notification Defaults
	DefaultNotificationUsername = "ScamSiren"

	// Environment
	EnvConfigPath    = "SCAMSIREN_CONFIG_PATH"
	EnvURLScanAPIKey = "URLSCAN_API_KEY"
)
