package config

const (
	// Processing Defaults
	DefaultUserAgent          = "SEO-Canonical-Validator/1.0"
	DefaultConcurrency        = 10
	DefaultTimeoutSeconds     = 30
	DefaultMaxRetries         = 3
	DefaultRetryBackoffMillis = 1000

	// Normalization Defaults
	DefaultForceHTTPS          = true
	DefaultRemoveTrailingSlash = true
	DefaultIgnoreQueryParams   = false

	// Reporter Defaults
	DefaultReporterOutputDir  = "reports"
	DefaultReporterFilePrefix = "canonical_audit"

	// Storage Defaults
	DefaultStorageSQLitePath = "database/canonguard_history.db"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Progress Defaults
	DefaultProgressIntervalSeconds = 3

	// ConfigPathEnv overrides the config file location when no flag is given.
	ConfigPathEnv = "CANONGUARD_CONFIG_PATH"
)

// DefaultWellKnownPaths are the well-known sitemap locations tried when robots.txt
// declares nothing usable. Order matters.
var DefaultWellKnownPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemaps.xml",
	"/sitemap.txt",
	"/sitemap",
}

// SupportedReportFormats lists the formats accepted by reporter_config.formats.
var SupportedReportFormats = []string{"csv", "xlsx", "json", "txt", "parquet"}
