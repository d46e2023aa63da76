package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel     = "info"
	DefaultJSONLog      = false
	DefaultUserAgent    = "Conference-Scraper/1.0 (Educational/Research Purpose)"
	DefaultDownloadDir  = "downloads"
	DefaultLogDir       = "logs"
	DefaultDelaySeconds = 2.0
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultBrowser      = true
	DefaultHeadless     = true
	DefaultRenderWait   = 5 * time.Second
	DefaultMaxPageBytes = 32 * 1024 * 1024 // 32MB
	DefaultSummaryFile  = "summary.csv"
	EnvPrefix           = "PAPERS"
)
