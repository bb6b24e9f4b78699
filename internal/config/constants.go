package config

import "time"

// Application constants shared across the analysis service
const (
	// Application Info
	AppName   = "Data Analysis Studio"
	AppVendor = "DataStudio"

	// Upload Limits
	DefaultMaxUploadBytes = 200 * 1024 * 1024 // 200MB
	DefaultPreviewRows    = 100

	// Session Store
	DefaultSessionCapacity = 16
	DefaultSessionTTL      = 2 * time.Hour

	// Cloud Export
	DefaultExportRegion  = "us-east-1"
	DefaultExportPrefix  = "analysis-outputs"
	DefaultUploadTimeout = 60 * time.Second

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// Log Settings
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultLogFilePath = "logs/datastudio.log"
)

// Supported upload extensions, lower-case with the leading dot.
var SupportedExtensions = []string{
	".csv", ".tsv", ".txt", ".xlsx", ".xls", ".json", ".parquet", ".pdf",
}

// API Endpoints (internal)
const (
	APIBasePath      = "/api"
	AnalysisEndpoint = "/api/analysis"
	HealthEndpoint   = "/api/health"
	MetricsEndpoint  = "/metrics"
)
