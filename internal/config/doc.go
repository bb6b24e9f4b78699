// Package config provides centralized configuration management for the
// analysis service. It handles loading configuration from multiple sources,
// validation, and provides a type-safe API for accessing configuration
// values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// A .env file in the working directory is folded into the environment before
// processing, so local development can keep settings out of the shell.
//
// # Environment Variables
//
// All environment variables follow the pattern DATASTUDIO_* for namespacing:
//
//	DATASTUDIO_SERVER_PORT=8080
//	DATASTUDIO_LOGGING_LEVEL=debug
//	DATASTUDIO_ANALYSIS_MAX_UPLOAD_BYTES=52428800
//	DATASTUDIO_EXPORT_DEFAULT_REGION=eu-west-1
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Testing
//
// For testing, use config.Default() to get a configuration with sensible
// defaults that do not require environment variables or external resources.
package config
