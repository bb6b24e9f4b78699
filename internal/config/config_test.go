package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:8080", cfg.Server.Address())
	assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.Analysis.MaxUploadBytes)
	assert.Equal(t, DefaultPreviewRows, cfg.Analysis.PreviewRows)
	assert.Equal(t, DefaultSessionCapacity, cfg.Analysis.SessionCapacity)
	assert.Equal(t, DefaultSessionTTL, cfg.Analysis.SessionTTL)
	assert.Equal(t, "us-east-1", cfg.Export.DefaultRegion)
	assert.Equal(t, "analysis-outputs", cfg.Export.DefaultPrefix)
	assert.Equal(t, "json", cfg.Logging.Format)

	require.NoError(t, cfg.validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATASTUDIO_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DATASTUDIO_SERVER_PORT", "9191")
	t.Setenv("DATASTUDIO_LOGGING_LEVEL", "debug")
	t.Setenv("DATASTUDIO_ANALYSIS_PREVIEW_ROWS", "25")
	t.Setenv("DATASTUDIO_EXPORT_DEFAULT_REGION", "eu-west-1")

	cfg, err := Load()
	require.Error(t, err, "pointing DATASTUDIO_CONFIG at a missing file should fail")

	// Without the bad file pointer the env overrides apply on top of defaults.
	t.Setenv("DATASTUDIO_CONFIG", "")
	cfg, err = Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 25, cfg.Analysis.PreviewRows)
	assert.Equal(t, "eu-west-1", cfg.Export.DefaultRegion)

	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultSessionCapacity, cfg.Analysis.SessionCapacity)
	assert.Equal(t, "analysis-outputs", cfg.Export.DefaultPrefix)
}

func TestLoadFileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
server:
  port: 9000
  read_timeout: 30s
analysis:
  preview_rows: 50
  session_ttl: 10m
export:
  default_prefix: team-share
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))

	t.Setenv("DATASTUDIO_CONFIG", path)
	t.Setenv("DATASTUDIO_SERVER_PORT", "9001")

	cfg, err := Load()
	require.NoError(t, err)

	// Env beats file, file beats defaults.
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 50, cfg.Analysis.PreviewRows)
	assert.Equal(t, 10*time.Minute, cfg.Analysis.SessionTTL)
	assert.Equal(t, "team-share", cfg.Export.DefaultPrefix)
	assert.Equal(t, DefaultSessionCapacity, cfg.Analysis.SessionCapacity)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "negative read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = -time.Second },
			wantErr: "read timeout must be positive",
		},
		{
			name:    "cors without origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
		{
			name:    "zero upload cap",
			mutate:  func(c *Config) { c.Analysis.MaxUploadBytes = 0 },
			wantErr: "max upload bytes",
		},
		{
			name:    "zero preview rows",
			mutate:  func(c *Config) { c.Analysis.PreviewRows = 0 },
			wantErr: "preview rows",
		},
		{
			name:    "zero session capacity",
			mutate:  func(c *Config) { c.Analysis.SessionCapacity = 0 },
			wantErr: "session capacity",
		},
		{
			name:    "zero session ttl",
			mutate:  func(c *Config) { c.Analysis.SessionTTL = 0 },
			wantErr: "session TTL",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid logging level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "WARN"
	cfg.Logging.Format = "pretty"
	cfg.Logging.Output = "syslog"

	require.NoError(t, cfg.validate())

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}
