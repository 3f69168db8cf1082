package app

import (
	"io"

	"fmpmcp/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug forces debug logging regardless of the configured log level.
	Debug bool

	// ConfigPath is the optional YAML file. When set it is also watched for
	// hot-reloadable changes.
	ConfigPath string

	// Version is reported to clients and on /health.
	Version string

	// Overrides applies command-line flags on top of file and environment
	// configuration. It runs again on every config reload so flags keep
	// their precedence.
	Overrides func(*config.ServerConfig)

	// LogOutput defaults to os.Stdout.
	LogOutput io.Writer

	// ServerConfig, when set, is used as-is instead of loading from
	// ConfigPath and the environment.
	ServerConfig *config.ServerConfig
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, configPath, version string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
		Version:    version,
	}
}
