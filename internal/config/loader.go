package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"fmpmcp/pkg/logging"

	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvAccessToken          = "FMP_ACCESS_TOKEN"
	EnvPort                 = "PORT"
	EnvToolSets             = "FMP_TOOL_SETS"
	EnvDynamicToolDiscovery = "FMP_DYNAMIC_TOOL_DISCOVERY"
	EnvLogLevel             = "FMP_LOG_LEVEL"
)

// Load reads the YAML file at path over the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (ServerConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config file found at %s, using defaults", path)
			return cfg, nil
		}
		return ServerConfig{}, fmt.Errorf("error reading config from %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", path)
	return cfg, nil
}

// ApplyEnv overlays environment variables onto cfg. getenv is usually os.Getenv.
func ApplyEnv(cfg *ServerConfig, getenv func(string) string) {
	if v := getenv(EnvAccessToken); v != "" {
		cfg.FMP.AccessToken = v
	}
	if v := getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		} else {
			logging.Warn("ConfigLoader", "Ignoring %s=%q: not a number", EnvPort, v)
		}
	}
	if v := getenv(EnvToolSets); v != "" {
		cfg.Mode.ToolSets = v
	}
	if v := getenv(EnvDynamicToolDiscovery); v != "" {
		cfg.Mode.DynamicToolDiscovery = ParseBoolFlag(v)
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks invariants that later components rely on.
func (c ServerConfig) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Cache.MaxSize <= 0 {
		errs = append(errs, fmt.Errorf("cache.maxSize must be positive, got %d", c.Cache.MaxSize))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL))
	}
	if c.Modules.LoadTimeout < 0 {
		errs = append(errs, fmt.Errorf("modules.loadTimeout must not be negative, got %s", c.Modules.LoadTimeout))
	}
	if c.FMP.BaseURL == "" {
		errs = append(errs, errors.New("fmp.baseURL must not be empty"))
	}
	switch c.Metrics.Exporter {
	case MetricsExporterPrometheus, MetricsExporterStdout, MetricsExporterNone, "":
	default:
		errs = append(errs, fmt.Errorf("metrics.exporter %q is not one of prometheus, stdout, none", c.Metrics.Exporter))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
