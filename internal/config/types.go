package config

import (
	"fmt"
	"time"
)

// ServerConfig is the top-level configuration structure for fmpmcp.
type ServerConfig struct {
	Server   HTTPConfig    `yaml:"server"`
	Cache    CacheConfig   `yaml:"cache"`
	Modules  ModulesConfig `yaml:"modules"`
	FMP      FMPConfig     `yaml:"fmp"`
	Mode     ModeConfig    `yaml:"mode"`
	Metrics  MetricsConfig `yaml:"metrics"`
	LogLevel string        `yaml:"logLevel,omitempty"`
}

// HTTPConfig defines where the HTTP surface listens.
type HTTPConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// Addr returns the host:port listen address.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// CacheConfig bounds the per-client server cache.
type CacheConfig struct {
	MaxSize       int           `yaml:"maxSize,omitempty"`
	TTL           time.Duration `yaml:"ttl,omitempty"`
	SweepInterval time.Duration `yaml:"sweepInterval,omitempty"` // 0 = ttl/2
}

// ModulesConfig controls operation module construction.
type ModulesConfig struct {
	LoadTimeout time.Duration `yaml:"loadTimeout,omitempty"`
}

// FMPConfig configures the upstream data API.
type FMPConfig struct {
	BaseURL     string        `yaml:"baseURL,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	AccessToken string        `yaml:"accessToken,omitempty"` // process default credential
}

// ModeConfig, when set, overrides the mode keys of every client config.
type ModeConfig struct {
	ToolSets             string   `yaml:"toolSets,omitempty"`
	DynamicToolDiscovery BoolFlag `yaml:"dynamicToolDiscovery,omitempty"`
}

// Enforced reports whether the server pins the operating mode.
func (m ModeConfig) Enforced() bool {
	return m.DynamicToolDiscovery.Set || m.ToolSets != ""
}

// MetricsConfig selects the metrics exporter.
type MetricsConfig struct {
	Exporter string `yaml:"exporter,omitempty"` // prometheus | stdout | none
}

// Metrics exporter names.
const (
	MetricsExporterPrometheus = "prometheus"
	MetricsExporterStdout     = "stdout"
	MetricsExporterNone       = "none"
)
