package config

import "time"

const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultCacheMaxSize    = 1000
	DefaultCacheTTL        = time.Hour
	DefaultLoadTimeout     = 10 * time.Second
	DefaultFMPBaseURL      = "https://financialmodelingprep.com/stable"
	DefaultFMPTimeout      = 30 * time.Second
	DefaultMetricsExporter = MetricsExporterPrometheus
	DefaultLogLevel        = "info"

	// MinSweepInterval is the lower bound for the cache sweep ticker.
	MinSweepInterval = time.Second
)

// Default returns the built-in configuration.
func Default() ServerConfig {
	return ServerConfig{
		Server: HTTPConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Cache: CacheConfig{
			MaxSize: DefaultCacheMaxSize,
			TTL:     DefaultCacheTTL,
		},
		Modules: ModulesConfig{
			LoadTimeout: DefaultLoadTimeout,
		},
		FMP: FMPConfig{
			BaseURL: DefaultFMPBaseURL,
			Timeout: DefaultFMPTimeout,
		},
		Metrics: MetricsConfig{
			Exporter: DefaultMetricsExporter,
		},
		LogLevel: DefaultLogLevel,
	}
}

// EffectiveSweepInterval returns the configured sweep interval, or ttl/2
// when unset, never less than MinSweepInterval.
func (c CacheConfig) EffectiveSweepInterval() time.Duration {
	interval := c.SweepInterval
	if interval <= 0 {
		interval = c.TTL / 2
	}
	if interval < MinSweepInterval {
		interval = MinSweepInterval
	}
	return interval
}
