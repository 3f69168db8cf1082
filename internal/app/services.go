package app

import (
	"fmt"

	"fmpmcp/internal/config"
	"fmpmcp/internal/factory"
	"fmpmcp/internal/fmp"
	"fmpmcp/internal/metrics"
	"fmpmcp/internal/modules"
	"fmpmcp/internal/server"
	"fmpmcp/internal/session"
	"fmpmcp/internal/toolsets"
	"fmpmcp/pkg/logging"
)

// Services holds all initialized components used by the application.
//
// Field descriptions:
//   - Metrics: meter provider and, for the prometheus exporter, the scrape handler
//   - Credential: process default credential, updated by config reloads
//   - Catalog / Registry: the static module catalog and the toolset table over it
//   - Factory: builds one protocol server per client configuration
//   - Cache: per-client servers keyed by client identity
//   - Server: HTTP surface (/mcp, /health, /metrics)
//   - Watcher: config file watcher; nil when no config file was given
type Services struct {
	Metrics    *metrics.Provider
	Credential *config.DefaultCredential
	Catalog    *modules.Catalog
	Registry   *toolsets.Registry
	Factory    *factory.Factory
	Cache      *server.Cache
	Server     *server.Server
	Watcher    *config.Watcher
}

// InitializeServices creates every component from the resolved configuration.
//
// Initialization Sequence:
//  1. Metrics provider for the configured exporter
//  2. Module catalog and toolset registry, cross-checked so every toolset names known modules
//  3. Upstream data client and default credential
//  4. Server factory and per-client cache
//  5. HTTP server
//  6. Config watcher when a config file is in use
func InitializeServices(cfg *Config, serverCfg config.ServerConfig) (*Services, error) {
	provider, err := metrics.NewProvider(serverCfg.Metrics.Exporter, nil)
	if err != nil {
		return nil, err
	}

	catalog := modules.Default()
	registry := toolsets.Default()
	if err := registry.CheckModules(catalog.Has); err != nil {
		return nil, fmt.Errorf("toolset registry does not match module catalog: %w", err)
	}

	credential := config.NewDefaultCredential(serverCfg.FMP.AccessToken)
	if credential.Configured() {
		logging.Info("Bootstrap", "Default FMP credential configured")
	} else {
		logging.Warn("Bootstrap", "No default FMP credential; clients must pass %s", config.KeyAccessCredential)
	}

	fac, err := factory.New(factory.Options{
		Catalog:           catalog,
		Registry:          registry,
		Fetcher:           fmp.NewClient(serverCfg.FMP.BaseURL, serverCfg.FMP.Timeout),
		DefaultCredential: credential,
		EnforcedMode:      serverCfg.Mode,
		LoadTimeout:       serverCfg.Modules.LoadTimeout,
		Recorder:          provider.Recorder(),
		Version:           cfg.Version,
	})
	if err != nil {
		return nil, err
	}
	if serverCfg.Mode.Enforced() {
		logging.Info("Bootstrap", "Server mode enforced: toolSets=%q dynamicToolDiscovery=%s",
			serverCfg.Mode.ToolSets, serverCfg.Mode.DynamicToolDiscovery)
	}

	cache, err := session.New[*factory.Instance](session.Options{
		MaxSize:       serverCfg.Cache.MaxSize,
		TTL:           serverCfg.Cache.TTL,
		SweepInterval: serverCfg.Cache.EffectiveSweepInterval(),
		Recorder:      provider.Recorder(),
	})
	if err != nil {
		return nil, err
	}

	srv, err := server.New(server.Options{
		Addr:              serverCfg.Server.Addr(),
		Cache:             cache,
		Builder:           fac,
		MetricsHandler:    provider.Handler(),
		DefaultCredential: credential,
		EnforcedMode:      serverCfg.Mode,
		Version:           cfg.Version,
	})
	if err != nil {
		cache.Stop()
		return nil, err
	}

	services := &Services{
		Metrics:    provider,
		Credential: credential,
		Catalog:    catalog,
		Registry:   registry,
		Factory:    fac,
		Cache:      cache,
		Server:     srv,
	}
	if cfg.ConfigPath != "" {
		services.Watcher = config.NewWatcher(config.WatcherConfig{
			Path:     cfg.ConfigPath,
			OnChange: services.reloadHandler(cfg),
		})
	}
	return services, nil
}

// reloadHandler applies the hot-reloadable fields of a reloaded config: the
// default credential and the log level. Everything else needs a restart.
func (s *Services) reloadHandler(cfg *Config) func(config.ServerConfig) {
	return func(next config.ServerConfig) {
		if cfg.Overrides != nil {
			cfg.Overrides(&next)
		}

		if next.FMP.AccessToken != s.Credential.Get() {
			s.Credential.Set(next.FMP.AccessToken)
			logging.Info("ConfigWatcher", "Default FMP credential updated (configured=%t)", s.Credential.Configured())
		}

		if cfg.Debug {
			return
		}
		level, err := logging.ParseLevel(next.LogLevel)
		if err != nil {
			logging.Warn("ConfigWatcher", "Ignoring log level from reloaded config: %v", err)
			return
		}
		if level != logging.CurrentLevel() {
			logging.SetLevel(level)
			logging.Info("ConfigWatcher", "Log level changed to %s", level)
		}
	}
}
