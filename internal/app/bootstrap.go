package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"fmpmcp/internal/config"
	"fmpmcp/pkg/logging"
)

// Application represents the main application structure that bootstraps and runs fmpmcp.
// It encapsulates the resolved server configuration and the services built from it.
//
// The Application follows a two-phase initialization pattern:
//  1. Bootstrap phase: initialize logging, load configuration, build services
//  2. Execution phase: serve HTTP until the context is cancelled or a signal arrives
//
// Example usage:
//
//	cfg := app.NewConfig(false, "/etc/fmpmcp/config.yaml", version)
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	return application.Run(ctx)
type Application struct {
	config       *Config
	serverConfig config.ServerConfig
	services     *Services
}

// NewApplication creates and initializes a new application instance with the provided configuration.
// This function performs the complete bootstrap sequence:
//
//  1. Configures logging based on the debug flag
//  2. Loads configuration: defaults, then the YAML file, then the environment, then flags
//  3. Validates the merged configuration
//  4. Initializes metrics, the module catalog, the toolset registry, the factory and the cache
//
// The function returns an error if any step fails. Nothing is listening yet when it returns.
func NewApplication(cfg *Config) (*Application, error) {
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}
	var logOutput io.Writer = os.Stdout
	if cfg.LogOutput != nil {
		logOutput = cfg.LogOutput
	}
	logging.InitForCLI(appLogLevel, logOutput)

	serverCfg, err := resolveServerConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := serverCfg.Validate(); err != nil {
		logging.Error("Bootstrap", err, "Invalid configuration")
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	applyLogLevel(cfg, serverCfg)

	services, err := InitializeServices(cfg, serverCfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:       cfg,
		serverConfig: serverCfg,
		services:     services,
	}, nil
}

// Run executes the application
//
// Handles graceful shutdown via context cancellation and system signals.
// The method blocks until the application is terminated or encounters an error.
func (a *Application) Run(ctx context.Context) error {
	return runServer(ctx, a.services)
}

// Services exposes the initialized services.
func (a *Application) Services() *Services {
	return a.services
}

// ServerConfig returns the configuration the application was built with.
func (a *Application) ServerConfig() config.ServerConfig {
	return a.serverConfig
}

func resolveServerConfig(cfg *Config) (config.ServerConfig, error) {
	if cfg.ServerConfig != nil {
		return *cfg.ServerConfig, nil
	}

	serverCfg, err := config.Load(cfg.ConfigPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", cfg.ConfigPath)
		return config.ServerConfig{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	config.ApplyEnv(&serverCfg, os.Getenv)
	if cfg.Overrides != nil {
		cfg.Overrides(&serverCfg)
	}
	return serverCfg, nil
}

// applyLogLevel switches to the configured level unless --debug pinned it.
func applyLogLevel(cfg *Config, serverCfg config.ServerConfig) {
	if cfg.Debug {
		return
	}
	level, err := logging.ParseLevel(serverCfg.LogLevel)
	if err != nil {
		logging.Warn("Bootstrap", "Keeping log level %s: %v", logging.CurrentLevel(), err)
		return
	}
	if level != logging.CurrentLevel() {
		logging.SetLevel(level)
		logging.Info("Bootstrap", "Log level set to %s", level)
	}
}
