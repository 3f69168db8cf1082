// Package app provides application bootstrap and lifecycle management for fmpmcp.
//
// # Architecture Overview
//
// The app package is the composition root. It has four parts:
//
//  1. **Bootstrap (`bootstrap.go`)**: logging setup, configuration resolution and validation
//  2. **Configuration (`config.go`)**: runtime settings passed in from the command line
//  3. **Services (`services.go`)**: construction of every component and the config reload handler
//  4. **Run loop (`run.go`)**: start, signal handling, systemd notification and shutdown
//
// ## Configuration Resolution
//
// The server configuration is layered, later layers winning:
//
//  1. Built-in defaults (`config.Default`)
//  2. The YAML file given with --config-path, if any
//  3. Environment variables (FMP_ACCESS_TOKEN, PORT, FMP_TOOL_SETS,
//     FMP_DYNAMIC_TOOL_DISCOVERY, FMP_LOG_LEVEL)
//  4. Command-line flags (`Config.Overrides`)
//
// When a config file is used it is watched. A reload re-applies the same
// layers and then updates the hot-reloadable settings in place: the default
// FMP credential and the log level. Servers already cached for clients pick
// up the new default credential on their next operation call.
//
// ## Lifecycle
//
//	NewApplication -> Run -> (SIGINT | SIGTERM | ctx cancelled) -> shutdown
//
// Shutdown stops the cache sweep, closes the HTTP listener, releases cached
// client servers, stops the watcher and flushes metrics. Every step runs even
// if an earlier one failed.
//
// ## Usage
//
//	cfg := app.NewConfig(debug, configPath, version)
//	cfg.Overrides = func(c *config.ServerConfig) { c.Server.Port = 9000 }
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
package app
