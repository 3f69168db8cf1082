// Package logging provides the subsystem-tagged structured logger used across fmpmcp.
//
// The logger is a thin layer over log/slog. Every entry carries a subsystem
// attribute and, for errors, the error text:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Bootstrap", "Listening on %s", addr)
//	logging.Debug("Cache", "Hit for client %s", logging.TruncateIdentifier(id))
//	logging.Error("Factory", err, "Failed to construct server")
//
// The minimum level can be changed at runtime with SetLevel, which the
// configuration watcher uses when the config file is edited.
package logging
