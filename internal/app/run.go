package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"fmpmcp/pkg/logging"
)

// shutdownTimeout bounds the whole shutdown sequence.
const shutdownTimeout = 15 * time.Second

// runServer starts the HTTP server and blocks until ctx is cancelled or
// SIGINT/SIGTERM arrives, then shuts everything down.
//
// Behavior:
//   - Starts the config watcher when one is configured (failure is logged, not fatal)
//   - Starts the HTTP listener and notifies systemd that the service is ready
//   - On shutdown notifies systemd, stops the server (cache sweep first, then
//     the listener), stops the watcher and flushes metrics
//
// Shutdown steps are best effort: every step runs and their errors are joined.
func runServer(ctx context.Context, services *Services) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if services.Watcher != nil {
		if err := services.Watcher.Start(); err != nil {
			logging.Warn("Bootstrap", "Config watcher not started: %v", err)
		}
	}

	if err := services.Server.Start(); err != nil {
		logging.Error("Bootstrap", err, "Failed to start HTTP server")
		return errors.Join(err, shutdown(services))
	}
	notifySystemd(daemon.SdNotifyReady)
	logging.Info("Bootstrap", "fmpmcp serving on %s. Press Ctrl+C to stop.", services.Server.Addr())

	<-ctx.Done()

	logging.Info("Bootstrap", "Shutting down")
	notifySystemd(daemon.SdNotifyStopping)
	return shutdown(services)
}

func shutdown(services *Services) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := services.Server.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}
	if services.Watcher != nil {
		services.Watcher.Stop()
	}
	if err := services.Metrics.Shutdown(ctx); err != nil {
		logging.Error("Bootstrap", err, "Failed to flush metrics")
		errs = append(errs, fmt.Errorf("metrics: %w", err))
	}
	logging.Info("Bootstrap", "Shutdown complete")
	return errors.Join(errs...)
}

func notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	switch {
	case err != nil:
		logging.Warn("Bootstrap", "systemd notification %q failed: %v", state, err)
	case sent:
		logging.Debug("Bootstrap", "Sent systemd notification %q", state)
	}
}
