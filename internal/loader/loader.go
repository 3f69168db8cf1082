package loader

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"fmpmcp/pkg/logging"
)

// DefaultTimeout applies when Load is given a non-positive timeout.
const DefaultTimeout = 10 * time.Second

// Func acquires a value. The context it receives carries the load deadline.
type Func[T any] func(ctx context.Context) (T, error)

// ModuleLoadTimeoutError is returned when the acquisition did not finish in time.
type ModuleLoadTimeoutError struct {
	Name    string
	Timeout time.Duration
}

func (e *ModuleLoadTimeoutError) Error() string {
	return fmt.Sprintf("module %q did not load within %dms", e.Name, e.Timeout.Milliseconds())
}

// ModuleLoadFailureError is returned when the acquisition itself failed.
type ModuleLoadFailureError struct {
	Name  string
	Cause error
}

func (e *ModuleLoadFailureError) Error() string {
	return fmt.Sprintf("module %q failed to load: %v", e.Name, e.Cause)
}

func (e *ModuleLoadFailureError) Unwrap() error {
	return e.Cause
}

type outcome[T any] struct {
	value T
	err   error
}

// Load runs fn and waits at most timeout for it.
//
// Returns the value on success, *ModuleLoadTimeoutError when the timer fires
// first, or *ModuleLoadFailureError when fn fails (or panics) before the timer.
func Load[T any](ctx context.Context, name string, timeout time.Duration, fn Func[T]) (T, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	done := make(chan outcome[T], 1)
	var abandoned atomic.Bool
	started := time.Now()

	go func() {
		defer cancel()
		var res outcome[T]
		func() {
			defer func() {
				if r := recover(); r != nil {
					res.err = fmt.Errorf("panic during load: %v", r)
				}
			}()
			res.value, res.err = fn(loadCtx)
		}()

		if abandoned.Load() {
			if res.err != nil {
				logging.Debug("Loader", "Discarding late failure for %s after %s: %v", name, time.Since(started), res.err)
			} else {
				logging.Warn("Loader", "Discarding late result for %s, arrived after %s", name, time.Since(started))
			}
		}
		done <- res
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var zero T
	select {
	case res := <-done:
		if res.err != nil {
			return zero, &ModuleLoadFailureError{Name: name, Cause: res.err}
		}
		return res.value, nil
	case <-timer.C:
		abandoned.Store(true)
		logging.Warn("Loader", "Load of %s timed out after %s", name, timeout)
		return zero, &ModuleLoadTimeoutError{Name: name, Timeout: timeout}
	}
}
