package loader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Success(t *testing.T) {
	v, err := Load(context.Background(), "quotes", time.Second, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestLoad_Failure(t *testing.T) {
	cause := errors.New("constructor exploded")
	_, err := Load(context.Background(), "news", time.Second, func(context.Context) (string, error) {
		return "", cause
	})

	var failure *ModuleLoadFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "news", failure.Name)
	assert.ErrorIs(t, err, cause)
}

func TestLoad_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, err := Load(context.Background(), "slow", 30*time.Millisecond, func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	var timeout *ModuleLoadTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "slow", timeout.Name)
	assert.Equal(t, 30*time.Millisecond, timeout.Timeout)
	assert.Contains(t, err.Error(), "30ms")
	assert.Less(t, time.Since(start), time.Second)
}

func TestLoad_PanicIsFailure(t *testing.T) {
	_, err := Load(context.Background(), "boom", time.Second, func(context.Context) (int, error) {
		panic("bad module")
	})
	var failure *ModuleLoadFailureError
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, err.Error(), "bad module")
}

func TestLoad_CallerCancellationDoesNotCancelLoad(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := Load(ctx, "detached", time.Second, func(loadCtx context.Context) (string, error) {
		if loadCtx.Err() != nil {
			return "", loadCtx.Err()
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestLoad_DefaultTimeoutApplied(t *testing.T) {
	remaining, err := Load(context.Background(), "deadline", 0, func(loadCtx context.Context) (time.Duration, error) {
		deadline, ok := loadCtx.Deadline()
		if !ok {
			return 0, errors.New("no deadline")
		}
		return time.Until(deadline), nil
	})
	require.NoError(t, err)
	assert.Greater(t, remaining, DefaultTimeout-time.Second)
}
