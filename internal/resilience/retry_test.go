package resilience

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    maxAttempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDoSuccessOnFirstAttempt(t *testing.T) {
	var calls int
	got, err := Do(context.Background(), DefaultRetryConfig(), func(context.Context) (string, error) {
		calls++
		return "text", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "text", got)
	assert.Equal(t, 1, calls)
}

func TestDoSuccessAfterRetry(t *testing.T) {
	var calls int
	got, err := Do(context.Background(), fastConfig(3), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, NewTransientError(errors.New("temporary"))
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	var calls int
	_, err := Do(context.Background(), fastConfig(3), func(context.Context) (int, error) {
		calls++
		return 0, NewTransientError(errors.New("always fails"))
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoPermanentErrorNoRetry(t *testing.T) {
	var calls int
	_, err := Do(context.Background(), fastConfig(3), func(context.Context) (int, error) {
		calls++
		return 0, errors.New("syntax error in page tree")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	_, err := Do(ctx, fastConfig(5), func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, NewTransientError(errors.New("temporary"))
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoCustomShouldRetry(t *testing.T) {
	cfg := fastConfig(3)
	cfg.ShouldRetry = func(error) bool { return true }

	var calls int
	_, err := Do(context.Background(), cfg, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("normally permanent")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoOnRetryCallback(t *testing.T) {
	cfg := fastConfig(3)
	var attempts []int
	cfg.OnRetry = func(attempt int, err error) { attempts = append(attempts, attempt) }

	_, err := Do(context.Background(), cfg, func(context.Context) (int, error) {
		return 0, NewTransientError(errors.New("temporary"))
	})
	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"wrapped transient", NewTransientError(errors.New("x")), true},
		{"missing binary", exec.ErrNotFound, false},
		{"plain error", errors.New("pdftotext failed"), false},
		{"resource pressure message", errors.New("fork/exec: resource temporarily unavailable"), true},
		{"out of memory message", errors.New("cannot allocate memory"), true},
		{"fd exhaustion message", errors.New("open: too many open files"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestComputeBackoffCapsAtMax(t *testing.T) {
	cfg := applyDefaults(RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     300 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0,
		MaxAttempts:    10,
	})
	assert.Equal(t, 100*time.Millisecond, computeBackoff(0, cfg))
	assert.Equal(t, 200*time.Millisecond, computeBackoff(1, cfg))
	assert.Equal(t, 300*time.Millisecond, computeBackoff(2, cfg))
	assert.Equal(t, 300*time.Millisecond, computeBackoff(5, cfg))
}
