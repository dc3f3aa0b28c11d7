package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Operation:      "test",
	}
}

func TestDoVal_SuccessAfterRetry(t *testing.T) {
	calls := 0
	got, err := DoVal(context.Background(), fastConfig(3), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", syscall.ECONNREFUSED
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(2), func(context.Context) error {
		calls++
		return fmt.Errorf("dial: %w", syscall.ECONNRESET)
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(5), func(context.Context) error {
		calls++
		return errors.New("password authentication failed")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ShouldRetryOverride(t *testing.T) {
	calls := 0
	cfg := fastConfig(3)
	cfg.ShouldRetry = func(error) bool { return true }
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		return errors.New("anything")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastConfig(5), func(context.Context) error {
		calls++
		return syscall.ECONNREFUSED
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "refused", err: fmt.Errorf("wrap: %w", syscall.ECONNREFUSED), want: true},
		{name: "startup message", err: errors.New("FATAL: the database system is starting up"), want: true},
		{name: "timeout", err: &net.OpError{Op: "dial", Err: os.ErrDeadlineExceeded}, want: true},
		{name: "auth", err: errors.New("password authentication failed"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestBackoff_Capped(t *testing.T) {
	t.Parallel()

	cfg := applyDefaults(RetryConfig{InitialBackoff: time.Second, MaxBackoff: 3 * time.Second})
	assert.Equal(t, time.Second, backoff(0, cfg))
	assert.Equal(t, 2*time.Second, backoff(1, cfg))
	assert.Equal(t, 3*time.Second, backoff(5, cfg))
}
