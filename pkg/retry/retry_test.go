package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errTransient = errors.New("connection refused")
	errFatal     = errors.New("auth failed")
)

func fastConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastConfig(), func(context.Context) error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	var retried []int
	cfg := fastConfig()
	cfg.OnRetry = func(attempt int, _ time.Duration, err error) {
		retried = append(retried, attempt)
		assert.ErrorIs(t, err, errTransient)
	}

	attempts := 0
	err := Retry(context.Background(), cfg, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetry_GivesUp(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), fastConfig(), func(context.Context) error {
		attempts++
		return errTransient
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 4, attempts)
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	cfg := fastConfig()
	cfg.NonRetryable = []error{errFatal}

	attempts := 0
	err := Retry(context.Background(), cfg, func(context.Context) error {
		attempts++
		return errFatal
	})

	assert.ErrorIs(t, err, errFatal)
	assert.Equal(t, 1, attempts)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Retry(ctx, fastConfig(), func(context.Context) error {
		attempts++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, attempts)
}

func TestRetryWithResult(t *testing.T) {
	attempts := 0
	got, err := RetryWithResult(context.Background(), fastConfig(), func(context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errTransient
		}
		return "client", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "client", got)
}

func TestCalculateDelay_Capped(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, calculateDelay(cfg, 0))
	assert.Equal(t, 200*time.Millisecond, calculateDelay(cfg, 1))
	assert.Equal(t, 300*time.Millisecond, calculateDelay(cfg, 5))
}

func TestCalculateDelay_JitterBounds(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2, Jitter: true}

	for i := 0; i < 50; i++ {
		d := calculateDelay(cfg, 0)
		assert.GreaterOrEqual(t, d, 75*time.Millisecond)
		assert.LessOrEqual(t, d, 125*time.Millisecond)
	}
}
