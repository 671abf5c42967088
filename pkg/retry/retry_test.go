package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:    maxRetries,
		BackoffFactor: 2.0,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		Jitter:        time.Millisecond,
	}
}

func TestRetry_SuccessOnFirstTry(t *testing.T) {
	counter := 0
	err := NewRetrier(fastConfig(3)).Do(context.Background(), func() error {
		counter++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, counter)
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	counter := 0
	err := NewRetrier(fastConfig(3)).Do(context.Background(), func() error {
		counter++
		if counter < 3 {
			return errors.New("address already in use")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, counter)
}

func TestRetry_MaxRetriesExceeded(t *testing.T) {
	expectedErr := errors.New("permanent error")
	counter := 0
	err := NewRetrier(fastConfig(2)).Do(context.Background(), func() error {
		counter++
		return expectedErr
	})

	require.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 3, counter) // Initial try + 2 retries
}

func TestRetry_NotRetryable(t *testing.T) {
	cfg := fastConfig(5)
	fatal := errors.New("invalid token")
	cfg.Retryable = func(err error) bool { return !errors.Is(err, fatal) }

	counter := 0
	err := NewRetrier(cfg).Do(context.Background(), func() error {
		counter++
		return fatal
	})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, counter)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	retrier := NewRetrier(&Config{MaxRetries: 3, BackoffFactor: 2, InitialDelay: time.Second, MaxDelay: time.Second})

	err := retrier.Do(ctx, func() error {
		cancel()
		return errors.New("operation error after cancel")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestValue(t *testing.T) {
	counter := 0
	got, err := Value(context.Background(), NewRetrier(fastConfig(2)), func() (string, error) {
		counter++
		if counter == 1 {
			return "", errors.New("temporary")
		}
		return "listening", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "listening", got)
}
