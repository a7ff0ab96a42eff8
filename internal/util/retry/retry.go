package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/utils/clock"
)

// DelayFunc returns the delay to wait after the given failed attempt.
// Attempts are numbered from 1.
type DelayFunc func(attempt int) time.Duration

// Config holds retry configuration.
type Config struct {
	MaxAttempts int
	Delay       DelayFunc
	Clock       clock.Clock

	// Retryable reports whether an error may be retried. When nil every
	// error is retried.
	Retryable func(error) bool

	// OnRetry is called before waiting for the next attempt.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Option is a functional option for retry configuration.
type Option func(*Config)

// Linear returns a DelayFunc that waits base multiplied by the attempt number.
func Linear(base time.Duration) DelayFunc {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

// Do executes the operation until it succeeds, returns a non-retryable
// error, or MaxAttempts is reached. The attempt number (from 1) is passed to
// the operation. Waiting is done through the configured clock so that tests
// can drive it with a fake clock.
func Do(ctx context.Context, operation func(attempt int) error, opts ...Option) error {
	cfg := &Config{
		MaxAttempts: 3,
		Delay:       Linear(time.Second),
		Clock:       clock.RealClock{},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("context cancelled after %d attempts: %w", attempt-1, errors.Join(err, lastErr))
			}
			return fmt.Errorf("context cancelled before first attempt: %w", err)
		}

		err := operation(attempt)
		if err == nil {
			return nil
		}

		lastErr = err

		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return err
		}

		if attempt < cfg.MaxAttempts {
			delay := cfg.Delay(attempt)
			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt, delay, err)
			}
			cfg.Clock.Sleep(delay)
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// WithMaxAttempts sets the total number of attempts, including the first one.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		c.MaxAttempts = n
	}
}

// WithDelay sets the delay policy between attempts.
func WithDelay(fn DelayFunc) Option {
	return func(c *Config) {
		c.Delay = fn
	}
}

// WithClock sets the clock used to wait between attempts.
func WithClock(clk clock.Clock) Option {
	return func(c *Config) {
		c.Clock = clk
	}
}

// WithRetryable restricts retries to errors accepted by fn.
func WithRetryable(fn func(error) bool) Option {
	return func(c *Config) {
		c.Retryable = fn
	}
}

// WithOnRetry registers a callback invoked before each wait.
func WithOnRetry(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(c *Config) {
		c.OnRetry = fn
	}
}
