// Package retry runs operations again after transient failures, with
// exponential backoff and jitter.
//
// Feed fetches deliberately do not go through this package: their only
// recovery path is the fallback relay chain, and staleness is
// acceptable there.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Config tunes one retry loop.
type Config struct {
	// MaxAttempts bounds total attempts, including the first.
	MaxAttempts int

	// InitialDelay is the wait before the second attempt; each further
	// wait multiplies by Multiplier up to MaxDelay.
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// JitterFraction randomizes each delay by up to this fraction so
	// concurrent retriers do not synchronize.
	JitterFraction float64
}

// DefaultConfig returns a baseline retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

// DBConfig tunes retries for database operations: quick attempts, since
// the usual failure is a connection blip or a store still starting up.
func DBConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = 100 * time.Millisecond
	cfg.MaxDelay = time.Second
	return cfg
}

// SentimentAPIConfig tunes retries for the text-classification API.
// Delays are longer because rate limiting is the common failure there.
func SentimentAPIConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = 2 * time.Second
	cfg.MaxDelay = 10 * time.Second
	return cfg
}

// WithBackoff runs fn until it succeeds, fails with a non-retryable
// error, exhausts cfg.MaxAttempts, or ctx is done.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry", slog.Int("attempt", attempt))
			}
			return nil
		}

		if !IsRetryable(err) {
			slog.Warn("non-retryable error, aborting",
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			return err
		}
		if attempt == cfg.MaxAttempts {
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, err)
		}

		slog.Warn("operation failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", err))

		select {
		case <-time.After(jittered(delay, cfg.JitterFraction)):
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}

// IsRetryable reports whether err looks transient: network timeouts,
// refused or reset connections, and HTTP 5xx / 429 / 408 responses.
// Context cancellation is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT, syscall.ENETUNREACH,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode >= 500 && httpErr.StatusCode < 600:
			return true
		case httpErr.StatusCode == http.StatusTooManyRequests:
			return true
		case httpErr.StatusCode == http.StatusRequestTimeout:
			return true
		}
	}

	return false
}

// HTTPError carries an HTTP status code so IsRetryable can classify
// responses from external APIs.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// jittered adds up to fraction of d as random extra delay.
func jittered(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return d
	}
	if fraction > 1.0 {
		fraction = 1.0
	}
	// #nosec G404 -- backoff jitter does not need crypto randomness.
	return d + time.Duration(rand.Float64()*float64(d)*fraction)
}
