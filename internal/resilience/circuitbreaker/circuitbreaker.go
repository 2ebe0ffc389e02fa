// Package circuitbreaker wraps github.com/sony/gobreaker so that calls
// to failing backends turn into fast failures instead of piled-up slow
// ones. The aggregation path uses it around the entity configuration
// store; the ingest worker uses it around the sentiment API.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config tunes one circuit breaker instance.
type Config struct {
	// Name appears in logs when the breaker changes state.
	Name string

	// MaxRequests caps probe requests while half-open.
	MaxRequests uint32

	// Interval is how often closed-state counts reset.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// FailureThreshold is the failure ratio that trips the breaker
	// once at least MinRequests calls have been observed.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultConfig returns a baseline configuration under the given name.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// ConfigLookupConfig tunes the breaker guarding entity configuration
// lookups. The open timeout is short: a request that cannot resolve its
// entity fails anyway, so probing again early costs little.
func ConfigLookupConfig() Config {
	cfg := DefaultConfig("config-lookup")
	cfg.Timeout = 30 * time.Second
	return cfg
}

// SentimentAPIConfig tunes the breaker guarding the external
// text-classification API used by the ingest worker.
func SentimentAPIConfig() Config {
	return DefaultConfig("sentiment-api")
}

// CircuitBreaker is a thin wrapper over gobreaker that installs this
// project's trip predicate and state-change logging.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a circuit breaker from cfg.
func New(cfg Config) *CircuitBreaker {
	return &CircuitBreaker{
		name: cfg.Name,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < cfg.MinRequests {
					return false
				}
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return ratio >= cfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

// Execute runs fn through the breaker. While the circuit is open it
// returns gobreaker.ErrOpenState without invoking fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State returns the breaker's current state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the breaker's configured name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether the breaker is currently rejecting calls.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
