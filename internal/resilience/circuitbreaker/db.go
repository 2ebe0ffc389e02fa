package circuitbreaker

import (
	"context"
	"database/sql"
	"time"

	"github.com/sony/gobreaker"
)

// DBCircuitBreaker puts a breaker in front of a *sql.DB. It satisfies
// the persistence layer's Querier interface, so repositories can be
// constructed over either a raw pool or a protected one.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// DBConfig tunes the breaker guarding the signal store. It trips only
// on sustained total failure (five consecutive errors) because single
// slow queries are normal under load.
func DBConfig() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
}

// NewDBCircuitBreaker protects db with the default DBConfig.
func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, DBConfig())
}

// NewDBCircuitBreakerWithConfig protects db with a custom breaker
// configuration.
func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{cb: New(cfg), db: db}
}

// QueryContext runs a query through the breaker. While the circuit is
// open it returns gobreaker.ErrOpenState without touching the database.
func (d *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	res, err := d.cb.Execute(func() (interface{}, error) {
		return d.db.QueryContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return res.(*sql.Rows), nil
}

// ExecContext runs a statement through the breaker.
func (d *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	res, err := d.cb.Execute(func() (interface{}, error) {
		return d.db.ExecContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return res.(sql.Result), nil
}

// QueryRowContext bypasses the breaker: sql.Row defers its error until
// Scan, so there is no failure signal to feed the breaker here.
func (d *DBCircuitBreaker) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

// State returns the breaker state.
func (d *DBCircuitBreaker) State() gobreaker.State {
	return d.cb.State()
}

// IsOpen reports whether the breaker is currently rejecting calls.
func (d *DBCircuitBreaker) IsOpen() bool {
	return d.cb.IsOpen()
}
