package fetcher

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"nexuspulse/pkg/config"
)

// Config holds tunables for feed fetching.
type Config struct {
	// Timeout bounds one strategy attempt, including body read.
	Timeout time.Duration

	// RelayTemplates overrides the default relay chain. Each entry is
	// "label=template" where template contains one %s placeholder for
	// the escaped feed URL. Relays are tried after the direct attempt.
	RelayTemplates []string
}

// DefaultConfig returns the fetch configuration for entity-scoped
// aggregation.
func DefaultConfig() Config {
	return Config{Timeout: 10 * time.Second}
}

// LoadConfigFromEnv reads fetch configuration from environment variables.
//
//	FEED_FETCH_TIMEOUT  duration, default 10s
//	FEED_RELAYS         comma-separated "label=template" entries
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.Timeout = config.GetEnvDuration("FEED_FETCH_TIMEOUT", cfg.Timeout)
	if err := config.ValidatePositiveDuration(cfg.Timeout); err != nil {
		return Config{}, fmt.Errorf("invalid FEED_FETCH_TIMEOUT: %w", err)
	}
	cfg.RelayTemplates = config.GetEnvStringList("FEED_RELAYS", nil)
	return cfg, nil
}

// Strategies builds the strategy chain for this configuration.
func (c Config) Strategies() ([]Strategy, error) {
	if len(c.RelayTemplates) == 0 {
		return DefaultStrategies(), nil
	}

	strategies := []Strategy{DirectStrategy{}}
	for _, entry := range c.RelayTemplates {
		label, template, ok := strings.Cut(entry, "=")
		if !ok || !strings.Contains(template, "%s") {
			return nil, fmt.Errorf("invalid relay entry %q (want label=template with %%s placeholder)", entry)
		}
		strategies = append(strategies, RelayStrategy{Label: label, Template: template})
	}
	return strategies, nil
}

// NewHTTPClient returns an HTTP client with this configuration's timeout.
// Redirect following is kept (relays redirect), but the total budget is
// still bounded by the client timeout.
func (c Config) NewHTTPClient() *http.Client {
	return &http.Client{Timeout: c.Timeout}
}
