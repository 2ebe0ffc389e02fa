// Package fetcher retrieves raw feed documents over HTTP.
//
// Some upstream feeds reject non-browser clients or sit behind
// aggressive CDNs, so the fetcher runs an ordered chain of access
// strategies: a direct request first, then a list of public relay
// endpoints. The first response that looks like a feed wins; everything
// else in the chain is silently abandoned. There is no retry beyond the
// chain itself.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"nexuspulse/internal/observability/metrics"
)

// browserUserAgent is sent on every request; several feed origins
// return 403 to anything that does not look like a browser.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxBodyBytes caps how much of a response body is read. Feeds larger
// than this are truncated; gofeed copes with a truncated tail.
const maxBodyBytes = 5 << 20

// ErrNoFeedContent is returned when every strategy in the chain either
// failed or produced a body that does not look like a feed.
var ErrNoFeedContent = errors.New("no strategy produced feed content")

// ErrUnsupportedURL is returned for URLs that are not absolute http(s).
// Configuration rows sometimes carry placeholders like "#" or "n/a";
// those must never be dereferenced.
var ErrUnsupportedURL = errors.New("unsupported feed url")

// Strategy is one way of reaching a feed URL. Request returns the HTTP
// request to issue for the target URL.
type Strategy interface {
	Name() string
	Request(ctx context.Context, feedURL string) (*http.Request, error)
}

// DirectStrategy fetches the feed URL as-is.
type DirectStrategy struct{}

func (DirectStrategy) Name() string { return "direct" }

func (DirectStrategy) Request(ctx context.Context, feedURL string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
}

// RelayStrategy fetches the feed through a public relay endpoint.
// Template must contain exactly one %s placeholder which receives the
// query-escaped feed URL. Relay endpoints are externally hosted and
// inherently unstable; they are tried in order and individually
// expendable.
type RelayStrategy struct {
	Label    string
	Template string
}

func (s RelayStrategy) Name() string { return s.Label }

func (s RelayStrategy) Request(ctx context.Context, feedURL string) (*http.Request, error) {
	relayURL := fmt.Sprintf(s.Template, url.QueryEscape(feedURL))
	return http.NewRequestWithContext(ctx, http.MethodGet, relayURL, nil)
}

// DefaultStrategies returns the standard fallback chain: direct access
// first, then the public relays the system has historically used.
func DefaultStrategies() []Strategy {
	return []Strategy{
		DirectStrategy{},
		RelayStrategy{Label: "allorigins", Template: "https://api.allorigins.win/raw?url=%s"},
		RelayStrategy{Label: "corsproxy", Template: "https://corsproxy.io/?%s"},
		RelayStrategy{Label: "codetabs", Template: "https://api.codetabs.com/v1/proxy?quest=%s"},
	}
}

// ChainFetcher fetches raw feed text by walking an ordered strategy chain.
type ChainFetcher struct {
	client     *http.Client
	strategies []Strategy
}

// NewChainFetcher creates a ChainFetcher with the given HTTP client and
// strategy chain. A nil or empty chain falls back to DefaultStrategies.
func NewChainFetcher(client *http.Client, strategies []Strategy) *ChainFetcher {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &ChainFetcher{client: client, strategies: strategies}
}

// Fetch retrieves the raw feed document for feedURL. It walks the
// strategy chain in order and accepts the first 2xx response whose body
// contains feed-shaped markup. Exhausting the chain yields
// ErrNoFeedContent; individual strategy failures are logged at debug
// level and never surfaced.
func (f *ChainFetcher) Fetch(ctx context.Context, feedURL string) (string, error) {
	if !strings.HasPrefix(feedURL, "http://") && !strings.HasPrefix(feedURL, "https://") {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedURL, feedURL)
	}

	logger := slog.Default()

	for _, strategy := range f.strategies {
		body, err := f.attempt(ctx, strategy, feedURL)
		if err != nil {
			if ctx.Err() != nil {
				// Do not walk the rest of the chain against a dead context.
				return "", fmt.Errorf("fetch %s: %w", feedURL, ctx.Err())
			}
			metrics.RelayFallbacksTotal.WithLabelValues(strategy.Name(), "failed").Inc()
			logger.Debug("fetch strategy failed",
				slog.String("strategy", strategy.Name()),
				slog.String("url", feedURL),
				slog.Any("error", err))
			continue
		}
		metrics.RelayFallbacksTotal.WithLabelValues(strategy.Name(), "ok").Inc()
		return body, nil
	}

	return "", fmt.Errorf("fetch %s: %w", feedURL, ErrNoFeedContent)
}

// attempt issues one strategy's request and validates the response body.
func (f *ChainFetcher) attempt(ctx context.Context, strategy Strategy, feedURL string) (string, error) {
	req, err := strategy.Request(ctx, feedURL)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml; q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	body := string(raw)
	if !LooksLikeFeed(body) {
		return "", errors.New("body is not feed-shaped")
	}
	return body, nil
}

// LooksLikeFeed reports whether the body contains RSS/Atom markup.
// Relays sometimes return HTML error pages with a 200 status, so a
// success status alone is not enough to accept a response.
func LooksLikeFeed(body string) bool {
	return strings.Contains(body, "<rss") ||
		strings.Contains(body, "<feed") ||
		strings.Contains(body, "<item") ||
		strings.Contains(body, "<entry")
}
