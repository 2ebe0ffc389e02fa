package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"nexuspulse/internal/domain/entity"
	"nexuspulse/internal/observability/metrics"
	"nexuspulse/internal/resilience/circuitbreaker"
	"nexuspulse/internal/resilience/retry"
)

// ClaudeConfig holds configuration parameters for the Claude classifier.
type ClaudeConfig struct {
	// Model is the Claude API model identifier.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	// Classification answers are one word, so this stays small.
	MaxTokens int

	// Timeout is the maximum duration for a single classification call.
	Timeout time.Duration
}

// DefaultClaudeConfig returns the default Claude classifier settings.
func DefaultClaudeConfig() ClaudeConfig {
	return ClaudeConfig{
		Model:     string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens: 16,
		Timeout:   30 * time.Second,
	}
}

// Claude implements Classifier using Anthropic's Claude API.
// It includes circuit breaker and retry logic for improved reliability.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         ClaudeConfig
}

// NewClaude creates a Claude classifier with the given API key.
func NewClaude(apiKey string) *Claude {
	config := DefaultClaudeConfig()

	slog.Info("Initialized Claude sentiment classifier",
		slog.String("model", config.Model),
		slog.Duration("timeout", config.Timeout))

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.SentimentAPIConfig()),
		retryConfig:    retry.SentimentAPIConfig(),
		config:         config,
	}
}

// Classify labels the given text using Claude. A circuit breaker open
// state or exhausted retries surface as errors; callers decide whether
// to degrade to neutral.
func (c *Claude) Classify(ctx context.Context, text string) (entity.Sentiment, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var label entity.Sentiment

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doClassify(ctx, text)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}

		label = cbResult.(entity.Sentiment)
		return nil
	})

	if retryErr != nil {
		metrics.SentimentClassificationsTotal.WithLabelValues("claude", "error").Inc()
		return "", fmt.Errorf("claude classify failed after retries: %w", retryErr)
	}

	metrics.SentimentClassificationsTotal.WithLabelValues("claude", string(label)).Inc()
	return label, nil
}

// doClassify performs the actual API call without retry or circuit breaker.
func (c *Claude) doClassify(ctx context.Context, text string) (entity.Sentiment, error) {
	// One short completion per signal; truncate pathological inputs.
	const maxChars = 2000
	if len(text) > maxChars {
		text = text[:maxChars]
	}

	prompt := buildPrompt(text)

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	return parseLabel(textBlock.Text), nil
}

// buildPrompt constructs the one-word classification prompt shared by
// the API-backed classifiers.
func buildPrompt(text string) string {
	return fmt.Sprintf("Classify the sentiment of this financial news item as exactly one word: positive, negative, or neutral.\n\n%s", text)
}
