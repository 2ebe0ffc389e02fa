package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"nexuspulse/internal/domain/entity"
	"nexuspulse/internal/observability/metrics"
	"nexuspulse/internal/resilience/circuitbreaker"
	"nexuspulse/internal/resilience/retry"
)

// OpenAIConfig holds configuration parameters for the OpenAI classifier.
type OpenAIConfig struct {
	// Model is the OpenAI API model identifier.
	Model string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Timeout is the maximum duration for a single classification call.
	Timeout time.Duration
}

// DefaultOpenAIConfig returns the default OpenAI classifier settings.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		Model:     openai.GPT4oMini,
		MaxTokens: 16,
		Timeout:   30 * time.Second,
	}
}

// OpenAI implements Classifier using OpenAI's chat completion API.
// It includes circuit breaker and retry logic for improved reliability.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         OpenAIConfig
}

// NewOpenAI creates an OpenAI classifier with the given API key.
func NewOpenAI(apiKey string) *OpenAI {
	config := DefaultOpenAIConfig()

	slog.Info("Initialized OpenAI sentiment classifier",
		slog.String("model", config.Model),
		slog.Duration("timeout", config.Timeout))

	return &OpenAI{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.SentimentAPIConfig()),
		retryConfig:    retry.SentimentAPIConfig(),
		config:         config,
	}
}

// Classify labels the given text using OpenAI.
func (o *OpenAI) Classify(ctx context.Context, text string) (entity.Sentiment, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var label entity.Sentiment

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doClassify(ctx, text)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}

		label = cbResult.(entity.Sentiment)
		return nil
	})

	if retryErr != nil {
		metrics.SentimentClassificationsTotal.WithLabelValues("openai", "error").Inc()
		return "", fmt.Errorf("openai classify failed after retries: %w", retryErr)
	}

	metrics.SentimentClassificationsTotal.WithLabelValues("openai", string(label)).Inc()
	return label, nil
}

// doClassify performs the actual API call without retry or circuit breaker.
func (o *OpenAI) doClassify(ctx context.Context, text string) (entity.Sentiment, error) {
	const maxChars = 2000
	if len(text) > maxChars {
		text = text[:maxChars]
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(text),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned empty response")
	}

	return parseLabel(resp.Choices[0].Message.Content), nil
}
