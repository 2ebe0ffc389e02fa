// Package sentiment provides tone classifiers for ingested signals.
// It includes adapters for Claude (Anthropic) and OpenAI APIs with
// reliability patterns, a keyword heuristic for offline operation, and
// a no-op classifier for development. All classifiers map free text to
// one of the three coarse labels carried by items.
package sentiment

import (
	"context"
	"strings"

	"nexuspulse/internal/domain/entity"
)

// Classifier labels a headline-plus-summary text with a coarse tone.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, text string) (entity.Sentiment, error)
}

// parseLabel maps a provider's free-form answer onto a known label.
// Anything unrecognized degrades to neutral rather than failing the
// ingest of an otherwise valid signal.
func parseLabel(answer string) entity.Sentiment {
	switch normalizeAnswer(answer) {
	case "positive":
		return entity.SentimentPositive
	case "negative":
		return entity.SentimentNegative
	default:
		return entity.SentimentNeutral
	}
}

// normalizeAnswer strips quotes, punctuation and casing from a model
// answer so "Positive." and `"positive"` both match.
func normalizeAnswer(answer string) string {
	answer = strings.ToLower(strings.TrimSpace(answer))
	answer = strings.Trim(answer, "\"'.,! \t\n")
	// Models occasionally answer in a sentence; keep the first word.
	if idx := strings.IndexAny(answer, " \t\n"); idx > 0 {
		answer = answer[:idx]
	}
	return answer
}
