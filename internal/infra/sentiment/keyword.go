package sentiment

import (
	"context"
	"strings"

	"nexuspulse/internal/domain/entity"
	"nexuspulse/internal/observability/metrics"
)

// Wordlists for the offline heuristic. Deliberately short: the keyword
// classifier exists so ingest keeps labelling when no API key is
// configured, not to compete with a model.
var (
	positiveWords = []string{
		"beat", "beats", "surge", "surges", "rally", "record", "growth",
		"profit", "gain", "gains", "upgrade", "strong", "breakthrough",
		"win", "wins", "approval", "launch",
	}
	negativeWords = []string{
		"miss", "misses", "plunge", "plunges", "drop", "drops", "loss",
		"losses", "lawsuit", "recall", "downgrade", "weak", "fraud",
		"layoff", "layoffs", "probe", "decline", "crash", "ban",
	}
)

// Keyword is a dependency-free classifier that scores text by counting
// tone-bearing words. Ties and empty scores resolve to neutral.
type Keyword struct{}

// NewKeyword creates a keyword heuristic classifier.
func NewKeyword() *Keyword {
	return &Keyword{}
}

// Classify counts positive and negative markers in the lowercased text.
func (k *Keyword) Classify(_ context.Context, text string) (entity.Sentiment, error) {
	lowered := strings.ToLower(text)

	var score int
	for _, w := range positiveWords {
		score += strings.Count(lowered, w)
	}
	for _, w := range negativeWords {
		score -= strings.Count(lowered, w)
	}

	label := entity.SentimentNeutral
	switch {
	case score > 0:
		label = entity.SentimentPositive
	case score < 0:
		label = entity.SentimentNegative
	}

	metrics.SentimentClassificationsTotal.WithLabelValues("keyword", string(label)).Inc()
	return label, nil
}
