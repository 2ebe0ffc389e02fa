package sentiment

import (
	"context"

	"nexuspulse/internal/domain/entity"
)

// NoOp is a classifier that labels everything neutral. Useful for
// testing and development when tone labelling is not needed.
type NoOp struct{}

// NewNoOp creates a new NoOp classifier.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Classify always returns neutral.
func (n *NoOp) Classify(_ context.Context, _ string) (entity.Sentiment, error) {
	return entity.SentimentNeutral, nil
}
