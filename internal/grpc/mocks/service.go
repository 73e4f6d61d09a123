package mocks

import (
	"context"
	"errors"
)

// MockScorer is a mock implementation of the Scorer interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockScorer struct {
	ScoreFunc func(ctx context.Context, text string) (float64, error)
}

// Score implements the Scorer interface
func (m *MockScorer) Score(ctx context.Context, text string) (float64, error) {
	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, text)
	}
	return 0, errors.New("ScoreFunc not implemented")
}
