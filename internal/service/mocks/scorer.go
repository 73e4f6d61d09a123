package mocks

import (
	"context"
	"errors"
	"sync"
)

// MockScorer is a function-based mock of the PolarityScorer interface.
// Calls records the texts it was asked to score.
type MockScorer struct {
	ScoreFunc func(ctx context.Context, text string) (float64, error)
	Calls     []string

	mu sync.Mutex
}

// Score implements the PolarityScorer interface
func (m *MockScorer) Score(ctx context.Context, text string) (float64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, text)
	m.mu.Unlock()
	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, text)
	}
	return 0, errors.New("ScoreFunc not implemented")
}

// Scores returns a MockScorer answering from a fixed text to score table.
// Unknown texts score 0.
func Scores(table map[string]float64) *MockScorer {
	return &MockScorer{
		ScoreFunc: func(_ context.Context, text string) (float64, error) {
			return table[text], nil
		},
	}
}
