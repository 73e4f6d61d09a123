package service

import "context"

// PolarityScorer is the external sentiment oracle. Score returns a polarity
// in [-1, 1] for already cleaned text and must be deterministic.
type PolarityScorer interface {
	Score(ctx context.Context, text string) (float64, error)
}
