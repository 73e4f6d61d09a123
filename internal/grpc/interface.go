package grpc

import "context"

// Scorer is the polarity oracle served over gRPC.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}
