package grpc

import (
	"context"
	"errors"
	"math"
	"time"

	pb "github.com/godilite/reviewsent/api/v1"
	"github.com/godilite/reviewsent/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	defaultGRPCTimeout = 10 * time.Second
	// maxTextBytes bounds the text of a single Score request.
	maxTextBytes = 1 << 20
)

type PolarityHandlers struct {
	pb.UnimplementedPolarityServer
	scorer  Scorer
	logger  *zap.Logger
	timeout time.Duration
}

// NewPolarityHandlers initializes the gRPC handlers.
func NewPolarityHandlers(scorer Scorer, logger *zap.Logger, timeout time.Duration) *PolarityHandlers {
	if scorer == nil {
		panic("nil Scorer provided to NewPolarityHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultGRPCTimeout
	}
	return &PolarityHandlers{
		scorer:  scorer,
		logger:  logger.Named("grpc-handler"),
		timeout: timeout,
	}
}

func (s *PolarityHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrScorerUnavailable):
		s.logger.Warn("scorer unavailable", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Unavailable, "polarity scorer unavailable")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

// Score returns the polarity of the request text.
func (s *PolarityHandlers) Score(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error) {
	text := req.GetValue()
	if len(text) > maxTextBytes {
		return nil, status.Errorf(codes.InvalidArgument, "text is %d bytes, limit is %d", len(text), maxTextBytes)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	score, err := s.scorer.Score(ctx, text)
	if err != nil {
		return nil, s.handleError(ctx, "Score", err)
	}
	if math.IsNaN(score) {
		return nil, s.handleError(ctx, "Score", errors.New("scorer returned NaN"))
	}

	return wrapperspb.Double(math.Max(-1, math.Min(1, score))), nil
}
