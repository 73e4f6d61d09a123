package polarity

import (
	"context"
	"fmt"
	"time"

	pb "github.com/godilite/reviewsent/api/v1"
	"github.com/godilite/reviewsent/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const defaultRemoteTimeout = 5 * time.Second

// Remote scores text through a reviewsent.polarity.v1 server.
type Remote struct {
	conn    *grpc.ClientConn
	client  pb.PolarityClient
	health  healthpb.HealthClient
	timeout time.Duration
	logger  *zap.Logger

	dialOpts []grpc.DialOption
}

// RemoteOption configures a Remote.
type RemoteOption func(*Remote)

// WithTimeout bounds every Score and health call.
func WithTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) RemoteOption {
	return func(r *Remote) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDialOptions adds gRPC dial options, for example a bufconn dialer.
func WithDialOptions(opts ...grpc.DialOption) RemoteOption {
	return func(r *Remote) {
		r.dialOpts = append(r.dialOpts, opts...)
	}
}

// DialRemote connects to addr and probes the server's health before
// returning. A server that is down or not serving yields an error matching
// service.ErrScorerUnavailable.
func DialRemote(ctx context.Context, addr string, opts ...RemoteOption) (*Remote, error) {
	r := &Remote{
		timeout: defaultRemoteTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("polarity-remote")

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, r.dialOpts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrScorerUnavailable, err)
	}
	r.conn = conn
	r.client = pb.NewPolarityClient(conn)
	r.health = healthpb.NewHealthClient(conn)

	if err := r.Check(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	r.logger.Info("connected to polarity server", zap.String("addr", addr))
	return r, nil
}

// Check asks the server whether the polarity service is serving.
func (r *Remote) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.health.Check(ctx, &healthpb.HealthCheckRequest{Service: pb.ServiceName})
	if err != nil {
		return fmt.Errorf("%w: health check: %v", service.ErrScorerUnavailable, err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: polarity service is %s", service.ErrScorerUnavailable, resp.GetStatus())
	}
	return nil
}

// Score implements service.PolarityScorer.
func (r *Remote) Score(ctx context.Context, text string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.Score(ctx, wrapperspb.String(text))
	if err != nil {
		switch status.Code(err) {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Unimplemented:
			return 0, fmt.Errorf("%w: %v", service.ErrScorerUnavailable, err)
		default:
			return 0, fmt.Errorf("remote score: %w", err)
		}
	}
	return resp.GetValue(), nil
}

// Close releases the connection.
func (r *Remote) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}
