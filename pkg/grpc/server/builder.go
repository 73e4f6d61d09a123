package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type Option func(*options)

type options struct {
	port            int
	listener        net.Listener
	logger          *zap.Logger
	reflection      bool
	logRequests     bool
	shutdownTimeout time.Duration
}

func WithPort(port int) Option {
	return func(o *options) { o.port = port }
}

// WithListener serves on lis instead of listening on the configured port.
func WithListener(lis net.Listener) Option {
	return func(o *options) { o.listener = lis }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithReflection(enabled bool) Option {
	return func(o *options) { o.reflection = enabled }
}

// WithLogging logs every unary request through LoggingInterceptor.
func WithLogging(enabled bool) Option {
	return func(o *options) { o.logRequests = enabled }
}

// WithShutdownTimeout bounds the graceful stop; in-flight calls still
// running afterwards are cut off.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) { o.shutdownTimeout = d }
}

// Server is a gRPC server with the standard health service registered.
type Server struct {
	grpcServer      *grpc.Server
	health          *health.Server
	lis             net.Listener
	logger          *zap.Logger
	services        []string
	shutdownTimeout time.Duration
}

// New builds a server and binds its listener.
func New(opts ...Option) (*Server, error) {
	o := &options{
		port:            50051,
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	lis, err := o.listen()
	if err != nil {
		return nil, err
	}

	var serverOpts []grpc.ServerOption
	if o.logRequests {
		serverOpts = append(serverOpts, grpc.ChainUnaryInterceptor(LoggingInterceptor(o.logger)))
	}
	grpcServer := grpc.NewServer(serverOpts...)
	if o.reflection {
		reflection.Register(grpcServer)
	}

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	return &Server{
		grpcServer:      grpcServer,
		health:          hs,
		lis:             lis,
		logger:          o.logger.Named("grpc-server"),
		shutdownTimeout: o.shutdownTimeout,
	}, nil
}

func (o *options) listen() (net.Listener, error) {
	if o.listener != nil {
		return o.listener, nil
	}
	if o.port < 1 || o.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 1 and 65535", o.port)
	}
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", o.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", o.port, err)
	}
	return lis, nil
}

// RegisterServiceWithHealth registers a service and reports it as serving.
func (s *Server) RegisterServiceWithHealth(serviceName string, register func(*grpc.Server)) {
	register(s.grpcServer)
	if serviceName == "" {
		return
	}
	s.health.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	s.services = append(s.services, serviceName)
	s.logger.Info("registered service with health check", zap.String("service", serviceName))
}

// Serve runs the server until ctx is done, then shuts it down within the
// shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("gRPC server starting",
		zap.String("addr", s.lis.Addr().String()),
		zap.Strings("services", s.services))

	errCh := make(chan error, 1)
	go func() { errCh <- s.grpcServer.Serve(s.lis) }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown marks every service not serving and stops gracefully, forcing
// the stop when ctx expires first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info("gRPC server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("forced shutdown due to timeout")
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

// Addr returns the listening address.
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
