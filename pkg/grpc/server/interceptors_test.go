package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

func TestLoggingInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/TestMethod"}

	tests := []struct {
		name    string
		err     error
		level   zapcore.Level
		entries int
	}{
		{"success", nil, zapcore.DebugLevel, 1},
		{"client fault", status.Error(codes.InvalidArgument, "bad text"), zapcore.WarnLevel, 1},
		{"unavailable", status.Error(codes.Unavailable, "scorer down"), zapcore.WarnLevel, 1},
		{"server fault", status.Error(codes.Internal, "boom"), zapcore.ErrorLevel, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			interceptor := LoggingInterceptor(zap.New(core))

			resp, err := interceptor(context.Background(), "req", info, func(context.Context, any) (any, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return "ok", nil
			})

			if tt.err == nil {
				require.NoError(t, err)
				assert.Equal(t, "ok", resp)
			} else {
				assert.Equal(t, status.Code(tt.err), status.Code(err))
			}
			entries := logs.All()
			require.Len(t, entries, tt.entries)
			assert.Equal(t, tt.level, entries[0].Level)
			assert.Equal(t, "/test.Service/TestMethod", entries[0].ContextMap()["method"])
			assert.Equal(t, "unknown", entries[0].ContextMap()["client_addr"])
		})
	}
}

func TestNewRejectsBadPort(t *testing.T) {
	_, err := New(WithPort(0))

	assert.ErrorContains(t, err, "invalid port 0")
}

func TestServerServeAndShutdown(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server, err := New(
		WithListener(lis),
		WithLogger(zaptest.NewLogger(t)),
		WithLogging(true),
		WithShutdownTimeout(time.Second),
	)
	require.NoError(t, err)
	server.RegisterServiceWithHealth("test.Service", func(*grpc.Server) {})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

	conn, err := grpc.NewClient(server.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	checkCtx, checkCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer checkCancel()
	resp, err := healthpb.NewHealthClient(conn).Check(checkCtx, &healthpb.HealthCheckRequest{Service: "test.Service"}, grpc.WaitForReady(true))
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
