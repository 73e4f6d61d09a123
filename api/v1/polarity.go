// Package v1 defines the reviewsent.polarity.v1 gRPC service.
//
// The service has a single unary method that takes the text to score as a
// google.protobuf.StringValue and answers with a google.protobuf.DoubleValue
// in [-1, 1].
package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName is the fully qualified service name, also used for health checks.
	ServiceName = "reviewsent.polarity.v1.Polarity"

	Polarity_Score_FullMethodName = "/" + ServiceName + "/Score"
)

// PolarityClient is the client API for the Polarity service.
type PolarityClient interface {
	Score(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.DoubleValue, error)
}

type polarityClient struct {
	cc grpc.ClientConnInterface
}

// NewPolarityClient returns a client bound to cc.
func NewPolarityClient(cc grpc.ClientConnInterface) PolarityClient {
	return &polarityClient{cc}
}

func (c *polarityClient) Score(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.DoubleValue, error) {
	out := new(wrapperspb.DoubleValue)
	if err := c.cc.Invoke(ctx, Polarity_Score_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// PolarityServer is the server API for the Polarity service.
type PolarityServer interface {
	Score(context.Context, *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error)
}

// UnimplementedPolarityServer can be embedded to have forward compatible implementations.
type UnimplementedPolarityServer struct{}

func (UnimplementedPolarityServer) Score(context.Context, *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Score not implemented")
}

// RegisterPolarityServer registers srv on s.
func RegisterPolarityServer(s grpc.ServiceRegistrar, srv PolarityServer) {
	s.RegisterService(&Polarity_ServiceDesc, srv)
}

func _Polarity_Score_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PolarityServer).Score(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Polarity_Score_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PolarityServer).Score(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Polarity_ServiceDesc is the grpc.ServiceDesc for the Polarity service.
var Polarity_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PolarityServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Score",
			Handler:    _Polarity_Score_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: FileName,
}
