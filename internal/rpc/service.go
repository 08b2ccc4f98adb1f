package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "daybook.v1.DayBook"

// Full method names, as seen by interceptors.
const (
	FullMethodSignInAnonymously    = "/" + ServiceName + "/SignInAnonymously"
	FullMethodLinkCredential       = "/" + ServiceName + "/LinkCredential"
	FullMethodSignInWithCredential = "/" + ServiceName + "/SignInWithCredential"
	FullMethodSignOut              = "/" + ServiceName + "/SignOut"
	FullMethodRefreshToken         = "/" + ServiceName + "/RefreshToken"
	FullMethodPing                 = "/" + ServiceName + "/Ping"
	FullMethodDayExists            = "/" + ServiceName + "/DayExists"
	FullMethodUpsertDay            = "/" + ServiceName + "/UpsertDay"
	FullMethodListDays             = "/" + ServiceName + "/ListDays"
)

// DayBookServer is the server API for the DayBook service.
type DayBookServer interface {
	SignInAnonymously(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	LinkCredential(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignInWithCredential(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignOut(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	RefreshToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	DayExists(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
	UpsertDay(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	ListDays(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedDayBookServer can be embedded to have forward compatible implementations.
type UnimplementedDayBookServer struct{}

func (UnimplementedDayBookServer) SignInAnonymously(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SignInAnonymously not implemented")
}
func (UnimplementedDayBookServer) LinkCredential(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method LinkCredential not implemented")
}
func (UnimplementedDayBookServer) SignInWithCredential(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SignInWithCredential not implemented")
}
func (UnimplementedDayBookServer) SignOut(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SignOut not implemented")
}
func (UnimplementedDayBookServer) RefreshToken(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedDayBookServer) Ping(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedDayBookServer) DayExists(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method DayExists not implemented")
}
func (UnimplementedDayBookServer) UpsertDay(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertDay not implemented")
}
func (UnimplementedDayBookServer) ListDays(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListDays not implemented")
}

// unary builds a method handler that decodes Req and dispatches to call,
// going through the server interceptor chain when one is installed.
func unary[Req proto.Message](fullMethod string, newReq func() Req, call func(DayBookServer, context.Context, Req) (any, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DayBookServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DayBookServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func newEmpty() *emptypb.Empty    { return new(emptypb.Empty) }
func newStruct() *structpb.Struct { return new(structpb.Struct) }

// ServiceDesc is the grpc.ServiceDesc for the DayBook service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DayBookServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SignInAnonymously",
			Handler: unary(FullMethodSignInAnonymously, newEmpty, func(s DayBookServer, ctx context.Context, in *emptypb.Empty) (any, error) {
				return s.SignInAnonymously(ctx, in)
			}),
		},
		{
			MethodName: "LinkCredential",
			Handler: unary(FullMethodLinkCredential, newStruct, func(s DayBookServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.LinkCredential(ctx, in)
			}),
		},
		{
			MethodName: "SignInWithCredential",
			Handler: unary(FullMethodSignInWithCredential, newStruct, func(s DayBookServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.SignInWithCredential(ctx, in)
			}),
		},
		{
			MethodName: "SignOut",
			Handler: unary(FullMethodSignOut, newStruct, func(s DayBookServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.SignOut(ctx, in)
			}),
		},
		{
			MethodName: "RefreshToken",
			Handler: unary(FullMethodRefreshToken, newStruct, func(s DayBookServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.RefreshToken(ctx, in)
			}),
		},
		{
			MethodName: "Ping",
			Handler: unary(FullMethodPing, newEmpty, func(s DayBookServer, ctx context.Context, in *emptypb.Empty) (any, error) {
				return s.Ping(ctx, in)
			}),
		},
		{
			MethodName: "DayExists",
			Handler: unary(FullMethodDayExists, newStruct, func(s DayBookServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.DayExists(ctx, in)
			}),
		},
		{
			MethodName: "UpsertDay",
			Handler: unary(FullMethodUpsertDay, newStruct, func(s DayBookServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.UpsertDay(ctx, in)
			}),
		},
		{
			MethodName: "ListDays",
			Handler: unary(FullMethodListDays, newStruct, func(s DayBookServer, ctx context.Context, in *structpb.Struct) (any, error) {
				return s.ListDays(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "daybook/v1/daybook.proto",
}

func RegisterDayBookServer(s grpc.ServiceRegistrar, srv DayBookServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// DayBookClient is the client API for the DayBook service.
type DayBookClient interface {
	SignInAnonymously(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	LinkCredential(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SignInWithCredential(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SignOut(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	RefreshToken(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	DayExists(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	UpsertDay(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ListDays(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type dayBookClient struct {
	cc grpc.ClientConnInterface
}

func NewDayBookClient(cc grpc.ClientConnInterface) DayBookClient {
	return &dayBookClient{cc: cc}
}

func invoke[Resp proto.Message](ctx context.Context, cc grpc.ClientConnInterface, method string, in proto.Message, out Resp, opts []grpc.CallOption) (Resp, error) {
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		var zero Resp
		return zero, err
	}
	return out, nil
}

func (c *dayBookClient) SignInAnonymously(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, FullMethodSignInAnonymously, in, new(structpb.Struct), opts)
}

func (c *dayBookClient) LinkCredential(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, FullMethodLinkCredential, in, new(structpb.Struct), opts)
}

func (c *dayBookClient) SignInWithCredential(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, FullMethodSignInWithCredential, in, new(structpb.Struct), opts)
}

func (c *dayBookClient) SignOut(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke(ctx, c.cc, FullMethodSignOut, in, new(emptypb.Empty), opts)
}

func (c *dayBookClient) RefreshToken(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, FullMethodRefreshToken, in, new(structpb.Struct), opts)
}

func (c *dayBookClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, FullMethodPing, in, new(structpb.Struct), opts)
}

func (c *dayBookClient) DayExists(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	return invoke(ctx, c.cc, FullMethodDayExists, in, new(wrapperspb.BoolValue), opts)
}

func (c *dayBookClient) UpsertDay(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke(ctx, c.cc, FullMethodUpsertDay, in, new(emptypb.Empty), opts)
}

func (c *dayBookClient) ListDays(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, FullMethodListDays, in, new(structpb.Struct), opts)
}
