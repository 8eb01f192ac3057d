// Package profilepb holds the gRPC contract of the profile service. Messages are
// protobuf well-known types, so no generated code is needed.
package profilepb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "profile.ProfileService"

	fetchProfileIDByEmailMethod = "/" + ServiceName + "/FetchProfileIDByEmail"
	createProfileMethod         = "/" + ServiceName + "/CreateProfile"
	getProfileMethod            = "/" + ServiceName + "/GetProfile"
)

type ProfileServiceClient interface {
	// FetchProfileIDByEmail returns 0 when no profile holds the email.
	FetchProfileIDByEmail(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error)
	CreateProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error)
	GetProfile(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type profileServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewProfileServiceClient(cc grpc.ClientConnInterface) ProfileServiceClient {
	return &profileServiceClient{cc: cc}
}

func (c *profileServiceClient) FetchProfileIDByEmail(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, fetchProfileIDByEmailMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) CreateProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, createProfileMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) GetProfile(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getProfileMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type ProfileServiceServer interface {
	FetchProfileIDByEmail(context.Context, *wrapperspb.StringValue) (*wrapperspb.Int64Value, error)
	CreateProfile(context.Context, *structpb.Struct) (*wrapperspb.Int64Value, error)
	GetProfile(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
}

// UnimplementedProfileServiceServer can be embedded to keep servers forward compatible.
type UnimplementedProfileServiceServer struct{}

func (UnimplementedProfileServiceServer) FetchProfileIDByEmail(context.Context, *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	return nil, status.Error(codes.Unimplemented, "method FetchProfileIDByEmail not implemented")
}
func (UnimplementedProfileServiceServer) CreateProfile(context.Context, *structpb.Struct) (*wrapperspb.Int64Value, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateProfile not implemented")
}
func (UnimplementedProfileServiceServer) GetProfile(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProfile not implemented")
}

func RegisterProfileServiceServer(s grpc.ServiceRegistrar, srv ProfileServiceServer) {
	s.RegisterService(&ProfileService_ServiceDesc, srv)
}

func fetchProfileIDByEmailHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProfileServiceServer).FetchProfileIDByEmail(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fetchProfileIDByEmailMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ProfileServiceServer).FetchProfileIDByEmail(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func createProfileHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProfileServiceServer).CreateProfile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: createProfileMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ProfileServiceServer).CreateProfile(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getProfileHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProfileServiceServer).GetProfile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getProfileMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ProfileServiceServer).GetProfile(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

var ProfileService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProfileServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FetchProfileIDByEmail", Handler: fetchProfileIDByEmailHandler},
		{MethodName: "CreateProfile", Handler: createProfileHandler},
		{MethodName: "GetProfile", Handler: getProfileHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "profile.proto",
}
