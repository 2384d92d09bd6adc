// Package authv1 declares the taskboard.auth.v1 gRPC services using protobuf well-known types
// as messages.
package authv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ProfileServiceName       = "taskboard.auth.v1.ProfileService"
	GetProfileFullMethodName = "/" + ProfileServiceName + "/GetProfile"
)

// Profile fields carried in the GetProfile response struct.
const (
	ProfileFieldID          = "id"
	ProfileFieldEmail       = "email"
	ProfileFieldDisplayName = "displayName"
	ProfileFieldPhone       = "phone"
)

// ProfileServiceServer is the server API for ProfileService.
type ProfileServiceServer interface {
	// GetProfile returns the profile of the caller identified by the bearer token in the metadata.
	GetProfile(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
}

// ProfileServiceClient is the client API for ProfileService.
type ProfileServiceClient interface {
	GetProfile(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type profileServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewProfileServiceClient(cc grpc.ClientConnInterface) ProfileServiceClient {
	return &profileServiceClient{cc: cc}
}

func (c *profileServiceClient) GetProfile(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetProfileFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterProfileServiceServer registers srv on s.
func RegisterProfileServiceServer(s grpc.ServiceRegistrar, srv ProfileServiceServer) {
	s.RegisterService(&ProfileServiceDesc, srv)
}

// ProfileServiceDesc is the grpc.ServiceDesc for ProfileService.
var ProfileServiceDesc = grpc.ServiceDesc{
	ServiceName: ProfileServiceName,
	HandlerType: (*ProfileServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetProfile",
			Handler:    getProfileHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taskboard/auth/v1/profile.proto",
}

func getProfileHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProfileServiceServer).GetProfile(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetProfileFullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProfileServiceServer).GetProfile(ctx, req.(*emptypb.Empty))
	}

	return interceptor(ctx, in, info, handler)
}
