package grpcadapter

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "rectangle.v1.RectangleService"

// Full method names.
const (
	DescribeMethod        = "/" + ServiceName + "/Describe"
	CreateRectangleMethod = "/" + ServiceName + "/CreateRectangle"
	GetRectangleMethod    = "/" + ServiceName + "/GetRectangle"
	ListRectanglesMethod  = "/" + ServiceName + "/ListRectangles"
	DeleteRectangleMethod = "/" + ServiceName + "/DeleteRectangle"
)

// RectangleServiceServer is the server API for the rectangle service.
// Requests and responses are google.protobuf.Struct messages; field names match the JSON of the REST API.
type RectangleServiceServer interface {
	Describe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateRectangle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRectangle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRectangles(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteRectangle(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(RectangleServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a server method to grpc.MethodDesc, running the interceptor chain when present.
func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RectangleServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RectangleServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RectangleServiceDesc is the grpc.ServiceDesc for the rectangle service.
var RectangleServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RectangleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Describe",
			Handler:    unaryHandler(DescribeMethod, RectangleServiceServer.Describe),
		},
		{
			MethodName: "CreateRectangle",
			Handler:    unaryHandler(CreateRectangleMethod, RectangleServiceServer.CreateRectangle),
		},
		{
			MethodName: "GetRectangle",
			Handler:    unaryHandler(GetRectangleMethod, RectangleServiceServer.GetRectangle),
		},
		{
			MethodName: "ListRectangles",
			Handler:    unaryHandler(ListRectanglesMethod, RectangleServiceServer.ListRectangles),
		},
		{
			MethodName: "DeleteRectangle",
			Handler:    unaryHandler(DeleteRectangleMethod, RectangleServiceServer.DeleteRectangle),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rectangle/v1/rectangle.proto",
}

// RegisterRectangleServiceServer registers srv on s.
func RegisterRectangleServiceServer(s grpc.ServiceRegistrar, srv RectangleServiceServer) {
	s.RegisterService(&RectangleServiceDesc, srv)
}

// RectangleServiceClient is the client API for the rectangle service.
type RectangleServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRectangleServiceClient creates a client on top of cc.
func NewRectangleServiceClient(cc grpc.ClientConnInterface) *RectangleServiceClient {
	return &RectangleServiceClient{cc: cc}
}

func (c *RectangleServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Describe calls RectangleService.Describe.
func (c *RectangleServiceClient) Describe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, DescribeMethod, in, opts...)
}

// CreateRectangle calls RectangleService.CreateRectangle.
func (c *RectangleServiceClient) CreateRectangle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CreateRectangleMethod, in, opts...)
}

// GetRectangle calls RectangleService.GetRectangle.
func (c *RectangleServiceClient) GetRectangle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, GetRectangleMethod, in, opts...)
}

// ListRectangles calls RectangleService.ListRectangles.
func (c *RectangleServiceClient) ListRectangles(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ListRectanglesMethod, in, opts...)
}

// DeleteRectangle calls RectangleService.DeleteRectangle.
func (c *RectangleServiceClient) DeleteRectangle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, DeleteRectangleMethod, in, opts...)
}
