package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Both services exchange google.protobuf.Struct messages, so the descriptors
// below are written by hand instead of generated.

const (
	AuthServiceName    = "losalerces.auth.v1.AuthService"
	CatalogServiceName = "losalerces.catalog.v1.CatalogService"
)

type AuthServiceServer interface {
	Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	AssignRole(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type CatalogServiceServer interface {
	CreateClient(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetClient(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreateStaff(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetStaff(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

	CreateQuotation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetQuotation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateQuotation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteQuotation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListClientQuotations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	AddProductLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RemoveProductLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	AddStaffLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RemoveStaffLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func unaryHandler[S any](fullMethod string, call func(S, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func method[S any](service, name string, call func(S, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler:    unaryHandler("/"+service+"/"+name, call),
	}
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(AuthServiceName, "Register", AuthServiceServer.Register),
		method(AuthServiceName, "Login", AuthServiceServer.Login),
		method(AuthServiceName, "AssignRole", AuthServiceServer.AssignRole),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "losalerces/auth/v1/auth.proto",
}

var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(CatalogServiceName, "CreateClient", CatalogServiceServer.CreateClient),
		method(CatalogServiceName, "GetClient", CatalogServiceServer.GetClient),
		method(CatalogServiceName, "CreateProduct", CatalogServiceServer.CreateProduct),
		method(CatalogServiceName, "GetProduct", CatalogServiceServer.GetProduct),
		method(CatalogServiceName, "CreateStaff", CatalogServiceServer.CreateStaff),
		method(CatalogServiceName, "GetStaff", CatalogServiceServer.GetStaff),
		method(CatalogServiceName, "CreateQuotation", CatalogServiceServer.CreateQuotation),
		method(CatalogServiceName, "GetQuotation", CatalogServiceServer.GetQuotation),
		method(CatalogServiceName, "UpdateQuotation", CatalogServiceServer.UpdateQuotation),
		method(CatalogServiceName, "DeleteQuotation", CatalogServiceServer.DeleteQuotation),
		method(CatalogServiceName, "ListClientQuotations", CatalogServiceServer.ListClientQuotations),
		method(CatalogServiceName, "AddProductLine", CatalogServiceServer.AddProductLine),
		method(CatalogServiceName, "RemoveProductLine", CatalogServiceServer.RemoveProductLine),
		method(CatalogServiceName, "AddStaffLine", CatalogServiceServer.AddStaffLine),
		method(CatalogServiceName, "RemoveStaffLine", CatalogServiceServer.RemoveStaffLine),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "losalerces/catalog/v1/catalog.proto",
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

// StructClient calls Struct-in/Struct-out unary methods of one service.
type StructClient struct {
	cc      grpc.ClientConnInterface
	service string
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) *StructClient {
	return &StructClient{cc: cc, service: AuthServiceName}
}

func NewCatalogServiceClient(cc grpc.ClientConnInterface) *StructClient {
	return &StructClient{cc: cc, service: CatalogServiceName}
}

func (c *StructClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+c.service+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
