package introspect

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/aelexs/tokenkit/internal/authn"
	"github.com/aelexs/tokenkit/internal/errmap"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "tokenkit.v1.TokenService"

// IntrospectMethod is the full method name of TokenService.Introspect.
const IntrospectMethod = "/" + ServiceName + "/Introspect"

// TokenServiceServer is the server API for tokenkit.v1.TokenService.
type TokenServiceServer interface {
	Introspect(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// grpcServer adapts Service to TokenServiceServer.
type grpcServer struct {
	svc *Service
}

// Introspect describes the token named in req. An empty value describes
// the caller's own bearer token.
func (g *grpcServer) Introspect(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	raw := req.GetValue()
	if raw == "" {
		raw = authn.RawFromContext(ctx)
	}
	doc, err := g.svc.Introspect(ctx, raw)
	if err != nil {
		return nil, errmap.ToGRPCError(err)
	}
	return doc, nil
}

func introspectHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TokenServiceServer).Introspect(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: IntrospectMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TokenServiceServer).Introspect(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// tokenServiceDesc describes TokenService using well-known types only, so
// no generated stubs are needed.
var tokenServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TokenServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Introspect", Handler: introspectHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterGRPC registers TokenService on r.
func (s *Service) RegisterGRPC(r grpc.ServiceRegistrar) {
	r.RegisterService(&tokenServiceDesc, &grpcServer{svc: s})
}

// IntrospectClient calls TokenService.Introspect over conn.
func IntrospectClient(ctx context.Context, conn grpc.ClientConnInterface, raw string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, IntrospectMethod, wrapperspb.String(raw), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
