package authn

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/aelexs/tokenkit/internal/errmap"
)

// authorizationFromMetadata returns the first "authorization" metadata value.
func authorizationFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// UnaryServerInterceptor authenticates unary calls from the "authorization"
// metadata. Public methods pass through untouched.
func (a *Authenticator) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if a.isPublic(info.FullMethod) {
			return handler(ctx, req)
		}
		tok, raw, err := a.Authenticate(ctx, authorizationFromMetadata(ctx), TransportGRPC)
		if err != nil {
			return nil, errmap.ToGRPCError(err)
		}
		return handler(NewContext(ctx, tok, raw), req)
	}
}

// StreamServerInterceptor is the streaming counterpart of
// UnaryServerInterceptor.
func (a *Authenticator) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if a.isPublic(info.FullMethod) {
			return handler(srv, ss)
		}
		ctx := ss.Context()
		tok, raw, err := a.Authenticate(ctx, authorizationFromMetadata(ctx), TransportGRPC)
		if err != nil {
			return errmap.ToGRPCError(err)
		}
		return handler(srv, &authenticatedStream{ServerStream: ss, ctx: NewContext(ctx, tok, raw)})
	}
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authenticatedStream) Context() context.Context {
	return s.ctx
}
