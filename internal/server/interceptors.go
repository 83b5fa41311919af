package server

import (
	"context"

	"google.golang.org/grpc"
)

// Interceptors is a late-bound gRPC interceptor chain. The server is built
// with the chain before Setup runs; Setup appends to it. Appending after
// serving has started is not supported.
type Interceptors struct {
	unaryChain  []grpc.UnaryServerInterceptor
	streamChain []grpc.StreamServerInterceptor
}

// AddUnary appends unary interceptors.
func (i *Interceptors) AddUnary(is ...grpc.UnaryServerInterceptor) {
	i.unaryChain = append(i.unaryChain, is...)
}

// AddStream appends stream interceptors.
func (i *Interceptors) AddStream(is ...grpc.StreamServerInterceptor) {
	i.streamChain = append(i.streamChain, is...)
}

func (i *Interceptors) unary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	h := handler
	for j := len(i.unaryChain) - 1; j >= 0; j-- {
		next, ic := h, i.unaryChain[j]
		h = func(ctx context.Context, req any) (any, error) {
			return ic(ctx, req, info, next)
		}
	}
	return h(ctx, req)
}

func (i *Interceptors) stream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	h := handler
	for j := len(i.streamChain) - 1; j >= 0; j-- {
		next, ic := h, i.streamChain[j]
		h = func(srv any, ss grpc.ServerStream) error {
			return ic(srv, ss, info, next)
		}
	}
	return h(srv, ss)
}
