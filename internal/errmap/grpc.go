// Package errmap provides wire protocol mappers for domain errors.
// Every domain error has an explicit gRPC and HTTP mapping.
package errmap

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aelexs/tokenkit/internal/domain"
)

// grpcMappings maps domain errors to gRPC status codes.
// Order matters: first match wins (via errors.Is).
//
// Mapping follows gRPC status codes reference:
// https://grpc.github.io/grpc/core/md_doc_statuscodes.html
var grpcMappings = []struct {
	err  error
	code codes.Code
}{
	// Auth errors
	{domain.ErrUnauthorized, codes.Unauthenticated},
	{domain.ErrMissingToken, codes.Unauthenticated},
	{domain.ErrInvalidToken, codes.Unauthenticated},
	{domain.ErrTokenExpired, codes.Unauthenticated},
	{domain.ErrTokenWillExpire, codes.Unauthenticated},

	// Permission errors
	{domain.ErrInsufficientScope, codes.PermissionDenied},
	{domain.ErrGrantNotAllowed, codes.PermissionDenied},

	// Validation errors
	{domain.ErrInvalidInput, codes.InvalidArgument},

	// Availability
	{domain.ErrUnavailable, codes.Unavailable},
}

// ToGRPCStatus converts a domain error to a gRPC status.
// The returned status can be sent directly to gRPC clients.
func ToGRPCStatus(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	for _, m := range grpcMappings {
		if errors.Is(err, m.err) {
			return status.New(m.code, err.Error())
		}
	}
	// Never expose internal error details to clients
	return status.New(codes.Internal, "internal error")
}

// ToGRPCError converts a domain error to a gRPC error (implements error interface).
func ToGRPCError(err error) error {
	return ToGRPCStatus(err).Err()
}
