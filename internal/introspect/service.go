// Package introspect exposes the claims of an authenticated bearer token
// over HTTP (grpc-gateway runtime mux) and gRPC.
package introspect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/aelexs/tokenkit/internal/authn"
	"github.com/aelexs/tokenkit/internal/domain"
	"github.com/aelexs/tokenkit/internal/token"
)

// Service answers introspection and expiry questions about tokens.
type Service struct {
	auth          *authn.Authenticator
	defaultWindow time.Duration
	openAPI       []byte
}

// Config configures a Service.
type Config struct {
	Authenticator *authn.Authenticator
	ExpiryWindow  time.Duration // default for /v1/token/expiry; zero is a valid window
	OpenAPI       []byte        // served at /openapi.json when non-empty
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	return &Service{
		auth:          cfg.Authenticator,
		defaultWindow: cfg.ExpiryWindow,
		openAPI:       cfg.OpenAPI,
	}
}

// Describe flattens tok into the introspection document shared by both
// transports.
func Describe(tok *token.Token) *structpb.Struct {
	scopes := token.ParseScopes(tok)
	scopeValues := make([]*structpb.Value, 0, len(scopes))
	for _, s := range scopes {
		scopeValues = append(scopeValues, structpb.NewStringValue(s))
	}

	organization := structpb.NewNullValue()
	if org := token.ParseOrganization(tok); org != nil {
		organization = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"href":    structpb.NewStringValue(org.Href),
			"nameKey": structpb.NewStringValue(org.NameKey),
		}})
	}

	expiresAt := structpb.NewNullValue()
	if exp := tok.Body.ExpiresAt; exp != nil {
		expiresAt = structpb.NewStringValue(exp.UTC().Format(time.RFC3339))
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"account":        structpb.NewStringValue(token.ParseAccount(tok)),
		"scopes":         structpb.NewListValue(&structpb.ListValue{Values: scopeValues}),
		"env":            structpb.NewStringValue(token.ParseEnv(tok)),
		"organization":   organization,
		"password_grant": structpb.NewBoolValue(token.IsPasswordToken(tok)),
		"expires_at":     expiresAt,
	}}
}

// Introspect verifies raw and describes it.
func (s *Service) Introspect(ctx context.Context, raw string) (*structpb.Struct, error) {
	tok, err := token.Verify(ctx, raw, s.auth.Secret().Expose(), s.auth.Options()...)
	if err != nil {
		return nil, err
	}
	return Describe(tok), nil
}

// WillExpire reports whether raw expires within the given window.
func (s *Service) WillExpire(ctx context.Context, raw string, within time.Duration) (bool, error) {
	if within < 0 || within > domain.MaxExpiryWindow {
		return false, fmt.Errorf("window %s outside [0, %s]: %w", within, domain.MaxExpiryWindow, domain.ErrInvalidInput)
	}

	err := token.WillExpire(ctx, raw, s.auth.Secret().Expose(), within, s.auth.Options()...)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, domain.ErrTokenWillExpire):
		return true, nil
	default:
		return false, err
	}
}
