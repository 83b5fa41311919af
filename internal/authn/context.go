package authn

import (
	"context"

	"github.com/aelexs/tokenkit/internal/token"
)

type contextKey struct{}

type principal struct {
	token *token.Token
	raw   string
}

// NewContext returns a copy of ctx carrying the verified token and the raw
// string it was decoded from.
func NewContext(ctx context.Context, tok *token.Token, raw string) context.Context {
	return context.WithValue(ctx, contextKey{}, principal{token: tok, raw: raw})
}

// FromContext returns the verified token stored by the middleware.
func FromContext(ctx context.Context) (*token.Token, bool) {
	p, ok := ctx.Value(contextKey{}).(principal)
	if !ok || p.token == nil {
		return nil, false
	}
	return p.token, true
}

// RawFromContext returns the raw bearer token stored by the middleware,
// or "" when the request was not authenticated.
func RawFromContext(ctx context.Context) string {
	p, _ := ctx.Value(contextKey{}).(principal)
	return p.raw
}
