package token

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aelexs/tokenkit/internal/domain"
)

// validMethods is the HMAC family. Any other alg (including "none") fails
// as KindSignatureInvalid.
var validMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

type options struct {
	clock  domain.Clock
	leeway time.Duration
}

// Option tunes how exp/nbf are checked.
type Option func(*options)

// WithClock sets the time source for exp/nbf checks and the expiry window.
func WithClock(c domain.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLeeway tolerates clock skew of d on exp/nbf checks.
func WithLeeway(d time.Duration) Option {
	return func(o *options) {
		o.leeway = d
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: domain.RealClock{}, leeway: domain.DefaultLeeway}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Verify checks tokenString's signature against secret and validates its
// time-based claims. A token without exp is accepted.
func Verify(ctx context.Context, tokenString, secret string, opts ...Option) (*Token, error) {
	return verify(ctx, tokenString, secret, buildOptions(opts))
}

func verify(ctx context.Context, tokenString, secret string, o options) (*Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, &VerificationError{Kind: KindOther, Err: err}
	}
	if secret == "" {
		return nil, &VerificationError{Kind: KindOther, Err: errEmptySecret}
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithValidMethods(validMethods),
		jwt.WithTimeFunc(o.clock.Now),
		jwt.WithLeeway(o.leeway),
	)
	if err != nil {
		return nil, &VerificationError{Kind: classify(err), Err: err}
	}

	return &Token{Header: parsed.Header, Body: claims}, nil
}
