package token

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aelexs/tokenkit/internal/domain"
)

// WillExpire verifies the token and then reports, as an *ExpiryError,
// whether it expires within the given window: exp - within <= now.
// Verification failures are returned unchanged. Tokens without exp never
// expire.
func WillExpire(ctx context.Context, tokenString, secret string, within time.Duration, opts ...Option) error {
	o := buildOptions(opts)

	tok, err := verify(ctx, tokenString, secret, o)
	if err != nil {
		return err
	}

	if tok.Body.ExpiresAt == nil {
		return nil
	}

	expiresAt := preciseExpiry(tokenString, tok.Body.ExpiresAt.Time)
	if !expiresAt.Add(-within).After(o.clock.Now()) {
		return &ExpiryError{ExpiresAt: expiresAt, Within: within}
	}

	return nil
}

// preciseExpiry re-reads exp from an already verified token. NumericDate
// truncates to jwt.TimePrecision, which would shift a fractional exp by up
// to a second.
func preciseExpiry(tokenString string, fallback time.Time) time.Time {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return fallback
	}
	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return fallback
	}

	var body struct {
		Exp json.Number `json:"exp"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Exp == "" {
		return fallback
	}
	sec, err := body.Exp.Float64()
	if err != nil {
		return fallback
	}
	return domain.FromEpochSeconds(sec)
}
