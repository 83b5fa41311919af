// Package tokentest signs fixture tokens for tests. Production code never
// issues tokens; this exists so verification can be exercised end to end.
package tokentest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aelexs/tokenkit/internal/token"
)

// Secret is a shared secret long enough for every HMAC variant.
const Secret = "tokentest-shared-secret-0123456789-abcdefghijklmnopqrstuvwxyz-ABCDEF"

// Claims returns a fully populated claim set issued at now and expiring
// after ttl.
func Claims(now time.Time, ttl time.Duration) token.Claims {
	return token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "accounts/acc_123",
			Issuer:    "tokentest",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Account: "https://api.example.com/accounts/acc_123",
		Scope:   "read write",
		Env:     "test",
		Organization: &token.Organization{
			Href:    "https://api.example.com/organizations/org_456",
			NameKey: "acme",
		},
		Grant: "password",
	}
}

// Sign signs claims with HS256 and secret. A missing jti is filled with a
// random UUID.
func Sign(t testing.TB, claims token.Claims, secret string) string {
	t.Helper()
	return SignWith(t, jwt.SigningMethodHS256, claims, []byte(secret))
}

// SignWith signs claims with an arbitrary method and key.
func SignWith(t testing.TB, method jwt.SigningMethod, claims token.Claims, key any) string {
	t.Helper()
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}

	signed, err := jwt.NewWithClaims(method, &claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// SignMap signs a raw claim map with HS256, for payloads the Claims struct
// cannot express.
func SignMap(t testing.TB, claims jwt.MapClaims, secret string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
