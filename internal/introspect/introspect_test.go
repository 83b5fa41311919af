package introspect_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aelexs/tokenkit/internal/authn"
	"github.com/aelexs/tokenkit/internal/domain"
	"github.com/aelexs/tokenkit/internal/domain/domaintest"
	"github.com/aelexs/tokenkit/internal/introspect"
	"github.com/aelexs/tokenkit/internal/token"
	"github.com/aelexs/tokenkit/internal/token/tokentest"
)

var start = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, clock domain.Clock) (*introspect.Service, *authn.Authenticator) {
	t.Helper()
	auth := authn.New(authn.Config{
		Secret: domain.SecretString(tokentest.Secret),
		Clock:  clock,
	})
	svc := introspect.NewService(introspect.Config{
		Authenticator: auth,
		ExpiryWindow:  5 * time.Minute,
		OpenAPI:       []byte(`{"swagger":"2.0"}`),
	})
	return svc, auth
}

func TestDescribe(t *testing.T) {
	t.Run("fully populated token", func(t *testing.T) {
		tok := &token.Token{Body: tokentest.Claims(start, time.Hour)}

		got := introspect.Describe(tok).AsMap()

		assert.Equal(t, "https://api.example.com/accounts/acc_123", got["account"])
		assert.Equal(t, []any{"read", "write"}, got["scopes"])
		assert.Equal(t, "test", got["env"])
		assert.Equal(t, map[string]any{
			"href":    "https://api.example.com/organizations/org_456",
			"nameKey": "acme",
		}, got["organization"])
		assert.Equal(t, true, got["password_grant"])
		assert.Equal(t, "2026-01-15T13:00:00Z", got["expires_at"])
	})

	t.Run("bare token", func(t *testing.T) {
		got := introspect.Describe(&token.Token{}).AsMap()

		assert.Equal(t, "", got["account"])
		assert.Equal(t, []any{}, got["scopes"])
		assert.Nil(t, got["organization"])
		assert.Nil(t, got["expires_at"])
		assert.Equal(t, false, got["password_grant"])
	})
}

func TestServiceIntrospect(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, domaintest.NewFakeClock(start))

	t.Run("valid token", func(t *testing.T) {
		raw := tokentest.Sign(t, tokentest.Claims(start, time.Hour), tokentest.Secret)

		doc, err := svc.Introspect(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, "test", doc.AsMap()["env"])
	})

	t.Run("invalid token", func(t *testing.T) {
		_, err := svc.Introspect(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}

func TestServiceWillExpire(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, domaintest.NewFakeClock(start))
	raw := tokentest.Sign(t, tokentest.Claims(start, 100*time.Second), tokentest.Secret)

	tests := []struct {
		name    string
		within  time.Duration
		want    bool
		wantErr error
	}{
		{"well before window", 50 * time.Second, false, nil},
		{"zero window", 0, false, nil},
		{"window reaches exp", 100 * time.Second, true, nil},
		{"window past exp", 150 * time.Second, true, nil},
		{"negative window", -time.Second, false, domain.ErrInvalidInput},
		{"window above max", domain.MaxExpiryWindow + time.Second, false, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.WillExpire(ctx, raw, tt.within)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("verification failures surface", func(t *testing.T) {
		_, err := svc.WillExpire(ctx, "x.y.z", time.Minute)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}
