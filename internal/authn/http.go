package authn

import (
	"fmt"
	"net/http"

	"github.com/samber/lo"

	"github.com/aelexs/tokenkit/internal/domain"
	"github.com/aelexs/tokenkit/internal/errmap"
	"github.com/aelexs/tokenkit/internal/token"
)

// HTTPMiddleware rejects requests without a valid bearer token with 401.
// Authenticated requests carry the token in their context.
func (a *Authenticator) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, raw, err := a.Authenticate(r.Context(), r.Header.Get("Authorization"), TransportHTTP)
		if err != nil {
			errmap.WriteHTTPError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), tok, raw)))
	})
}

// RequireScopes rejects requests whose token lacks any of scopes with 403.
// It must run behind HTTPMiddleware.
func RequireScopes(scopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := FromContext(r.Context())
			if !ok {
				errmap.WriteHTTPError(w, domain.ErrUnauthorized)
				return
			}
			if err := CheckScopes(tok, scopes...); err != nil {
				errmap.WriteHTTPError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePasswordGrant rejects requests whose token was not issued by a
// password grant with 403. It must run behind HTTPMiddleware.
func RequirePasswordGrant() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := FromContext(r.Context())
			if !ok {
				errmap.WriteHTTPError(w, domain.ErrUnauthorized)
				return
			}
			if !token.IsPasswordToken(tok) {
				errmap.WriteHTTPError(w, fmt.Errorf("grant %q: %w", tok.Body.Grant, domain.ErrGrantNotAllowed))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CheckScopes returns domain.ErrInsufficientScope naming the first scope
// the token does not carry.
func CheckScopes(tok *token.Token, required ...string) error {
	missing := lo.Without(required, token.ParseScopes(tok)...)
	if len(missing) > 0 {
		return fmt.Errorf("scope %q: %w", missing[0], domain.ErrInsufficientScope)
	}
	return nil
}
