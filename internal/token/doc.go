// Package token verifies HMAC-signed JWT bearer tokens against a shared
// secret and reads the platform claims (account, scope, env, organization,
// grant) from the verified payload.
//
// Everything here is a free function with no package state. The secret is
// supplied per call and never retained.
//
//	tok, err := token.Verify(ctx, token.ParseTokenFromAuthorization(h), secret)
//	if err != nil {
//		// *VerificationError; errors.Is(err, domain.ErrInvalidToken) is true
//	}
//	scopes := token.ParseScopes(tok)
//
// Accessors assume a verified token and do not guard against nil.
package token
