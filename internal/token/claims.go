package token

import "github.com/golang-jwt/jwt/v5"

// Organization is the shape of the "organization" claim.
type Organization struct {
	Href    string `json:"href"`
	NameKey string `json:"nameKey"`
}

// Claims is the decoded payload of a platform access token. Registered
// claims (exp, nbf, iat, sub, ...) come from the embedded RegisteredClaims;
// empty strings and a nil Organization mean the claim was absent.
type Claims struct {
	jwt.RegisteredClaims
	Account      string        `json:"account,omitempty"`
	Scope        string        `json:"scope,omitempty"`
	Env          string        `json:"env,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
	Grant        string        `json:"grant,omitempty"`
}

// Token is a verified JWT: its JOSE header and decoded claims body.
type Token struct {
	Header map[string]any
	Body   Claims
}
