package token

import (
	"strings"

	"github.com/aelexs/tokenkit/internal/domain"
)

// ParseAccount returns the account claim.
func ParseAccount(t *Token) string {
	return t.Body.Account
}

// ParseScopes splits the scope claim on single spaces. A missing scope
// yields an empty, non-nil slice.
func ParseScopes(t *Token) []string {
	if t.Body.Scope == "" {
		return []string{}
	}
	return strings.Split(t.Body.Scope, " ")
}

// ParseEnv returns the env claim.
func ParseEnv(t *Token) string {
	return t.Body.Env
}

// ParseOrganization returns the organization claim as decoded; nil when absent.
func ParseOrganization(t *Token) *Organization {
	return t.Body.Organization
}

// IsPasswordToken reports whether the token came from the password grant.
func IsPasswordToken(t *Token) bool {
	return t.Body.Grant == domain.GrantPassword
}
