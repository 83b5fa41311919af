package domain

import "errors"

// Sentinel errors for domain error conditions.
// Use errors.Is() for matching - never compare error strings.
var (
	// Authentication errors
	ErrUnauthorized    = errors.New("authentication required")
	ErrMissingToken    = errors.New("bearer token missing")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token has expired")
	ErrTokenWillExpire = errors.New("token will expire")

	// Authorization errors
	ErrInsufficientScope = errors.New("token lacks required scope")
	ErrGrantNotAllowed   = errors.New("token grant type not allowed")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Operational errors
	ErrUnavailable = errors.New("service temporarily unavailable")

	// Configuration errors
	ErrConfigRequired = errors.New("required configuration key missing")
	ErrSecretNotFound = errors.New("shared secret not found")
)

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// clientErrors enumerates all domain errors that represent client-side issues.
var clientErrors = []error{
	ErrUnauthorized,
	ErrMissingToken,
	ErrInvalidToken,
	ErrTokenExpired,
	ErrTokenWillExpire,
	ErrInsufficientScope,
	ErrGrantNotAllowed,
	ErrInvalidInput,
}

// IsClientError returns true if the error represents a client-side issue
// that will not succeed on retry without client-side changes.
func IsClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsUnauthenticated returns true if the caller could not be authenticated.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenWillExpire)
}

// IsPermissionDenied returns true if the error represents a permission issue.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrInsufficientScope) ||
		errors.Is(err, ErrGrantNotAllowed)
}
