package errmap

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aelexs/tokenkit/internal/domain"
)

// HTTPError represents an HTTP error response.
type HTTPError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e HTTPError) Error() string {
	return e.Message
}

// httpMapping defines a domain error to HTTP status/code mapping.
type httpMapping struct {
	err        error
	statusCode int
	code       string
}

// httpMappings maps domain errors to HTTP status codes and error codes.
// Order matters: first match wins (via errors.Is). ErrTokenExpired must
// precede ErrInvalidToken because an expired token matches both.
var httpMappings = []httpMapping{
	// Auth errors (401)
	{domain.ErrMissingToken, http.StatusUnauthorized, "UNAUTHENTICATED"},
	{domain.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
	{domain.ErrTokenWillExpire, http.StatusUnauthorized, "TOKEN_WILL_EXPIRE"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHENTICATED"},

	// Permission errors (403)
	{domain.ErrInsufficientScope, http.StatusForbidden, "INSUFFICIENT_SCOPE"},
	{domain.ErrGrantNotAllowed, http.StatusForbidden, "GRANT_NOT_ALLOWED"},

	// Validation errors (400)
	{domain.ErrInvalidInput, http.StatusBadRequest, "INVALID_ARGUMENT"},

	// Availability
	{domain.ErrUnavailable, http.StatusServiceUnavailable, "UNAVAILABLE"},
}

// ToHTTPError converts a domain error to an HTTP error.
func ToHTTPError(err error) HTTPError {
	if err == nil {
		return HTTPError{StatusCode: http.StatusOK}
	}
	for _, m := range httpMappings {
		if errors.Is(err, m.err) {
			return HTTPError{StatusCode: m.statusCode, Code: m.code, Message: err.Error()}
		}
	}
	// Never expose internal error details to clients
	return HTTPError{StatusCode: http.StatusInternalServerError, Code: "INTERNAL", Message: "internal error"}
}

// retryAfterSeconds is advertised on responses for transient failures.
const retryAfterSeconds = "1"

// WriteHTTPError writes err as a JSON body with the mapped status code.
// Authentication and permission failures carry an RFC 6750 challenge;
// transient failures carry Retry-After.
func WriteHTTPError(w http.ResponseWriter, err error) {
	httpErr := ToHTTPError(err)
	switch {
	case domain.IsUnauthenticated(err):
		w.Header().Set("WWW-Authenticate", `Bearer realm="tokenkit"`)
	case domain.IsPermissionDenied(err):
		w.Header().Set("WWW-Authenticate", `Bearer realm="tokenkit", error="insufficient_scope"`)
	case domain.IsRetryable(err):
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.StatusCode)
	_ = json.NewEncoder(w).Encode(httpErr)
}
