package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aelexs/tokenkit/internal/domain"
)

// Kind classifies why verification failed.
type Kind int

const (
	KindOther Kind = iota
	KindMalformed
	KindSignatureInvalid
	KindExpired
	KindNotValidYet
)

func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindSignatureInvalid:
		return "signature invalid"
	case KindExpired:
		return "expired"
	case KindNotValidYet:
		return "not valid yet"
	default:
		return "other"
	}
}

// VerificationError is returned by Verify (and WillExpire) when a token is
// rejected. Err is the underlying cause, usually a golang-jwt error.
//
// errors.Is(err, domain.ErrInvalidToken) holds for every kind, and
// errors.Is(err, domain.ErrTokenExpired) additionally for KindExpired.
type VerificationError struct {
	Kind Kind
	Err  error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verify token: %s: %v", e.Kind, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches one of the domain sentinels.
func (e *VerificationError) Is(target error) bool {
	switch target {
	case domain.ErrInvalidToken:
		return true
	case domain.ErrTokenExpired:
		return e.Kind == KindExpired
	}
	return false
}

// ExpiryError is returned by WillExpire when a valid token expires within
// the requested window.
type ExpiryError struct {
	ExpiresAt time.Time
	Within    time.Duration
}

func (e *ExpiryError) Error() string {
	return fmt.Sprintf("token will expire at %s (within %s)", e.ExpiresAt.UTC().Format(time.RFC3339), e.Within)
}

// Is matches domain.ErrTokenWillExpire.
func (e *ExpiryError) Is(target error) bool {
	return target == domain.ErrTokenWillExpire
}

var errEmptySecret = errors.New("empty secret")

// classify maps a golang-jwt parse error to a Kind. Signature problems win
// over claim problems; the library only validates claims after the
// signature checks out.
func classify(err error) Kind {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return KindMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return KindSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return KindExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return KindNotValidYet
	default:
		return KindOther
	}
}
