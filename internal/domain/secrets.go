package domain

import "log/slog"

const redacted = "[REDACTED]"

// SecretString wraps the shared signing secret and other sensitive strings.
// Formatting and slog output always print a placeholder.
type SecretString string

// String returns a redacted placeholder, never the actual value.
func (s SecretString) String() string {
	return redacted
}

// GoString keeps %#v from printing the value.
func (s SecretString) GoString() string {
	return redacted
}

// LogValue implements slog.LogValuer.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// Expose returns the actual secret value. Only token verification should
// need it.
func (s SecretString) Expose() string {
	return string(s)
}

// IsEmpty returns true if the secret is empty.
func (s SecretString) IsEmpty() bool {
	return len(s) == 0
}

var _ slog.LogValuer = SecretString("")
