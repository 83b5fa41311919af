package domain

import (
	"math"
	"time"
)

// Clock provides the current time. Token expiry checks read time through
// this interface so tests can pin it.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}

// FromEpochSeconds converts JWT NumericDate seconds to a UTC time.Time,
// keeping any fractional part to microsecond resolution.
func FromEpochSeconds(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	micros := math.Round(frac * 1e6)
	return time.Unix(int64(whole), int64(micros)*int64(time.Microsecond)).UTC()
}

var _ Clock = RealClock{}
