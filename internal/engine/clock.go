package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The resolver reads the current year from it for the displayed age, and the
// calendar builder uses it to pick the years of the birthday feed.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
