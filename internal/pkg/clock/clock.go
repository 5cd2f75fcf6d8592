package clock

import "time"

// Clocker abstracts time so callers can replace real time in tests.
type Clocker interface {
	Now() time.Time
}

// TimeClocker is the production clock, reading the system time in UTC.
type TimeClocker struct{}

// New returns a TimeClocker.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time in UTC.
func (*TimeClocker) Now() time.Time {
	return time.Now().UTC()
}
