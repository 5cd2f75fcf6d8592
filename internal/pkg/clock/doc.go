// Package clock provides a tiny time abstraction.
//
// Business code depends on Clocker instead of calling time.Now directly, so
// expirations (passcode TTLs, webhook tolerances, token lifetimes) can be driven
// by a Fake in tests without sleeping.
package clock
