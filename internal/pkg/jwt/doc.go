// Package jwt issues and validates the signed session token.
//
// A session token carries the signed-in identity and the step_up flag. The flag is
// false after primary sign-in and becomes true only when the token is re-signed
// after a successful passcode verification; re-signing keeps every other claim.
// Revoked token IDs are tracked in a Denylist so sign-out takes effect before expiry.
package jwt
