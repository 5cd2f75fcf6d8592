// Package otp generates and checks the shape of numeric one-time passcodes.
//
// Passcodes are drawn uniformly from [10^(n-1), 10^n - 1] with crypto/rand, so a
// six digit code is always in [100000, 999999] and never has a leading zero.
// Storage, expiry and single-use checks live with the caller.
package otp
