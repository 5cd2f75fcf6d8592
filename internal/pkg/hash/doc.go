// Package hash provides helpers for hashing and verifying secrets.
//
// Bcrypt is used for passwords. HMACSHA256 is used where the hash must be
// deterministic: passcode digests kept in the credential store and payment
// webhook signatures.
package hash
