package entity

import "time"

// ConsumeResult is the outcome of a compare-and-delete against the credential store.
type ConsumeResult int

const (
	// ConsumeAbsent means no live passcode exists (never issued, expired, consumed or burned).
	ConsumeAbsent ConsumeResult = iota
	// ConsumeMatched means the digest matched and the passcode was deleted.
	ConsumeMatched
	// ConsumeMismatched means the digest did not match and the attempt was counted.
	ConsumeMismatched
	// ConsumeLocked means this mismatch reached the attempt limit and the passcode was deleted.
	ConsumeLocked
)

func (c ConsumeResult) String() string {
	switch c {
	case ConsumeMatched:
		return "matched"
	case ConsumeMismatched:
		return "mismatched"
	case ConsumeLocked:
		return "locked"
	default:
		return "absent"
	}
}

// Passcode is a freshly issued code. Only the digest of Code is ever stored.
type Passcode struct {
	Identity  string
	Code      string
	ExpiresAt time.Time
}
