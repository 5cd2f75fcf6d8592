package entity

import "time"

// PasscodeEmail is the data rendered into the passcode email.
type PasscodeEmail struct {
	Identity  string
	Code      string
	ExpiresAt time.Time
	Minutes   int
	AppName   string
	Year      string
}
