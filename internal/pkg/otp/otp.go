package otp

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"strconv"
)

// DefaultDigits is the passcode length used by the step-up flow.
const DefaultDigits = 6

// ErrInvalidDigits is returned when the requested passcode length is unsupported.
var ErrInvalidDigits = errors.New("otp digits must be between 4 and 10")

// Generator produces passcodes.
type Generator interface {
	Generate() (string, error)
}

// Numeric generates fixed-length decimal passcodes.
type Numeric struct {
	digits int
	min    *big.Int
	span   *big.Int
	rand   io.Reader
}

// NewNumeric returns a Numeric generator of the given length.
func NewNumeric(digits int) (*Numeric, error) {
	return newNumeric(digits, rand.Reader)
}

func newNumeric(digits int, r io.Reader) (*Numeric, error) {
	if digits < 4 || digits > 10 {
		return nil, ErrInvalidDigits
	}

	lower := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits-1)), nil)
	upper := new(big.Int).Mul(lower, big.NewInt(10))

	return &Numeric{
		digits: digits,
		min:    lower,
		span:   new(big.Int).Sub(upper, lower),
		rand:   r,
	}, nil
}

// Generate returns a uniformly random passcode.
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(n.rand, n.span)
	if err != nil {
		return "", err
	}

	return v.Add(v, n.min).String(), nil
}

// Digits returns the passcode length.
func (n *Numeric) Digits() int {
	return n.digits
}

// WellFormed reports whether code is exactly digits ASCII decimal characters.
// It does not look at the value, so "000000" is well formed.
func WellFormed(code string, digits int) bool {
	if len(code) != digits {
		return false
	}

	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}

	_, err := strconv.ParseUint(code, 10, 64)
	return err == nil
}
