package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashes account passwords.
//
// With a pepper configured the password is first keyed as
// base64(HMAC-SHA256(pepper, password)) so passphrases of any length stay
// under bcrypt's 72 byte input limit and the pepper never reaches the stored
// hash.
type Bcrypt struct {
	cost   int
	pepper []byte
}

// NewBcrypt returns a bcrypt hasher. A cost outside bcrypt's accepted range
// falls back to bcrypt.DefaultCost.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost, pepper: []byte(pepper)}
}

// Hash returns the bcrypt hash of plaintext.
func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword(h.input(plaintext), h.cost)
}

// Verify reports whether plaintext matches hashed.
func (h *Bcrypt) Verify(hashed, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), h.input(plaintext)) == nil
}

// NeedsRehash reports whether hashed was produced with a different cost than
// the one configured.
func (h *Bcrypt) NeedsRehash(hashed string) bool {
	cost, err := bcrypt.Cost([]byte(hashed))
	return err != nil || cost != h.cost
}

func (h *Bcrypt) input(plaintext string) []byte {
	if len(h.pepper) == 0 {
		return []byte(plaintext)
	}

	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(plaintext))
	sum := mac.Sum(nil)

	out := make([]byte, base64.RawStdEncoding.EncodedLen(len(sum)))
	base64.RawStdEncoding.Encode(out, sum)
	return out
}
