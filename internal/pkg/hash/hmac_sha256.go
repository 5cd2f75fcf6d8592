package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 produces lowercase hex HMAC-SHA256 digests under a fixed key.
type HMACSHA256 struct {
	key []byte
}

// NewHMACSHA256 returns a keyed hasher.
func NewHMACSHA256(key string) *HMACSHA256 {
	return &HMACSHA256{key: []byte(key)}
}

// Hash returns the hex digest of str.
func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	sum := s.sum(str)
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	return out, nil
}

// Verify reports whether hashed is the hex digest of str. Malformed hex never
// matches; the comparison itself runs in constant time.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	mac, err := hex.DecodeString(hashed)
	if err != nil {
		return false
	}
	return hmac.Equal(mac, s.sum(str))
}

func (s *HMACSHA256) sum(str string) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(str))
	return mac.Sum(nil)
}
