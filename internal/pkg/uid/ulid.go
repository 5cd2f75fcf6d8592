package uid

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// ULID generates lexicographically sortable 26 character ids.
type ULID struct{}

// NewULID returns a ULID generator.
func NewULID() *ULID {
	return &ULID{}
}

// Generate returns a new ULID string.
func (*ULID) Generate() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
