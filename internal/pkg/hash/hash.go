package hash

// Hash produces and checks digests of secrets (passwords, passcodes, tokens).
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}

var (
	_ Hash = (*Bcrypt)(nil)
	_ Hash = (*HMACSHA256)(nil)
)
