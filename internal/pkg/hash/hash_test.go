package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256("whsec_test")

	got, err := h.Hash("1700000000.{}")
	require.NoError(t, err)
	assert.Len(t, got, 64)
	assert.Equal(t, strings.ToLower(string(got)), string(got))

	again, _ := h.Hash("1700000000.{}")
	assert.Equal(t, got, again)

	assert.True(t, h.Verify(string(got), "1700000000.{}"))
	assert.True(t, h.Verify(strings.ToUpper(string(got)), "1700000000.{}"))
	assert.False(t, h.Verify(string(got), "1700000001.{}"))
	assert.False(t, h.Verify("not-hex", "1700000000.{}"))
	assert.False(t, NewHMACSHA256("other").Verify(string(got), "1700000000.{}"))
}

func TestBcrypt(t *testing.T) {
	b := NewBcrypt(bcrypt.MinCost, "pepper")

	hashed, err := b.Hash("s3cret-pass")
	require.NoError(t, err)

	assert.True(t, b.Verify(string(hashed), "s3cret-pass"))
	assert.False(t, b.Verify(string(hashed), "wrong"))
	assert.False(t, NewBcrypt(bcrypt.MinCost, "").Verify(string(hashed), "s3cret-pass"))
	assert.False(t, NewBcrypt(bcrypt.MinCost, "other").Verify(string(hashed), "s3cret-pass"))
}

func TestBcrypt_LongPassphrase(t *testing.T) {
	b := NewBcrypt(bcrypt.MinCost, "pepper")
	prefix := strings.Repeat("a", 80)

	hashed, err := b.Hash(prefix + "-one")
	require.NoError(t, err)

	assert.True(t, b.Verify(string(hashed), prefix+"-one"))
	assert.False(t, b.Verify(string(hashed), prefix+"-two"))
}

func TestBcrypt_NeedsRehash(t *testing.T) {
	low := NewBcrypt(bcrypt.MinCost, "")
	hashed, err := low.Hash("s3cret-pass")
	require.NoError(t, err)

	assert.False(t, low.NeedsRehash(string(hashed)))
	assert.True(t, NewBcrypt(bcrypt.MinCost+1, "").NeedsRehash(string(hashed)))
	assert.True(t, low.NeedsRehash("plain"))
	assert.Equal(t, bcrypt.DefaultCost, NewBcrypt(0, "").cost)
}
