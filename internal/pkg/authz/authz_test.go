package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnforcer(t *testing.T) {
	e, err := NewEnforcer([]string{
		"p, admin, *, *",
		"p, editor, blog:post, write",
		"g, author, editor",
	})
	require.NoError(t, err)

	tests := []struct {
		sub, obj, act string
		want          bool
	}{
		{"admin", "blog:post", "write", true},
		{"admin", "payment:checkout", "refund", true},
		{"editor", "blog:post", "write", true},
		{"author", "blog:post", "write", true},
		{"editor", "blog:post", "delete", false},
		{"customer", "blog:post", "write", false},
	}

	for _, tt := range tests {
		t.Run(tt.sub+"/"+tt.obj+"/"+tt.act, func(t *testing.T) {
			ok, err := e.Enforce(tt.sub, tt.obj, tt.act)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestNewEnforcer_InvalidLine(t *testing.T) {
	for _, line := range []string{"p, admin, blog:post", "x, a, b, c", "p, , blog:post, write"} {
		_, err := NewEnforcer([]string{line})
		assert.ErrorIs(t, err, ErrInvalidPolicy, line)
	}
}

func TestParsePolicies(t *testing.T) {
	rules, err := ParsePolicies([]string{" p, editor ,blog:post, write", "g,author,editor"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"p", "editor", "blog:post", "write"}, {"g", "author", "editor"}}, rules)

	rules, err = ParsePolicies(nil)
	require.NoError(t, err)
	assert.Empty(t, rules)
}
