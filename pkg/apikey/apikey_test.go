package apikey_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gemsimce/pkg/apikey"
)

var keyPattern = regexp.MustCompile(`^sk_[0-9a-f]{64}$`)

func TestGenerate(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 100)
	for range 100 {
		key, err := apikey.Generate()
		require.NoError(t, err)
		assert.Len(t, key, 67)
		assert.Regexp(t, keyPattern, key)
		assert.True(t, apikey.LooksValid(key))

		_, dup := seen[key]
		require.False(t, dup, "duplicate key generated")
		seen[key] = struct{}{}
	}
}

func TestLooksValid(t *testing.T) {
	t.Parallel()
	valid, err := apikey.Generate()
	require.NoError(t, err)

	tests := map[string]bool{
		valid:                   true,
		"":                      false,
		"sk_":                   false,
		"pk_" + valid[3:]:       false,
		valid[:66]:              false,
		valid + "0":             false,
		"sk_" + upper(valid[3:]): false,
	}
	for key, want := range tests {
		assert.Equal(t, want, apikey.LooksValid(key), key)
	}
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
