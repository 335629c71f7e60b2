package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	// Generate many IDs and verify they're unique
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		id, err := Generate("test")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"bar", "bar"},
		{"ingredient", "ing"},
		{"cocktail", "cktl"},
		{"taxonomy", "tax"},
		{"tag", "tag"},
		{"image", "img"},
		{"user", "user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Generate(tt.prefix)
			require.NoError(t, err)

			// Should start with prefix followed by hyphen
			assert.True(t, strings.HasPrefix(id, tt.prefix+"-"))

			// NanoID portion should be 21 characters
			assert.Len(t, id, len(tt.prefix)+1+21)
		})
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		id := MustGenerate("bar")
		assert.True(t, strings.HasPrefix(id, "bar-"))
	})
}

func TestSuffix(t *testing.T) {
	s, err := Suffix(6)
	require.NoError(t, err)
	assert.Len(t, s, 6)

	// Two suffixes should (overwhelmingly) differ.
	s2, err := Suffix(6)
	require.NoError(t, err)
	assert.NotEqual(t, s, s2)
}
