package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeGenerator_Shape(t *testing.T) {
	g := NewSecureCodeGenerator()

	code, err := g.Generate()
	require.NoError(t, err)
	assert.Len(t, code, 12)
	assert.True(t, strings.HasPrefix(code, "XTG-"))
}

func TestCodeGenerator_Charset(t *testing.T) {
	g := NewSecureCodeGenerator()

	for i := 0; i < 100; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		for _, r := range code[len(codePrefix):] {
			assert.Contains(t, codeAlphabet, string(r), "code=%s", code)
		}
		// Ambiguous glyphs never appear.
		assert.NotContains(t, code[len(codePrefix):], "0")
		assert.NotContains(t, code[len(codePrefix):], "O")
		assert.NotContains(t, code[len(codePrefix):], "1")
		assert.NotContains(t, code[len(codePrefix):], "I")
	}
}

func TestCodeGenerator_NoObviousRepeats(t *testing.T) {
	g := NewSecureCodeGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %s after %d draws", code, i)
		seen[code] = true
	}
}
