package account

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfirmationTokenShape(t *testing.T) {
	token := NewConfirmationToken()
	assert.Len(t, token, 60)

	for _, r := range token {
		assert.True(t, strings.ContainsRune(tokenAlphabet, r), "unexpected rune %q", r)
	}
}

func TestNewConfirmationTokenIsRandom(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		token := NewConfirmationToken()
		assert.False(t, seen[token], "token repeated")
		seen[token] = true
	}
}
