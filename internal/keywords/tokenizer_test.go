package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordTokenizer(t *testing.T) {
	tokens, err := WordTokenizer{}.Tokenize("hello, world! it's 2024")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", ",", "world", "!", "it", "'s", "2024"}, tokens)
}

func TestWordTokenizer_Unicode(t *testing.T) {
	tokens, err := WordTokenizer{}.Tokenize("café déjà vu")
	require.NoError(t, err)
	assert.Equal(t, []string{"café", "déjà", "vu"}, tokens)
}

func TestWordTokenizer_KeepsHyphenatedCompounds(t *testing.T) {
	tokens, err := WordTokenizer{}.Tokenize("a well-known, state-of-the-art tool - really -fast")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "well-known", ",", "state-of-the-art", "tool", "-", "really", "-", "fast"}, tokens)
}

func TestWhitespaceTokenizer(t *testing.T) {
	tokens, err := WhitespaceTokenizer{}.Tokenize("  hello,  world!\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello,", "world!"}, tokens)
}
