package keywords

import (
	"regexp"
	"strings"
)

type Tokenizer interface {
	Tokenize(text string) ([]string, error)
}

// wordPattern separates word runs from punctuation. Hyphenated compounds
// such as "well-known" stay one token; clitics such as "'s" become their own
// tokens.
var wordPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+(?:-[\p{L}\p{M}\p{N}_]+)*|'\p{L}+|[^\s\p{L}\p{M}\p{N}_]`)

// WordTokenizer splits text into word-like spans, detaching punctuation.
type WordTokenizer struct{}

func (WordTokenizer) Tokenize(text string) ([]string, error) {
	return wordPattern.FindAllString(text, -1), nil
}

// WhitespaceTokenizer is the tokenizer of last resort.
type WhitespaceTokenizer struct{}

func (WhitespaceTokenizer) Tokenize(text string) ([]string, error) {
	return strings.Fields(text), nil
}
