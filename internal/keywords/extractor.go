package keywords

import (
	"log/slog"
	"slices"
	"strings"
	"unicode"
)

type Extractor struct {
	tokenizer Tokenizer
	stopWords StopWords
	logger    *slog.Logger
}

type Option func(*Extractor)

func WithTokenizer(t Tokenizer) Option {
	return func(e *Extractor) { e.tokenizer = t }
}

func WithStopWords(s StopWords) Option {
	return func(e *Extractor) { e.stopWords = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// NewExtractor defaults to WordTokenizer and the embedded English stop words.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		tokenizer: WordTokenizer{},
		stopWords: EnglishStopWords{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns up to k keywords ordered by descending frequency; equal
// counts keep first-occurrence order. k <= 0 yields an empty slice.
func (e *Extractor) Extract(text string, k int) []string {
	if k <= 0 {
		return []string{}
	}

	stop := e.resolveStopWords()
	tokens := e.tokenize(strings.ToLower(text))

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, tok := range tokens {
		if !isAlpha(tok) {
			continue
		}
		if _, ok := stop[tok]; ok {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	return topK(order, counts, k)
}

func (e *Extractor) resolveStopWords() map[string]struct{} {
	if e.stopWords != nil {
		set, err := e.stopWords.StopWords()
		if err == nil {
			return set
		}
		e.logger.Debug("[KeywordExtractor] Stop-word source unavailable, using fallback set",
			slog.String("error", err.Error()))
	}
	return fallbackStopWords
}

func (e *Extractor) tokenize(text string) []string {
	if e.tokenizer != nil {
		tokens, err := e.tokenizer.Tokenize(text)
		if err == nil {
			return tokens
		}
		e.logger.Debug("[KeywordExtractor] Tokenizer unavailable, splitting on whitespace",
			slog.String("error", err.Error()))
	}
	tokens, _ := WhitespaceTokenizer{}.Tokenize(text)
	return tokens
}

// topK ranks order by counts with a stable sort so ties keep insertion order.
func topK(order []string, counts map[string]int, k int) []string {
	ranked := slices.Clone(order)
	slices.SortStableFunc(ranked, func(a, b string) int {
		return counts[b] - counts[a]
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

func isAlpha(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
