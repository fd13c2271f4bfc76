package keywords

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ErrResourceUnavailable marks a tokenizer or stop-word source that cannot
// serve. The extractor recovers from it and never returns it.
var ErrResourceUnavailable = errors.New("nlp resource unavailable")

//go:embed data/english.txt
var englishCorpus string

// StopWords supplies the stop-word set for one language.
type StopWords interface {
	StopWords() (map[string]struct{}, error)
}

// fallbackStopWords is the minimal English set used when the configured
// source cannot be loaded.
var fallbackStopWords = newSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
	"is", "are", "was", "were", "be", "been", "being", "have", "has", "had", "do", "does", "did",
	"will", "would", "could", "should", "may", "might", "must", "can",
	"this", "that", "these", "those",
	"i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them",
)

var (
	englishOnce sync.Once
	englishSet  map[string]struct{}
	englishErr  error
)

// EnglishStopWords is the English corpus compiled into the binary.
type EnglishStopWords struct{}

func (EnglishStopWords) StopWords() (map[string]struct{}, error) {
	englishOnce.Do(func() {
		englishSet, englishErr = parseStopWords(strings.NewReader(englishCorpus))
	})
	return englishSet, englishErr
}

// FileStopWords loads a newline separated list; lines starting with # are
// comments. The file is read once and cached.
type FileStopWords struct {
	Path string

	once   sync.Once
	loaded map[string]struct{}
	err    error
}

func NewFileStopWords(path string) *FileStopWords {
	return &FileStopWords{Path: path}
}

func (f *FileStopWords) StopWords() (map[string]struct{}, error) {
	f.once.Do(func() {
		file, err := os.Open(f.Path)
		if err != nil {
			f.err = fmt.Errorf("%w: stop words %q: %v", ErrResourceUnavailable, f.Path, err)
			return
		}
		defer file.Close()

		f.loaded, f.err = parseStopWords(file)
	})
	return f.loaded, f.err
}

func parseStopWords(r io.Reader) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: empty stop-word list", ErrResourceUnavailable)
	}
	return set, nil
}

func newSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
