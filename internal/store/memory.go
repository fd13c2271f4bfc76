package store

import (
	"context"
	"slices"
	"sync"

	"github.com/spacesedan/sentidash/internal/models"
)

type MemoryStore struct {
	mu      sync.RWMutex
	results []models.SentimentResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, results ...models.SentimentResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range results {
		r.Keywords = slices.Clone(r.Keywords)
		s.results = append(s.results, r)
	}
	return nil
}

// All returns a copy in insertion order.
func (s *MemoryStore) All(_ context.Context) ([]models.SentimentResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SentimentResult, len(s.results))
	for i, r := range s.results {
		r.Keywords = slices.Clone(r.Keywords)
		out[i] = r
	}
	return out, nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results), nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
