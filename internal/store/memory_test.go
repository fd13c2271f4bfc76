package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/spacesedan/sentidash/internal/clients"
	"github.com/spacesedan/sentidash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(text string) models.SentimentResult {
	return models.SentimentResult{
		Text:      text,
		Sentiment: models.LabelNeutral,
		Keywords:  []string{text},
		Source:    "test",
		Date:      "N/A",
	}
}

func TestMemoryStore_AppendAllClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Append(ctx, row("a"), row("b")))
	require.NoError(t, s.Append(ctx, row("c")))

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Text)
	assert.Equal(t, "b", all[1].Text)
	assert.Equal(t, "c", all[2].Text)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, s.Clear(ctx))
	all, err = s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	n, err = s.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, s.Ping(ctx))
}

func TestMemoryStore_RowsAreIsolatedFromCallers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := row("a")
	require.NoError(t, s.Append(ctx, in))
	in.Keywords[0] = "mutated"

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, all[0].Keywords)

	all[0].Keywords[0] = "mutated again"
	all[0].Text = "changed"

	again, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Text)
	assert.Equal(t, []string{"a"}, again[0].Keywords)
}

func TestMemoryStore_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append(ctx, row(fmt.Sprintf("r%d", i)))
		}(i)
	}
	wg.Wait()

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}

func TestOpen(t *testing.T) {
	s, closeFn, err := Open("memory", clients.ValkeyOptions{}, "s1")
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &MemoryStore{}, s)

	_, _, err = Open("postgres", clients.ValkeyOptions{}, "s1")
	assert.Error(t, err)
}
