package store

import (
	"context"

	"github.com/spacesedan/sentidash/internal/models"
)

// ResultStore holds the analyzed rows of one session. Rows are only ever
// appended; Clear discards all of them at once.
type ResultStore interface {
	Append(ctx context.Context, results ...models.SentimentResult) error
	All(ctx context.Context) ([]models.SentimentResult, error)
	Len(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}
