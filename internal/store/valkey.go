package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/sentidash/internal/clients"
	"github.com/spacesedan/sentidash/internal/models"
	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_RESULTS_KEY_PREFIX = "sentidash:results:"
	VALKEY_RESULTS_TTL        = 7 * 24 * time.Hour
	valkeyRetries             = 3
)

type valkeyCommander interface {
	Client() valkey.Client
	DoWithRetry(ctx context.Context, retries int, build func(valkey.Client) valkey.Completed) valkey.ValkeyResult
}

// ValkeyStore keeps a session's rows as a Valkey list of JSON documents.
type ValkeyStore struct {
	vc  valkeyCommander
	key string
}

func NewValkeyStore(vc *clients.ValkeyClient, sessionID string) *ValkeyStore {
	return &ValkeyStore{vc: vc, key: SessionKey(sessionID)}
}

func SessionKey(sessionID string) string {
	if sessionID == "" {
		sessionID = "default"
	}
	return VALKEY_RESULTS_KEY_PREFIX + sessionID
}

// Append pushes rows exactly once. RPUSH is not idempotent, so a lost reply
// is reported as an error instead of being resent; only the TTL refresh is
// retried.
func (s *ValkeyStore) Append(ctx context.Context, results ...models.SentimentResult) error {
	if len(results) == 0 {
		return nil
	}

	encoded, err := EncodeRows(results)
	if err != nil {
		return err
	}

	push := s.vc.DoWithRetry(ctx, 1, func(c valkey.Client) valkey.Completed {
		return c.B().Rpush().Key(s.key).Element(encoded...).Build()
	})
	if err := push.Error(); err != nil {
		return fmt.Errorf("[ValkeyStore] failed to append results: %w", err)
	}

	expire := s.vc.DoWithRetry(ctx, valkeyRetries, func(c valkey.Client) valkey.Completed {
		return c.B().Expire().Key(s.key).Seconds(int64(VALKEY_RESULTS_TTL.Seconds())).Build()
	})
	if err := expire.Error(); err != nil {
		slog.Warn("[ValkeyStore] Failed to refresh results TTL",
			slog.String("key", s.key),
			slog.String("error", err.Error()))
	}

	slog.Debug("[ValkeyStore] Appended results",
		slog.String("key", s.key),
		slog.Int("count", len(results)))
	return nil
}

func (s *ValkeyStore) All(ctx context.Context) ([]models.SentimentResult, error) {
	res := s.vc.DoWithRetry(ctx, valkeyRetries, func(c valkey.Client) valkey.Completed {
		return c.B().Lrange().Key(s.key).Start(0).Stop(-1).Build()
	})
	values, err := res.AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return []models.SentimentResult{}, nil
		}
		return nil, fmt.Errorf("[ValkeyStore] failed to read results: %w", err)
	}
	return DecodeRows(values)
}

func (s *ValkeyStore) Len(ctx context.Context) (int, error) {
	res := s.vc.DoWithRetry(ctx, valkeyRetries, func(c valkey.Client) valkey.Completed {
		return c.B().Llen().Key(s.key).Build()
	})
	n, err := res.AsInt64()
	if err != nil {
		return 0, fmt.Errorf("[ValkeyStore] failed to count results: %w", err)
	}
	return int(n), nil
}

func (s *ValkeyStore) Clear(ctx context.Context) error {
	res := s.vc.DoWithRetry(ctx, valkeyRetries, func(c valkey.Client) valkey.Completed {
		return c.B().Del().Key(s.key).Build()
	})
	if err := res.Error(); err != nil {
		return fmt.Errorf("[ValkeyStore] failed to clear results: %w", err)
	}
	slog.Info("[ValkeyStore] Cleared session results", slog.String("key", s.key))
	return nil
}

func (s *ValkeyStore) Ping(ctx context.Context) error {
	c := s.vc.Client()
	return c.Do(ctx, c.B().Ping().Build()).Error()
}

// EncodeRows serializes rows to the JSON documents stored in the list.
func EncodeRows(results []models.SentimentResult) ([]string, error) {
	out := make([]string, 0, len(results))
	for _, r := range results {
		if r.Keywords == nil {
			r.Keywords = []string{}
		}
		data, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("[ValkeyStore] failed to encode result: %w", err)
		}
		out = append(out, string(data))
	}
	return out, nil
}

func DecodeRows(values []string) ([]models.SentimentResult, error) {
	out := make([]models.SentimentResult, 0, len(values))
	for i, v := range values {
		var r models.SentimentResult
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, fmt.Errorf("[ValkeyStore] corrupt result at index %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}
