package consumers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

const healthWaitInterval = 2 * time.Second

// ConsumerWrapper holds a consumer loop back until every dependency it
// relies on reports healthy.
type ConsumerWrapper struct {
	fn       func(ctx context.Context, consumer *kafka.Consumer)
	health   []*atomic.Bool
	interval time.Duration
}

func WrapConsumer(fn func(ctx context.Context, consumer *kafka.Consumer)) ConsumerWrapper {
	return ConsumerWrapper{fn: fn, interval: healthWaitInterval}
}

func (cw ConsumerWrapper) WithHealthCheck(health *atomic.Bool) ConsumerWrapper {
	cw.health = append(cw.health, health)
	return cw
}

func (cw ConsumerWrapper) Handler() func(ctx context.Context, consumer *kafka.Consumer) {
	return func(ctx context.Context, consumer *kafka.Consumer) {
		if !cw.waitHealthy(ctx) {
			return
		}
		cw.fn(ctx, consumer)
	}
}

// waitHealthy blocks until all health flags are set. It returns false if ctx
// ends first.
func (cw ConsumerWrapper) waitHealthy(ctx context.Context) bool {
	ticker := time.NewTicker(cw.interval)
	defer ticker.Stop()

	for !cw.allHealthy() {
		slog.Warn("[ConsumerWrapper] Dependencies unhealthy, delaying consumer start")
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
	return true
}

func (cw ConsumerWrapper) allHealthy() bool {
	for _, h := range cw.health {
		if !h.Load() {
			return false
		}
	}
	return true
}
