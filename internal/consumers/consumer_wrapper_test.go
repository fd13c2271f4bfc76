package consumers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
)

func TestConsumerWrapper_WaitsForHealth(t *testing.T) {
	var started atomic.Bool
	healthy := &atomic.Bool{}

	cw := WrapConsumer(func(context.Context, *kafka.Consumer) {
		started.Store(true)
	}).WithHealthCheck(healthy)
	cw.interval = 5 * time.Millisecond

	done := make(chan struct{})
	go func() {
		cw.Handler()(context.Background(), nil)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, started.Load())

	healthy.Store(true)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer never started")
	}
	assert.True(t, started.Load())
}

func TestConsumerWrapper_StopsOnCancel(t *testing.T) {
	var started atomic.Bool
	cw := WrapConsumer(func(context.Context, *kafka.Consumer) {
		started.Store(true)
	}).WithHealthCheck(&atomic.Bool{})
	cw.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cw.Handler()(ctx, nil)
	assert.False(t, started.Load())
}
