package utils

import (
	"sync"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchBuffer(t *testing.T) {
	b := NewBatchBuffer[int](3)
	assert.Nil(t, b.GetAndClear())

	b.Add(1)
	b.Add(2)
	assert.False(t, b.Full())
	b.Add(3)
	assert.True(t, b.Full())
	assert.Equal(t, 3, b.Size())

	assert.Equal(t, []int{1, 2, 3}, b.GetAndClear())
	assert.Zero(t, b.Size())
	assert.Nil(t, b.GetAndClear())
}

func TestBatchBuffer_DefaultCapacity(t *testing.T) {
	b := NewBatchBuffer[string](0)
	for i := 0; i < BATCH_SIZE; i++ {
		b.Add("x")
	}
	assert.True(t, b.Full())
}

func TestBatchBuffer_ConcurrentAdd(t *testing.T) {
	b := NewBatchBuffer[int](100)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Add(i)
		}(i)
	}
	wg.Wait()
	assert.Len(t, b.GetAndClear(), 100)
}

func TestMessageTracker(t *testing.T) {
	var tracker MessageTracker
	msg := &kafka.Message{Value: []byte("payload")}

	tracker.Track("req-1", msg)

	got, ok := tracker.Release("req-1")
	require.True(t, ok)
	assert.Same(t, msg, got)

	_, ok = tracker.Release("req-1")
	assert.False(t, ok)
}
