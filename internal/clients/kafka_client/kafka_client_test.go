package kafka_client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	responses []error
	calls     int
}

func (r *scriptedReader) ReadMessage(time.Duration) (*kafka.Message, error) {
	i := r.calls
	r.calls++
	if i < len(r.responses) && r.responses[i] != nil {
		return nil, r.responses[i]
	}
	topic := "t"
	return &kafka.Message{TopicPartition: kafka.TopicPartition{Topic: &topic}, Value: []byte("ok")}, nil
}

type scriptedCommitter struct {
	errs  []error
	calls int
	seeks []kafka.TopicPartition
}

func (c *scriptedCommitter) Seek(tp kafka.TopicPartition, _ int) error {
	c.seeks = append(c.seeks, tp)
	return nil
}

func (c *scriptedCommitter) CommitMessage(*kafka.Message) ([]kafka.TopicPartition, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) {
		return nil, c.errs[i]
	}
	return nil, nil
}

func TestNewKafkaConfig(t *testing.T) {
	cfg := NewKafkaConfig("broker:9092", "group")
	assert.Equal(t, KafkaConfig{Broker: "broker:9092", GroupID: "group", Topic: KAFKA_TOPIC_ANALYSIS_REQUEST}, cfg)
}

func TestIterator_IdlePollReturnsNoMessage(t *testing.T) {
	reader := &scriptedReader{responses: []error{
		kafka.NewError(kafka.ErrTimedOut, "timeout", false),
	}}
	it := &KafkaMessageIterator{reader: reader, ctx: context.Background()}

	msg, err := it.Next()
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Equal(t, 1, reader.calls)

	msg, err = it.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), msg.Value)
}

type idleReader struct {
	polls int
}

func (r *idleReader) ReadMessage(time.Duration) (*kafka.Message, error) {
	r.polls++
	return nil, kafka.NewError(kafka.ErrTimedOut, "timeout", false)
}

func TestIterator_IdleTopicDoesNotBlock(t *testing.T) {
	reader := &idleReader{}
	it := &KafkaMessageIterator{reader: reader, ctx: context.Background()}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			msg, err := it.Next()
			assert.NoError(t, err)
			assert.Nil(t, msg)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Next kept polling an idle topic")
	}
	assert.Equal(t, 3, reader.polls)
}

func TestIterator_RetriesThenFails(t *testing.T) {
	errs := make([]error, MAX_RETRIES)
	for i := range errs {
		errs[i] = errors.New("broken")
	}
	it := &KafkaMessageIterator{reader: &scriptedReader{responses: errs}, ctx: context.Background()}

	_, err := it.Next()
	require.Error(t, err)
}

func TestIterator_AllBrokersDown(t *testing.T) {
	down := kafka.NewError(kafka.ErrAllBrokersDown, "down", false)
	reader := &scriptedReader{responses: []error{down}}
	it := &KafkaMessageIterator{reader: reader, ctx: context.Background()}

	_, err := it.Next()
	assert.Equal(t, down, err)
	assert.Equal(t, 1, reader.calls)
}

func TestIterator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	it := &KafkaMessageIterator{reader: &scriptedReader{}, ctx: ctx}

	_, err := it.Next()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIterator_NotInitialized(t *testing.T) {
	_, err := NewKafkaMessageIterator(context.Background(), nil).Next()
	assert.Error(t, err)
}

func TestCommitHandler_RetriesUntilSuccess(t *testing.T) {
	c := &scriptedCommitter{errs: []error{errors.New("busy")}}
	ch := &KafkaCommitHandler{committer: c, ctx: context.Background()}

	require.NoError(t, ch.Commit(&kafka.Message{}))
	assert.Equal(t, 2, c.calls)
}

func TestCommitHandler_AllBrokersDown(t *testing.T) {
	c := &scriptedCommitter{errs: []error{kafka.NewError(kafka.ErrAllBrokersDown, "down", false)}}
	ch := &KafkaCommitHandler{committer: c, ctx: context.Background()}

	require.Error(t, ch.Commit(&kafka.Message{}))
	assert.Equal(t, 1, c.calls)
}

func TestCommitHandler_GivesUp(t *testing.T) {
	errs := make([]error, MAX_RETRIES)
	for i := range errs {
		errs[i] = errors.New("busy")
	}
	c := &scriptedCommitter{errs: errs}
	ch := &KafkaCommitHandler{committer: c, ctx: context.Background()}

	require.Error(t, ch.Commit(&kafka.Message{}))
	assert.Equal(t, MAX_RETRIES, c.calls)
}

func TestCommitHandler_Rewind(t *testing.T) {
	c := &scriptedCommitter{}
	ch := &KafkaCommitHandler{committer: c, ctx: context.Background()}
	topic := "analysis-request"
	msg := &kafka.Message{TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 2, Offset: 41}}

	require.NoError(t, ch.Rewind(msg))
	require.Len(t, c.seeks, 1)
	assert.Equal(t, kafka.Offset(41), c.seeks[0].Offset)
	assert.Equal(t, int32(2), c.seeks[0].Partition)
}

func TestPublishToKafka_RequiresProducer(t *testing.T) {
	err := PublishToKafka(context.Background(), KAFKA_TOPIC_SENTIMENT_RESULTS, "k", map[string]string{})
	assert.Error(t, err)
}
