package utils

import (
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// MessageTracker remembers which Kafka message produced a request so the
// offset can be committed once the request's results are published.
type MessageTracker struct {
	messages sync.Map
}

func (t *MessageTracker) Track(requestID string, msg *kafka.Message) {
	t.messages.Store(requestID, msg)
}

// Release returns and forgets the message tracked for requestID.
func (t *MessageTracker) Release(requestID string) (*kafka.Message, bool) {
	msg, ok := t.messages.LoadAndDelete(requestID)
	if !ok {
		return nil, false
	}
	return msg.(*kafka.Message), true
}
