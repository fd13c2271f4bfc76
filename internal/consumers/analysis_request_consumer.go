package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
	"github.com/spacesedan/sentidash/internal/clients/kafka_client"
	"github.com/spacesedan/sentidash/internal/metrics"
	"github.com/spacesedan/sentidash/internal/models"
	"github.com/spacesedan/sentidash/internal/processing"
	"github.com/spacesedan/sentidash/internal/store"
	"github.com/spacesedan/sentidash/internal/utils"
)

const (
	publishAttempts      = 3
	shutdownFlushTimeout = 10 * time.Second
)

type ResultPublisher interface {
	Publish(ctx context.Context, requestID string, results []models.SentimentResult) error
}

// Committer commits processed offsets and rewinds a partition to a message
// that has to be delivered again.
type Committer interface {
	Commit(msg *kafka.Message) error
	Rewind(msg *kafka.Message) error
}

type messageSource interface {
	Next() (*kafka.Message, error)
}

// AnalysisRequestConsumer turns analysis-request messages into result rows,
// publishes them and only then commits the source offsets.
type AnalysisRequestConsumer struct {
	analyzer      *processing.Analyzer
	publisher     ResultPublisher
	store         store.ResultStore
	buffer        *utils.BatchBuffer[models.AnalysisResponse]
	tracker       utils.MessageTracker
	retryDelay    time.Duration
	flushInterval time.Duration
}

// NewAnalysisRequestConsumer wires the consumer; resultStore may be nil when
// rows should only be published.
func NewAnalysisRequestConsumer(analyzer *processing.Analyzer, publisher ResultPublisher, resultStore store.ResultStore) *AnalysisRequestConsumer {
	return &AnalysisRequestConsumer{
		analyzer:      analyzer,
		publisher:     publisher,
		store:         resultStore,
		buffer:        utils.NewBatchBuffer[models.AnalysisResponse](utils.BATCH_SIZE),
		retryDelay:    2 * time.Second,
		flushInterval: utils.BATCH_TIMEOUT,
	}
}

func (c *AnalysisRequestConsumer) Start(ctx context.Context, consumer *kafka.Consumer) {
	c.run(ctx, kafka_client.NewKafkaMessageIterator(ctx, consumer), func(cctx context.Context) Committer {
		return kafka_client.NewCommitHandler(cctx, consumer)
	})
}

// run polls source until ctx ends. committerFor is called again with a fresh
// context for the final flush, since ctx is already canceled by then.
func (c *AnalysisRequestConsumer) run(ctx context.Context, source messageSource, committerFor func(context.Context) Committer) {
	committer := committerFor(ctx)

	slog.Info("[AnalysisRequestConsumer] Listening for messages...")

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[AnalysisRequestConsumer] Stopping consumer...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
			c.Flush(shutdownCtx, committerFor(shutdownCtx))
			cancel()
			return
		case <-ticker.C:
			c.Flush(ctx, committer)
		default:
			msg, err := source.Next()
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("[AnalysisRequestConsumer] Kafka Consumer Error",
						slog.String("error", err.Error()))
				}
				continue
			}
			if msg == nil {
				continue
			}

			if err := c.HandleMessage(ctx, msg); err != nil {
				slog.Error("[AnalysisRequestConsumer] Failed to handle message",
					slog.String("error", err.Error()))
				continue
			}

			if c.buffer.Full() {
				c.Flush(ctx, committer)
			}
		}
	}
}

// HandleMessage analyzes one request and buffers the response. Undecodable
// payloads are reported and not retried.
func (c *AnalysisRequestConsumer) HandleMessage(ctx context.Context, msg *kafka.Message) error {
	var request models.AnalysisRequest
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		return fmt.Errorf("[AnalysisRequestConsumer] failed to decode request: %w", err)
	}
	if request.RequestID == "" {
		if len(msg.Key) > 0 {
			request.RequestID = string(msg.Key)
		} else {
			request.RequestID = uuid.NewString()
		}
	}

	results, err := c.analyzer.ClassifyBatch(ctx, request.Records)
	if err != nil {
		return err
	}

	c.tracker.Track(request.RequestID, msg)
	c.buffer.Add(models.AnalysisResponse{RequestID: request.RequestID, Results: results})
	return nil
}

// Flush publishes buffered responses, appends them to the store and commits
// their offsets. When a publish fails, its partition is rewound to that
// message and later responses from the same partition are left for
// redelivery, so no commit ever moves past an unpublished request.
func (c *AnalysisRequestConsumer) Flush(ctx context.Context, committer Committer) {
	batch := c.buffer.GetAndClear()
	if len(batch) == 0 {
		return
	}
	utils.LogBatchProcessing("analysis-response", batch)

	blocked := make(map[partitionKey]bool)
	for _, response := range batch {
		msg, tracked := c.tracker.Release(response.RequestID)
		key := keyOf(msg)

		if blocked[key] {
			slog.Debug("[AnalysisRequestConsumer] Deferring response until partition is redelivered",
				slog.String("request_id", response.RequestID))
			continue
		}

		if err := c.publishWithRetry(ctx, response); err != nil {
			slog.Error("[AnalysisRequestConsumer] Publish failed, request will be redelivered",
				slog.String("request_id", response.RequestID),
				slog.String("error", err.Error()))
			metrics.SideEffectFailures.WithLabelValues("kafka").Inc()
			blocked[key] = true
			if tracked && committer != nil {
				if err := committer.Rewind(msg); err != nil {
					slog.Error("[AnalysisRequestConsumer] Failed to rewind partition",
						slog.String("request_id", response.RequestID),
						slog.String("error", err.Error()))
				}
			}
			continue
		}
		metrics.RecordResults("kafka", response.Results)

		if c.store != nil {
			if err := c.store.Append(ctx, response.Results...); err != nil {
				slog.Warn("[AnalysisRequestConsumer] Failed to append results to store",
					slog.String("request_id", response.RequestID),
					slog.String("error", err.Error()))
			}
		}

		if tracked && committer != nil {
			if err := committer.Commit(msg); err != nil {
				slog.Warn("[AnalysisRequestConsumer] Failed to commit offset",
					slog.String("error", err.Error()))
			}
		}
	}
}

type partitionKey struct {
	topic     string
	partition int32
}

func keyOf(msg *kafka.Message) partitionKey {
	if msg == nil {
		return partitionKey{partition: -1}
	}
	key := partitionKey{partition: msg.TopicPartition.Partition}
	if msg.TopicPartition.Topic != nil {
		key.topic = *msg.TopicPartition.Topic
	}
	return key
}

func (c *AnalysisRequestConsumer) publishWithRetry(ctx context.Context, response models.AnalysisResponse) error {
	var err error
	for i := 0; i < publishAttempts; i++ {
		err = c.publisher.Publish(ctx, response.RequestID, response.Results)
		if err == nil {
			return nil
		}
		slog.Warn("[AnalysisRequestConsumer] Publishing failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		if i == publishAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	return err
}
