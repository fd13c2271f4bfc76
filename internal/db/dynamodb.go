package db

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/spacesedan/sentidash/internal/models"
)

const (
	SENTIMENT_RESULTS_TABLE_NAME = "SentimentResults"
	maxBatchSize                 = 25
	maxUnprocessedRetries        = 3
	resultTTL                    = 24 * time.Hour
)

// DynamoAPI is the part of the DynamoDB client the archive uses.
type DynamoAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Archive copies analyzed rows into DynamoDB. It is write-behind storage for
// the session store, not a replacement for it.
type Archive struct {
	client    DynamoAPI
	table     string
	sessionID string
	backoff   time.Duration
	now       func() time.Time
	newID     func() string
}

func NewArchive(client DynamoAPI, sessionID string) *Archive {
	return &Archive{
		client:    client,
		table:     SENTIMENT_RESULTS_TABLE_NAME,
		sessionID: sessionID,
		backoff:   500 * time.Millisecond,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (a *Archive) BatchInsertSentimentResults(ctx context.Context, results []models.SentimentResult) error {
	for i := 0; i < len(results); i += maxBatchSize {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		end := min(i+maxBatchSize, len(results))
		writeRequests := make([]types.WriteRequest, 0, end-i)
		for _, result := range results[i:end] {
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: a.ResultToDynamoDBItem(result)},
			})
		}

		if err := a.writeWithRetry(ctx, writeRequests); err != nil {
			return err
		}
	}

	slog.Info("[DynamoDB] Successfully stored sentiment results",
		slog.Int("count", len(results)))
	return nil
}

func (a *Archive) writeWithRetry(ctx context.Context, writeRequests []types.WriteRequest) error {
	out, err := a.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{a.table: writeRequests},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write sentiment results: %w", err)
	}

	retryCount := 0
	backoff := a.backoff
	for len(out.UnprocessedItems) > 0 && retryCount < maxUnprocessedRetries {
		time.Sleep(backoff)
		backoff *= 2

		slog.Warn("[DynamoDB] Retrying unprocessed sentiment items...",
			slog.Int("attempt", retryCount+1),
			slog.Int("remaining", len(out.UnprocessedItems[a.table])))

		out, err = a.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Retry error %w", err)
		}
		retryCount++
	}

	if remaining := len(out.UnprocessedItems[a.table]); remaining > 0 {
		slog.Error("[DynamoDB] Some sentiment items failed after retries",
			slog.Int("remaining", remaining))
		return fmt.Errorf("[DynamoDB] %d sentiment items not written after %d retries", remaining, maxUnprocessedRetries)
	}
	return nil
}

func (a *Archive) ResultToDynamoDBItem(result models.SentimentResult) map[string]types.AttributeValue {
	now := a.now()

	keywords := make([]types.AttributeValue, 0, len(result.Keywords))
	for _, kw := range result.Keywords {
		keywords = append(keywords, &types.AttributeValueMemberS{Value: kw})
	}

	item := map[string]types.AttributeValue{
		"content_id":   &types.AttributeValueMemberS{Value: a.newID()},
		"session_id":   &types.AttributeValueMemberS{Value: a.sessionID},
		"text":         &types.AttributeValueMemberS{Value: result.Text},
		"sentiment":    &types.AttributeValueMemberS{Value: result.Sentiment.String()},
		"confidence":   &types.AttributeValueMemberN{Value: formatFloat(result.Confidence)},
		"polarity":     &types.AttributeValueMemberN{Value: formatFloat(result.Polarity)},
		"subjectivity": &types.AttributeValueMemberN{Value: formatFloat(result.Subjectivity)},
		"keywords":     &types.AttributeValueMemberL{Value: keywords},
		"source":       &types.AttributeValueMemberS{Value: result.Source},
		"date":         &types.AttributeValueMemberS{Value: result.Date},
		"explanation":  &types.AttributeValueMemberS{Value: result.Explanation},
		"created_at":   &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		"ttl":          &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(resultTTL).Unix(), 10)},
	}
	return item
}

// ListArchivedResults scans every archived row of the archive's session.
func (a *Archive) ListArchivedResults(ctx context.Context) ([]models.SentimentResult, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(a.table),
		FilterExpression: aws.String("session_id = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: a.sessionID},
		},
	}

	var results []models.SentimentResult
	paginator := dynamodb.NewScanPaginator(a.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for sentiment results failed: %w", err)
		}
		var page []models.SentimentResult
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal sentiment result page",
				slog.String("error", err.Error()))
			return nil, err
		}
		results = append(results, page...)
	}

	slog.Info("[DynamoDB] Successfully retrieved archived results", slog.Int("count", len(results)))
	return results, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
