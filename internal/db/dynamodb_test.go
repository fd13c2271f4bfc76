package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/sentidash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	batches      [][]types.WriteRequest
	unprocessed  int // how many calls return their last item as unprocessed
	writeErr     error
	scanPages    []*dynamodb.ScanOutput
	scanCalls    int
	lastScanSess string
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	reqs := in.RequestItems[SENTIMENT_RESULTS_TABLE_NAME]
	f.batches = append(f.batches, reqs)

	out := &dynamodb.BatchWriteItemOutput{}
	if f.unprocessed > 0 && len(reqs) > 0 {
		f.unprocessed--
		out.UnprocessedItems = map[string][]types.WriteRequest{
			SENTIMENT_RESULTS_TABLE_NAME: reqs[len(reqs)-1:],
		}
	}
	return out, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if v, ok := in.ExpressionAttributeValues[":sid"].(*types.AttributeValueMemberS); ok {
		f.lastScanSess = v.Value
	}
	page := f.scanPages[f.scanCalls]
	f.scanCalls++
	return page, nil
}

func newTestArchive(client DynamoAPI) *Archive {
	a := NewArchive(client, "session-1")
	a.backoff = 0
	a.now = func() time.Time { return time.Unix(1700000000, 0) }
	a.newID = func() string { return "id-1" }
	return a
}

func sampleRows(n int) []models.SentimentResult {
	rows := make([]models.SentimentResult, n)
	for i := range rows {
		rows[i] = models.SentimentResult{Text: "t", Sentiment: models.LabelNeutral, Keywords: []string{"t"}}
	}
	return rows
}

func TestResultToDynamoDBItem(t *testing.T) {
	a := newTestArchive(&fakeDynamo{})
	item := a.ResultToDynamoDBItem(models.SentimentResult{
		Text:         "great food",
		Sentiment:    models.LabelPositive,
		Confidence:   0.6249,
		Polarity:     0.6249,
		Subjectivity: 0.5,
		Keywords:     []string{"great", "food"},
		Source:       "Survey",
		Date:         "2024-01-01",
		Explanation:  "because",
	})

	assert.Equal(t, "id-1", item["content_id"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "session-1", item["session_id"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "Positive", item["sentiment"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "0.6249", item["polarity"].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, "0.5", item["subjectivity"].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, "1700000000", item["created_at"].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, "1700086400", item["ttl"].(*types.AttributeValueMemberN).Value)

	kws := item["keywords"].(*types.AttributeValueMemberL).Value
	require.Len(t, kws, 2)
	assert.Equal(t, "great", kws[0].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "food", kws[1].(*types.AttributeValueMemberS).Value)
}

func TestBatchInsert_ChunksBy25(t *testing.T) {
	fake := &fakeDynamo{}
	a := newTestArchive(fake)

	require.NoError(t, a.BatchInsertSentimentResults(context.Background(), sampleRows(60)))
	require.Len(t, fake.batches, 3)
	assert.Len(t, fake.batches[0], 25)
	assert.Len(t, fake.batches[1], 25)
	assert.Len(t, fake.batches[2], 10)
}

func TestBatchInsert_RetriesUnprocessed(t *testing.T) {
	fake := &fakeDynamo{unprocessed: 2}
	a := newTestArchive(fake)

	require.NoError(t, a.BatchInsertSentimentResults(context.Background(), sampleRows(3)))
	require.Len(t, fake.batches, 3)
	assert.Len(t, fake.batches[1], 1)
}

func TestBatchInsert_GivesUpAfterRetries(t *testing.T) {
	fake := &fakeDynamo{unprocessed: 10}
	a := newTestArchive(fake)

	err := a.BatchInsertSentimentResults(context.Background(), sampleRows(2))
	require.Error(t, err)
	assert.Len(t, fake.batches, 1+maxUnprocessedRetries)
}

func TestBatchInsert_WriteError(t *testing.T) {
	boom := errors.New("throttled")
	a := newTestArchive(&fakeDynamo{writeErr: boom})

	err := a.BatchInsertSentimentResults(context.Background(), sampleRows(1))
	assert.ErrorIs(t, err, boom)
}

func TestBatchInsert_CanceledContext(t *testing.T) {
	fake := &fakeDynamo{}
	a := newTestArchive(fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.BatchInsertSentimentResults(ctx, sampleRows(5))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.batches)
}

func TestListArchivedResults(t *testing.T) {
	a := newTestArchive(nil)
	first := a.ResultToDynamoDBItem(models.SentimentResult{Text: "a", Sentiment: models.LabelNegative, Polarity: -0.3, Confidence: 0.3, Keywords: []string{"x"}})
	second := a.ResultToDynamoDBItem(models.SentimentResult{Text: "b", Sentiment: models.LabelNeutral, Keywords: []string{}})

	fake := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{
		{Items: []map[string]types.AttributeValue{first}, LastEvaluatedKey: map[string]types.AttributeValue{
			"content_id": &types.AttributeValueMemberS{Value: "id-1"},
		}},
		{Items: []map[string]types.AttributeValue{second}},
	}}
	a.client = fake

	rows, err := a.ListArchivedResults(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "session-1", fake.lastScanSess)
	assert.Equal(t, models.LabelNegative, rows[0].Sentiment)
	assert.Equal(t, -0.3, rows[0].Polarity)
	assert.Equal(t, []string{"x"}, rows[0].Keywords)
	assert.Equal(t, "b", rows[1].Text)
}
