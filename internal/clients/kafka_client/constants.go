package kafka_client

import "time"

const (
	KAFKA_TOPIC_ANALYSIS_REQUEST  = "analysis-request"  // batches of raw text records waiting for analysis
	KAFKA_TOPIC_SENTIMENT_RESULTS = "sentiment-results" // analyzed rows, one message per request
)

const (
	MAX_RETRIES = 5
	RETRY_DELAY = 2 * time.Second
)
