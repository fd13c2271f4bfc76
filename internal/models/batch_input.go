package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

type BatchInputRecord struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Date   string `json:"date,omitempty"`
}

// UnmarshalJSON coerces a non-string "text" into its string form instead of
// rejecting the record: null becomes "", numbers and booleans keep their
// literal text, objects and arrays become compact JSON.
func (r *BatchInputRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text   json.RawMessage `json:"text"`
		Source json.RawMessage `json:"source"`
		Date   json.RawMessage `json:"date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Text = coerceString(raw.Text)
	r.Source = coerceString(raw.Source)
	r.Date = coerceString(raw.Date)
	return nil
}

func coerceString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return strings.TrimSpace(string(trimmed))
	}
	return compact.String()
}

// AnalysisRequest is the payload carried on the analysis-request topic.
type AnalysisRequest struct {
	RequestID string             `json:"request_id"`
	Records   []BatchInputRecord `json:"records"`
}

// AnalysisResponse is the payload carried on the sentiment-results topic.
type AnalysisResponse struct {
	RequestID string            `json:"request_id"`
	Results   []SentimentResult `json:"results"`
}
