package models

import "strings"

type Label string

const (
	LabelPositive Label = "Positive"
	LabelNegative Label = "Negative"
	LabelNeutral  Label = "Neutral"
)

// Labels lists every label in display order.
var Labels = []Label{LabelPositive, LabelNegative, LabelNeutral}

func (l Label) String() string {
	return string(l)
}

// ParseLabel matches s against Labels, ignoring case.
func ParseLabel(s string) (Label, bool) {
	for _, l := range Labels {
		if strings.EqualFold(s, string(l)) {
			return l, true
		}
	}
	return "", false
}

// LabelFromPolarity is the sign rule: no epsilon band around zero.
func LabelFromPolarity(polarity float64) Label {
	switch {
	case polarity > 0:
		return LabelPositive
	case polarity < 0:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// SentimentResult is one row of the result table. Rows are built once and
// never modified afterwards.
type SentimentResult struct {
	Text         string   `json:"text" dynamodbav:"text"`
	Sentiment    Label    `json:"sentiment" dynamodbav:"sentiment"`
	Confidence   float64  `json:"confidence" dynamodbav:"confidence"`
	Polarity     float64  `json:"polarity" dynamodbav:"polarity"`
	Subjectivity float64  `json:"subjectivity" dynamodbav:"subjectivity"`
	Keywords     []string `json:"keywords" dynamodbav:"keywords"`
	Source       string   `json:"source" dynamodbav:"source"`
	Date         string   `json:"date" dynamodbav:"date"`
	Explanation  string   `json:"explanation" dynamodbav:"explanation"`
}
