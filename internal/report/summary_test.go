package report

import (
	"testing"

	"github.com/spacesedan/sentidash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows() []models.SentimentResult {
	return []models.SentimentResult{
		{Sentiment: models.LabelPositive, Confidence: 0.8, Polarity: 0.8, Subjectivity: 0.6, Keywords: []string{"great", "food"}, Source: "Survey"},
		{Sentiment: models.LabelNegative, Confidence: 0.4, Polarity: -0.4, Subjectivity: 0.5, Keywords: []string{"slow", "food"}, Source: "Twitter"},
		{Sentiment: models.LabelNeutral, Keywords: []string{"menu"}, Source: "Survey"},
		{Sentiment: models.LabelPositive, Confidence: 0.4, Polarity: 0.4, Subjectivity: 0.3, Keywords: []string{"great"}, Source: "Survey"},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(rows())

	assert.Equal(t, 4, s.TotalTexts)
	assert.Equal(t, 2, s.PositiveCount)
	assert.Equal(t, 1, s.NegativeCount)
	assert.Equal(t, 1, s.NeutralCount)
	assert.InDelta(t, 50.0, s.PositivePct, 1e-9)
	assert.InDelta(t, 25.0, s.NegativePct, 1e-9)
	assert.InDelta(t, 25.0, s.NeutralPct, 1e-9)
	assert.InDelta(t, 0.4, s.AvgConfidence, 1e-9)
	assert.InDelta(t, 0.2, s.AvgPolarity, 1e-9)
	assert.InDelta(t, 0.35, s.AvgSubjectivity, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, Summary{}, Summarize([]models.SentimentResult{}))
}

func TestKeywordFrequency(t *testing.T) {
	got := KeywordFrequency(rows(), 0)
	assert.Equal(t, []KeywordCount{
		{"great", 2}, {"food", 2}, {"slow", 1}, {"menu", 1},
	}, got)

	assert.Equal(t, []KeywordCount{{"great", 2}}, KeywordFrequency(rows(), 1))
	assert.Empty(t, KeywordFrequency(nil, 5))
}

func TestBySource(t *testing.T) {
	got := BySource(rows())
	require.Len(t, got, 2)

	assert.Equal(t, "Survey", got[0].Source)
	assert.Equal(t, 3, got[0].Total)
	assert.Equal(t, 2, got[0].Counts[models.LabelPositive])
	assert.Equal(t, 1, got[0].Counts[models.LabelNeutral])
	assert.Equal(t, 0, got[0].Counts[models.LabelNegative])

	assert.Equal(t, "Twitter", got[1].Source)
	assert.Equal(t, 1, got[1].Counts[models.LabelNegative])
}

func TestBuildDashboard(t *testing.T) {
	d := BuildDashboard(rows(), 3)
	assert.Equal(t, 4, d.Summary.TotalTexts)
	assert.Len(t, d.Keywords, 3)
	assert.Len(t, d.Sources, 2)
	assert.Len(t, d.Trend, 1)

	empty := BuildDashboard(nil, 3)
	assert.Equal(t, Summary{}, empty.Summary)
	assert.Empty(t, empty.Keywords)
	assert.Empty(t, empty.Sources)
	assert.Empty(t, empty.Trend)
}

func TestOverTime(t *testing.T) {
	in := []models.SentimentResult{
		{Sentiment: models.LabelPositive, Date: "2024-03-15"},
		{Sentiment: models.LabelNegative, Date: "N/A"},
		{Sentiment: models.LabelNegative, Date: "2024-03-14"},
		{Sentiment: models.LabelPositive, Date: "2024-03-15"},
	}

	got := OverTime(in)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"2024-03-14", "2024-03-15", "N/A"},
		[]string{got[0].Date, got[1].Date, got[2].Date})

	assert.Equal(t, 2, got[1].Total)
	assert.Equal(t, map[models.Label]int{
		models.LabelPositive: 2,
		models.LabelNegative: 0,
		models.LabelNeutral:  0,
	}, got[1].Counts)
	assert.Len(t, got[0].Counts, len(models.Labels))

	assert.Empty(t, OverTime(nil))
}

func TestFilter_Apply(t *testing.T) {
	all := rows()

	assert.Equal(t, all, Filter{}.Apply(all))

	pos := Filter{Sentiments: []models.Label{models.LabelPositive}}.Apply(all)
	require.Len(t, pos, 2)
	for _, r := range pos {
		assert.Equal(t, models.LabelPositive, r.Sentiment)
	}

	both := Filter{
		Sentiments: []models.Label{models.LabelNeutral, models.LabelNegative},
		Sources:    []string{"Survey"},
	}.Apply(all)
	require.Len(t, both, 1)
	assert.Equal(t, []string{"menu"}, both[0].Keywords)

	assert.Empty(t, Filter{Sources: []string{"Email"}}.Apply(all))
}

func TestKeywordFrequency_FilteredBySentiment(t *testing.T) {
	neg := Filter{Sentiments: []models.Label{models.LabelNegative}}.Apply(rows())
	assert.Equal(t, []KeywordCount{{"slow", 1}, {"food", 1}}, KeywordFrequency(neg, 0))
}
