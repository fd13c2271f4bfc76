package report

import (
	"slices"
	"strings"

	"github.com/spacesedan/sentidash/internal/models"
)

type Summary struct {
	TotalTexts      int     `json:"total_texts"`
	PositiveCount   int     `json:"positive_count"`
	NegativeCount   int     `json:"negative_count"`
	NeutralCount    int     `json:"neutral_count"`
	PositivePct     float64 `json:"positive_pct"`
	NegativePct     float64 `json:"negative_pct"`
	NeutralPct      float64 `json:"neutral_pct"`
	AvgConfidence   float64 `json:"avg_confidence"`
	AvgPolarity     float64 `json:"avg_polarity"`
	AvgSubjectivity float64 `json:"avg_subjectivity"`
}

// Summarize aggregates rows. An empty slice gives the zero Summary.
func Summarize(rows []models.SentimentResult) Summary {
	var s Summary
	s.TotalTexts = len(rows)
	if s.TotalTexts == 0 {
		return s
	}

	var confidence, polarity, subjectivity float64
	for _, r := range rows {
		switch r.Sentiment {
		case models.LabelPositive:
			s.PositiveCount++
		case models.LabelNegative:
			s.NegativeCount++
		case models.LabelNeutral:
			s.NeutralCount++
		}
		confidence += r.Confidence
		polarity += r.Polarity
		subjectivity += r.Subjectivity
	}

	total := float64(s.TotalTexts)
	s.PositivePct = float64(s.PositiveCount) / total * 100
	s.NegativePct = float64(s.NegativeCount) / total * 100
	s.NeutralPct = float64(s.NeutralCount) / total * 100
	s.AvgConfidence = confidence / total
	s.AvgPolarity = polarity / total
	s.AvgSubjectivity = subjectivity / total
	return s
}

type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// KeywordFrequency counts keywords across rows and returns the topN most
// frequent; equal counts keep first-seen order. topN <= 0 returns all.
func KeywordFrequency(rows []models.SentimentResult, topN int) []KeywordCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, r := range rows {
		for _, kw := range r.Keywords {
			if counts[kw] == 0 {
				order = append(order, kw)
			}
			counts[kw]++
		}
	}

	out := make([]KeywordCount, 0, len(order))
	for _, kw := range order {
		out = append(out, KeywordCount{Keyword: kw, Count: counts[kw]})
	}
	slices.SortStableFunc(out, func(a, b KeywordCount) int {
		return b.Count - a.Count
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

type SourceBreakdown struct {
	Source string               `json:"source"`
	Total  int                  `json:"total"`
	Counts map[models.Label]int `json:"counts"`
}

// BySource groups label counts per source in order of first appearance.
func BySource(rows []models.SentimentResult) []SourceBreakdown {
	index := make(map[string]int)
	out := make([]SourceBreakdown, 0)
	for _, r := range rows {
		i, ok := index[r.Source]
		if !ok {
			i = len(out)
			index[r.Source] = i
			out = append(out, SourceBreakdown{Source: r.Source, Counts: zeroCounts()})
		}
		out[i].Total++
		out[i].Counts[r.Sentiment]++
	}
	return out
}

type DatePoint struct {
	Date   string               `json:"date"`
	Total  int                  `json:"total"`
	Counts map[models.Label]int `json:"counts"`
}

// OverTime groups label counts per date, ascending. Dates are compared as
// strings, so YYYY-MM-DD sorts chronologically and "N/A" lands last.
func OverTime(rows []models.SentimentResult) []DatePoint {
	index := make(map[string]int)
	out := make([]DatePoint, 0)
	for _, r := range rows {
		i, ok := index[r.Date]
		if !ok {
			i = len(out)
			index[r.Date] = i
			out = append(out, DatePoint{Date: r.Date, Counts: zeroCounts()})
		}
		out[i].Total++
		out[i].Counts[r.Sentiment]++
	}
	slices.SortStableFunc(out, func(a, b DatePoint) int {
		return strings.Compare(a.Date, b.Date)
	})
	return out
}

func zeroCounts() map[models.Label]int {
	counts := make(map[models.Label]int, len(models.Labels))
	for _, l := range models.Labels {
		counts[l] = 0
	}
	return counts
}

// Filter narrows rows by label and source. An empty list matches everything.
type Filter struct {
	Sentiments []models.Label
	Sources    []string
}

func (f Filter) Apply(rows []models.SentimentResult) []models.SentimentResult {
	if len(f.Sentiments) == 0 && len(f.Sources) == 0 {
		return rows
	}
	out := make([]models.SentimentResult, 0, len(rows))
	for _, r := range rows {
		if len(f.Sentiments) > 0 && !slices.Contains(f.Sentiments, r.Sentiment) {
			continue
		}
		if len(f.Sources) > 0 && !slices.Contains(f.Sources, r.Source) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Dashboard is everything the presentation layer needs to draw the overview.
type Dashboard struct {
	Summary  Summary           `json:"summary"`
	Keywords []KeywordCount    `json:"keywords"`
	Sources  []SourceBreakdown `json:"sources"`
	Trend    []DatePoint       `json:"over_time"`
}

func BuildDashboard(rows []models.SentimentResult, topKeywords int) Dashboard {
	return Dashboard{
		Summary:  Summarize(rows),
		Keywords: KeywordFrequency(rows, topKeywords),
		Sources:  BySource(rows),
		Trend:    OverTime(rows),
	}
}
