package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"
)

// VaderScorer scores text with the VADER lexicon. Polarity is the compound
// score; subjectivity is the share of the text carrying positive or negative
// valence. Text is scored exactly as given.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderScorer) Score(text string) (float64, float64) {
	if strings.TrimSpace(text) == "" {
		return 0, 0
	}

	scores := v.analyzer.PolarityScores(text)
	return scores.Compound, scores.Positive + scores.Negative
}
