package sentiment

import (
	"math"

	"github.com/spacesedan/sentidash/internal/models"
)

// Scorer is the polarity/subjectivity model behind the classifier.
// Polarity is expected in [-1,1] and subjectivity in [0,1].
type Scorer interface {
	Score(text string) (polarity float64, subjectivity float64)
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(text string) (float64, float64)

func (f ScorerFunc) Score(text string) (float64, float64) {
	return f(text)
}

type Score struct {
	Label        models.Label `json:"sentiment"`
	Confidence   float64      `json:"confidence"`
	Polarity     float64      `json:"polarity"`
	Subjectivity float64      `json:"subjectivity"`
}

type Classifier struct {
	scorer Scorer
}

// NewClassifier wraps scorer; a nil scorer selects VADER.
func NewClassifier(scorer Scorer) *Classifier {
	if scorer == nil {
		scorer = NewVaderScorer()
	}
	return &Classifier{scorer: scorer}
}

// Classify accepts any string. Confidence is |polarity|, a rough certainty
// proxy and not a calibrated probability.
func (c *Classifier) Classify(text string) Score {
	polarity, subjectivity := c.scorer.Score(text)
	polarity = clamp(polarity, -1, 1)
	subjectivity = clamp(subjectivity, 0, 1)

	return Score{
		Label:        models.LabelFromPolarity(polarity),
		Confidence:   math.Abs(polarity),
		Polarity:     polarity,
		Subjectivity: subjectivity,
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}
