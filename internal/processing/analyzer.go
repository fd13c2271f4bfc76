package processing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/sentidash/internal/keywords"
	"github.com/spacesedan/sentidash/internal/models"
	"github.com/spacesedan/sentidash/internal/sentiment"
	"golang.org/x/sync/errgroup"
)

const (
	DEFAULT_KEYWORD_COUNT = 5
	DEFAULT_DATE          = "N/A"
	MANUAL_INPUT_SOURCE   = "Manual Input"
)

// Analyzer composes the classifier and the keyword extractor into result rows.
// It holds no per-record state and is safe for concurrent use.
type Analyzer struct {
	classifier   *sentiment.Classifier
	extractor    *keywords.Extractor
	keywordCount int
	workers      int
	defaultDate  string
	logger       *slog.Logger
}

type Option func(*Analyzer)

// WithKeywordCount overrides the number of keywords kept per batch row.
func WithKeywordCount(k int) Option {
	return func(a *Analyzer) { a.keywordCount = k }
}

// WithWorkers sets how many records are processed at once. 1 is strictly
// sequential.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n < 1 {
			n = 1
		}
		a.workers = n
	}
}

// WithDefaultDate sets the date used for records that carry none.
func WithDefaultDate(date string) Option {
	return func(a *Analyzer) { a.defaultDate = date }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// NewAnalyzer builds an Analyzer; nil collaborators fall back to VADER and
// the default English extractor.
func NewAnalyzer(classifier *sentiment.Classifier, extractor *keywords.Extractor, opts ...Option) *Analyzer {
	if classifier == nil {
		classifier = sentiment.NewClassifier(nil)
	}
	if extractor == nil {
		extractor = keywords.NewExtractor()
	}

	a := &Analyzer{
		classifier:   classifier,
		extractor:    extractor,
		keywordCount: DEFAULT_KEYWORD_COUNT,
		workers:      1,
		defaultDate:  DEFAULT_DATE,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewDefaultAnalyzer uses VADER and the English extractor. A non-empty
// stopWordsPath replaces the embedded stop-word list with that file.
func NewDefaultAnalyzer(stopWordsPath string, opts ...Option) *Analyzer {
	var extractorOpts []keywords.Option
	if stopWordsPath != "" {
		extractorOpts = append(extractorOpts, keywords.WithStopWords(keywords.NewFileStopWords(stopWordsPath)))
	}
	return NewAnalyzer(sentiment.NewClassifier(nil), keywords.NewExtractor(extractorOpts...), opts...)
}

func (a *Analyzer) KeywordCount() int {
	return a.keywordCount
}

// Analyze builds a single row with k keywords. A missing source becomes
// "Manual Input".
func (a *Analyzer) Analyze(record models.BatchInputRecord, k int) models.SentimentResult {
	if record.Source == "" {
		record.Source = MANUAL_INPUT_SOURCE
	}
	if record.Date == "" {
		record.Date = a.defaultDate
	}
	return a.buildRow(record, k)
}

// ClassifyBatch analyzes records independently and returns rows in input
// order. Records without a source get the positional label "Batch Input <n>".
// Only context cancellation produces an error.
func (a *Analyzer) ClassifyBatch(ctx context.Context, records []models.BatchInputRecord) ([]models.SentimentResult, error) {
	out := make([]models.SentimentResult, len(records))
	if len(records) == 0 {
		return out, nil
	}

	a.logger.Info("[Analyzer] Processing batch",
		slog.Int("batch_size", len(records)),
		slog.Int("workers", a.workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, record := range records {
		if gctx.Err() != nil {
			break
		}
		i, record := i, record
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = a.buildRow(a.withDefaults(record, i), a.keywordCount)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("[Analyzer] batch interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("[Analyzer] batch interrupted: %w", err)
	}

	return out, nil
}

func (a *Analyzer) withDefaults(record models.BatchInputRecord, index int) models.BatchInputRecord {
	if record.Source == "" {
		record.Source = PositionalSource(index)
	}
	if record.Date == "" {
		record.Date = a.defaultDate
	}
	return record
}

func (a *Analyzer) buildRow(record models.BatchInputRecord, k int) models.SentimentResult {
	score := a.classifier.Classify(record.Text)

	return models.SentimentResult{
		Text:         record.Text,
		Sentiment:    score.Label,
		Confidence:   score.Confidence,
		Polarity:     score.Polarity,
		Subjectivity: score.Subjectivity,
		Keywords:     a.extractor.Extract(record.Text, k),
		Source:       record.Source,
		Date:         record.Date,
		Explanation:  sentiment.Explain(record.Text, score.Label, score.Polarity),
	}
}

// PositionalSource is the default source label for the record at index.
func PositionalSource(index int) string {
	return fmt.Sprintf("Batch Input %d", index+1)
}
