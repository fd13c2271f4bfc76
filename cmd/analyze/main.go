package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spacesedan/sentidash/internal/ingest"
	"github.com/spacesedan/sentidash/internal/logging"
	"github.com/spacesedan/sentidash/internal/models"
	"github.com/spacesedan/sentidash/internal/processing"
	"github.com/spacesedan/sentidash/internal/report"
)

type output struct {
	Results []models.SentimentResult `json:"results"`
	Report  report.Dashboard         `json:"report"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run returns the process exit code so deferred cleanup always happens.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("analyze", flag.ContinueOnError)
	flags.SetOutput(stderr)
	keywordCount := flags.Int("k", processing.DEFAULT_KEYWORD_COUNT, "keywords per text")
	workers := flags.Int("workers", 4, "texts analyzed concurrently")
	date := flags.String("date", processing.DEFAULT_DATE, "date for records without one")
	stopWords := flags.String("stopwords", "", "stop-word file replacing the built-in English list")
	topKeywords := flags.Int("top", 10, "keywords listed in the report")
	logLevel := flags.String("log-level", "warn", "debug, info, warn or error")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: analyze [flags] [file.csv|file.txt|file.md ...]\n\nWithout files, one text per line is read from stdin.\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}

	slog.SetDefault(logging.NewLogger(stderr, *logLevel))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	records, err := readRecords(flags.Args(), stdin)
	if err != nil {
		slog.Error("[Analyze] Failed to read input", slog.String("error", err.Error()))
		return 1
	}

	analyzer := processing.NewDefaultAnalyzer(*stopWords,
		processing.WithKeywordCount(*keywordCount),
		processing.WithWorkers(*workers),
		processing.WithDefaultDate(*date),
	)

	rows, err := analyzer.ClassifyBatch(ctx, records)
	if err != nil {
		slog.Error("[Analyze] Batch failed", slog.String("error", err.Error()))
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output{Results: rows, Report: report.BuildDashboard(rows, *topKeywords)}); err != nil {
		slog.Error("[Analyze] Failed to write output", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

func readRecords(paths []string, stdin io.Reader) ([]models.BatchInputRecord, error) {
	if len(paths) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		records := ingest.SplitLines(string(data))
		if len(records) == 0 {
			return nil, ingest.ErrNoRecords
		}
		return records, nil
	}

	files := make([]ingest.File, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		files = append(files, ingest.File{Name: p, Reader: f})
	}
	return ingest.ParseFiles(files)
}
