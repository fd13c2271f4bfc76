package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spacesedan/sentidash/internal/ingest"
	"github.com/spacesedan/sentidash/internal/metrics"
	"github.com/spacesedan/sentidash/internal/models"
	"github.com/spacesedan/sentidash/internal/processing"
	"github.com/spacesedan/sentidash/internal/report"
	"github.com/spacesedan/sentidash/internal/store"
)

const (
	maxUploadSize      = 32 << 20
	maxJSONBodySize    = 1 << 20
	defaultTopKeywords = 10
	dateLayout         = "2006-01-02"
)

// Archiver receives a copy of every appended batch and can read it back.
type Archiver interface {
	BatchInsertSentimentResults(ctx context.Context, results []models.SentimentResult) error
	ListArchivedResults(ctx context.Context) ([]models.SentimentResult, error)
}

// Publisher fans appended rows out to other consumers.
type Publisher interface {
	Publish(ctx context.Context, requestID string, results []models.SentimentResult) error
}

type Options struct {
	Analyzer       *processing.Analyzer
	Store          store.ResultStore
	Archive        Archiver
	Publisher      Publisher
	Healthy        *atomic.Bool
	AllowedOrigins []string
}

type Router struct {
	analyzer  *processing.Analyzer
	store     store.ResultStore
	archive   Archiver
	publisher Publisher
	healthy   *atomic.Bool
	now       func() time.Time
}

type badRequestError struct {
	msg string
}

func (e badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return badRequestError{msg: fmt.Sprintf(format, args...)}
}

var errArchiveDisabled = errors.New("archive not enabled")

func NewRouter(opts Options) http.Handler {
	r := &Router{
		analyzer:  opts.Analyzer,
		store:     opts.Store,
		archive:   opts.Archive,
		publisher: opts.Publisher,
		healthy:   opts.Healthy,
		now:       time.Now,
	}
	if r.analyzer == nil {
		r.analyzer = processing.NewAnalyzer(nil, nil)
	}
	if r.healthy == nil {
		r.healthy = &atomic.Bool{}
		r.healthy.Store(true)
	}
	return r.routes(opts.AllowedOrigins)
}

func (r *Router) routes(allowedOrigins []string) http.Handler {
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(instrument)

	mux.Get("/health", r.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/batch", r.wrap(r.handleBatch))
		rt.Post("/upload", r.wrap(r.handleUpload))
		rt.Get("/results", r.wrap(r.handleResults))
		rt.Delete("/results", r.wrap(r.handleClear))
		rt.Get("/summary", r.wrap(r.handleSummary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var bad badRequestError
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &bad):
			http.Error(w, bad.msg, http.StatusBadRequest)
		case errors.As(err, &tooLarge):
			http.Error(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		case errors.Is(err, errArchiveDisabled):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ingest.ErrNoRecords):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			slog.Error("[Server] Request failed",
				slog.String("path", req.URL.Path),
				slog.String("error", err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, req *http.Request, v any) error {
	body := http.MaxBytesReader(w, req.Body, maxJSONBodySize)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return err
		case errors.Is(err, io.EOF):
			return badRequest("request body is required")
		}
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

// filterFromQuery reads repeated ?sentiment= and ?source= params.
func filterFromQuery(req *http.Request) (report.Filter, error) {
	q := req.URL.Query()
	var f report.Filter
	for _, raw := range q["sentiment"] {
		l, ok := models.ParseLabel(raw)
		if !ok {
			return f, badRequest("invalid sentiment: %q", raw)
		}
		f.Sentiments = append(f.Sentiments, l)
	}
	f.Sources = q["source"]
	return f, nil
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if !r.healthy.Load() {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}

// POST /v1/analyze
// Body: {"text": "...", "source": "...", "date": "...", "keywords": 5}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text     string `json:"text"`
		Source   string `json:"source"`
		Date     string `json:"date"`
		Keywords *int   `json:"keywords"`
	}
	if err := decodeBody(w, req, &body); err != nil {
		return err
	}
	if strings.TrimSpace(body.Text) == "" {
		return badRequest("text is required")
	}

	k := r.analyzer.KeywordCount()
	if body.Keywords != nil {
		k = *body.Keywords
	}
	if body.Date == "" {
		body.Date = r.today()
	}

	row := r.analyzer.Analyze(models.BatchInputRecord{
		Text:   body.Text,
		Source: body.Source,
		Date:   body.Date,
	}, k)

	if err := r.appendResults(req.Context(), []models.SentimentResult{row}); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, row)
}

// POST /v1/batch
// Body: {"records": [{"text": "..."}], "source": "...", "date": "..."}
func (r *Router) handleBatch(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Records []models.BatchInputRecord `json:"records"`
		Source  string                    `json:"source"`
		Date    string                    `json:"date"`
	}
	if err := decodeBody(w, req, &body); err != nil {
		return err
	}
	if body.Date == "" {
		body.Date = r.today()
	}

	records := make([]models.BatchInputRecord, len(body.Records))
	for i, rec := range body.Records {
		if rec.Source == "" {
			rec.Source = body.Source
		}
		if rec.Date == "" {
			rec.Date = body.Date
		}
		records[i] = rec
	}

	return r.classifyAndRespond(w, req, records)
}

// POST /v1/upload
// Multipart form with one or more "files" parts (.csv or .txt).
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(maxUploadSize); err != nil {
		return badRequest("invalid multipart form: %v", err)
	}
	headers := req.MultipartForm.File["files"]
	if len(headers) == 0 {
		return badRequest("no files uploaded")
	}

	files := make([]ingest.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("[Server] failed to open upload %s: %w", fh.Filename, err)
		}
		defer f.Close()
		files = append(files, ingest.File{Name: fh.Filename, Reader: f})
	}

	records, err := ingest.ParseFiles(files)
	if err != nil {
		return err
	}

	today := r.today()
	for i := range records {
		if records[i].Date == "" {
			records[i].Date = today
		}
	}

	return r.classifyAndRespond(w, req, records)
}

func (r *Router) classifyAndRespond(w http.ResponseWriter, req *http.Request, records []models.BatchInputRecord) error {
	rows, err := r.analyzer.ClassifyBatch(req.Context(), records)
	if err != nil {
		return err
	}
	if err := r.appendResults(req.Context(), rows); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rows)
}

// GET /v1/results?sentiment=Positive&source=Survey
func (r *Router) handleResults(w http.ResponseWriter, req *http.Request) error {
	filter, err := filterFromQuery(req)
	if err != nil {
		return err
	}
	rows, err := r.store.All(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, filter.Apply(rows))
}

func (r *Router) handleClear(w http.ResponseWriter, req *http.Request) error {
	if err := r.store.Clear(req.Context()); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /v1/summary?top=10&sentiment=...&source=...&keyword_sentiment=...
// keyword_sentiment narrows only the keyword table.
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	top := defaultTopKeywords
	if raw := req.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest("invalid top: %q", raw)
		}
		top = n
	}
	filter, err := filterFromQuery(req)
	if err != nil {
		return err
	}
	var keywordFilter report.Filter
	for _, raw := range req.URL.Query()["keyword_sentiment"] {
		l, ok := models.ParseLabel(raw)
		if !ok {
			return badRequest("invalid keyword_sentiment: %q", raw)
		}
		keywordFilter.Sentiments = append(keywordFilter.Sentiments, l)
	}

	rows, err := r.store.All(req.Context())
	if err != nil {
		return err
	}
	rows = filter.Apply(rows)

	dash := report.BuildDashboard(rows, top)
	if len(keywordFilter.Sentiments) > 0 {
		dash.Keywords = report.KeywordFrequency(keywordFilter.Apply(rows), top)
	}
	return writeJSON(w, http.StatusOK, dash)
}

// GET /v1/archive?sentiment=...&source=...
func (r *Router) handleArchive(w http.ResponseWriter, req *http.Request) error {
	if r.archive == nil {
		return errArchiveDisabled
	}
	filter, err := filterFromQuery(req)
	if err != nil {
		return err
	}
	rows, err := r.archive.ListArchivedResults(req.Context())
	if err != nil {
		return fmt.Errorf("[Server] failed to read archive: %w", err)
	}
	return writeJSON(w, http.StatusOK, filter.Apply(rows))
}

// appendResults stores rows, then archives and publishes them. Only the
// store write can fail the request.
func (r *Router) appendResults(ctx context.Context, rows []models.SentimentResult) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.store.Append(ctx, rows...); err != nil {
		return fmt.Errorf("[Server] failed to store results: %w", err)
	}
	metrics.RecordResults("http", rows)

	if r.archive != nil {
		if err := r.archive.BatchInsertSentimentResults(ctx, rows); err != nil {
			slog.Warn("[Server] Failed to archive results",
				slog.Int("count", len(rows)),
				slog.String("error", err.Error()))
			metrics.SideEffectFailures.WithLabelValues("dynamodb").Inc()
		}
	}
	if r.publisher != nil {
		requestID := uuid.NewString()
		if err := r.publisher.Publish(ctx, requestID, rows); err != nil {
			slog.Warn("[Server] Failed to publish results",
				slog.String("request_id", requestID),
				slog.String("error", err.Error()))
			metrics.SideEffectFailures.WithLabelValues("kafka").Inc()
		}
	}
	return nil
}

func (r *Router) today() string {
	return r.now().Format(dateLayout)
}
