package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spacesedan/sentidash/internal/models"
)

var (
	ErrMissingTextColumn = errors.New("csv file must contain a 'text' column")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoRecords         = errors.New("no valid data found in uploaded files")
)

type File struct {
	Name   string
	Reader io.Reader
}

// ParseFile turns a .csv, .txt or .md upload into batch records. Rows without a
// source are attributed to the file name.
func ParseFile(name string, r io.Reader) ([]models.BatchInputRecord, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return parseCSV(name, r)
	case ".txt":
		return parseTXT(name, r)
	case ".md", ".markdown":
		return parseMarkdown(name, r)
	default:
		return nil, fmt.Errorf("[Ingest] %s: %w", name, ErrUnsupportedFormat)
	}
}

// ParseFiles combines several uploads. A file that fails to parse is logged
// and skipped; ErrNoRecords is returned only when nothing usable remains.
func ParseFiles(files []File) ([]models.BatchInputRecord, error) {
	var all []models.BatchInputRecord
	for _, f := range files {
		records, err := ParseFile(f.Name, f.Reader)
		if err != nil {
			slog.Warn("[Ingest] Skipping file",
				slog.String("file", f.Name),
				slog.String("error", err.Error()))
			continue
		}
		all = append(all, records...)
	}

	if len(all) == 0 {
		return nil, ErrNoRecords
	}
	return all, nil
}

func parseCSV(name string, r io.Reader) ([]models.BatchInputRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("[Ingest] %s: %w", name, ErrMissingTextColumn)
		}
		return nil, fmt.Errorf("[Ingest] %s: failed to read header: %w", name, err)
	}

	textCol, sourceCol, dateCol := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))) {
		case "text":
			textCol = i
		case "source":
			sourceCol = i
		case "date":
			dateCol = i
		}
	}
	if textCol < 0 {
		return nil, fmt.Errorf("[Ingest] %s: %w", name, ErrMissingTextColumn)
	}

	var records []models.BatchInputRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("[Ingest] %s: line %d: %w", name, line, err)
		}

		rec := models.BatchInputRecord{
			Text:   field(row, textCol),
			Source: field(row, sourceCol),
			Date:   field(row, dateCol),
		}
		if rec.Source == "" {
			rec.Source = name
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseTXT(name string, r io.Reader) ([]models.BatchInputRecord, error) {
	var records []models.BatchInputRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		records = append(records, models.BatchInputRecord{Text: line, Source: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("[Ingest] %s: %w", name, err)
	}
	return records, nil
}

// SplitLines turns a pasted block into records, one per non-blank line.
func SplitLines(block string) []models.BatchInputRecord {
	var records []models.BatchInputRecord
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		records = append(records, models.BatchInputRecord{Text: line})
	}
	return records
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
