package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/sentidash/internal/models"
)

// parseMarkdown emits one record per paragraph or heading. Inline markup is
// dropped, link text is kept and code blocks are skipped. Text is taken from
// the parsed tree, never from rendered HTML, so literal '<' and '>' survive.
func parseMarkdown(name string, r io.Reader) ([]models.BatchInputRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("[Ingest] %s: %w", name, err)
	}

	root := blackfriday.New(blackfriday.WithExtensions(blackfriday.CommonExtensions)).Parse(data)

	var records []models.BatchInputRecord
	var block *strings.Builder
	root.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch node.Type {
		case blackfriday.Paragraph, blackfriday.Heading, blackfriday.TableCell:
			if entering {
				block = &strings.Builder{}
				return blackfriday.GoToNext
			}
			if text := strings.Join(strings.Fields(block.String()), " "); text != "" {
				records = append(records, models.BatchInputRecord{Text: text, Source: name})
			}
			block = nil
		case blackfriday.Text, blackfriday.Code, blackfriday.HTMLSpan:
			if block != nil {
				block.Write(node.Literal)
			}
		case blackfriday.Softbreak, blackfriday.Hardbreak:
			if block != nil {
				block.WriteByte(' ')
			}
		}
		return blackfriday.GoToNext
	})

	return records, nil
}
