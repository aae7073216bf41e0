package processor

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/staging"
)

// Rows per CSV page.
const csvBatchSize = 20

// CSVProcessor renders header-labelled row batches, one batch per page.
type CSVProcessor struct {
	params document.ChunkParams
}

func NewCSVProcessor(params document.ChunkParams) *CSVProcessor {
	return &CSVProcessor{params: params}
}

func (p *CSVProcessor) Params() document.ChunkParams { return p.params }

func (p *CSVProcessor) ExtractPages(staged *staging.Staged) ([]document.Page, error) {
	src, err := readStaged(staged)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(src))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return []document.Page{{Number: 1}}, nil
	}

	headers := records[0]
	dataRows := records[1:]

	var pages []document.Page
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))

		var text strings.Builder
		for _, row := range dataRows[i:end] {
			for j, cell := range row {
				if j > 0 {
					text.WriteString(", ")
				}
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
			}
			text.WriteString("\n")
		}
		pages = append(pages, document.Page{
			Number:  len(pages) + 1,
			Content: strings.TrimSpace(text.String()),
		})
	}

	if len(pages) == 0 {
		pages = []document.Page{{Number: 1}}
	}
	return pages, nil
}
