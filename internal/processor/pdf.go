package processor

import (
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/staging"
)

// Minimum cleaned length for a page to be worth chunking.
const minSubstantiveChars = 50

// Boilerplate markers for shipping/invoice cover pages.
var boilerplateMarkers = []string{"SHIP TO", "INVOICE TO"}

// PDFProcessor extracts one Page per physical PDF page.
type PDFProcessor struct {
	params document.ChunkParams
}

func NewPDFProcessor(params document.ChunkParams) *PDFProcessor {
	return &PDFProcessor{params: params}
}

func (p *PDFProcessor) Params() document.ChunkParams { return p.params }

func (p *PDFProcessor) ExtractPages(staged *staging.Staged) ([]document.Page, error) {
	f, reader, err := pdflib.Open(staged.Path())
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]document.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, document.Page{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A page that cannot be decoded poisons the whole document.
			return nil, fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		pages = append(pages, document.Page{
			Number:  i,
			Content: chunker.CleanText(text),
		})
	}
	return pages, nil
}

// Substantive rejects near-empty pages and recognizable shipping/invoice
// boilerplate so they yield no chunks.
func (p *PDFProcessor) Substantive(content string) bool {
	if len(strings.TrimSpace(content)) < minSubstantiveChars {
		return false
	}
	for _, marker := range boilerplateMarkers {
		if strings.Contains(content, marker) {
			return false
		}
	}
	return true
}
