package processor

import (
	"strings"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/staging"
)

// TextProcessor handles plain text. Form feeds separate pages; a document
// without them is a single page.
type TextProcessor struct {
	params document.ChunkParams
}

func NewTextProcessor(params document.ChunkParams) *TextProcessor {
	return &TextProcessor{params: params}
}

func (p *TextProcessor) Params() document.ChunkParams { return p.params }

func (p *TextProcessor) ExtractPages(staged *staging.Staged) ([]document.Page, error) {
	src, err := readStaged(staged)
	if err != nil {
		return nil, err
	}

	raw := strings.Split(string(src), "\f")
	pages := make([]document.Page, 0, len(raw))
	for i, part := range raw {
		pages = append(pages, document.Page{
			Number:  i + 1,
			Content: chunker.CleanText(part),
		})
	}
	return pages, nil
}
