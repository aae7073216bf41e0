package processor

import (
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/staging"
)

// DOCX has no fixed pagination, so paragraphs are grouped into synthetic
// pages at this character budget.
const wordPageChars = 3000

// WordProcessor extracts paragraph text from .docx content.
type WordProcessor struct {
	params document.ChunkParams
}

func NewWordProcessor(params document.ChunkParams) *WordProcessor {
	return &WordProcessor{params: params}
}

func (p *WordProcessor) Params() document.ChunkParams { return p.params }

func (p *WordProcessor) ExtractPages(staged *staging.Staged) ([]document.Page, error) {
	f, err := staged.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := docx.Parse(f, staged.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if text := paragraphText(para); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	return paginate(paragraphs, wordPageChars), nil
}

// Substantive rejects near-empty pages so they yield no chunks.
func (p *WordProcessor) Substantive(content string) bool {
	return len(strings.TrimSpace(content)) >= minSubstantiveChars
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return chunker.CleanText(buf.String())
}

// paginate groups paragraphs into pages, starting a new page once the
// current one exceeds the character budget. Paragraphs are never split
// across pages.
func paginate(paragraphs []string, budget int) []document.Page {
	var pages []document.Page
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		pages = append(pages, document.Page{
			Number:  len(pages) + 1,
			Content: current.String(),
		})
		current.Reset()
	}

	for _, para := range paragraphs {
		if current.Len() > 0 && current.Len()+len(para) > budget {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	if len(pages) == 0 {
		pages = []document.Page{{Number: 1}}
	}
	return pages
}
