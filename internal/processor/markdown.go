package processor

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	mdtext "github.com/yuin/goldmark/text"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/staging"
)

// Headings at this level or shallower begin a new page.
const markdownSectionLevel = 2

// MarkdownProcessor treats each top-level heading section as a page.
type MarkdownProcessor struct {
	params document.ChunkParams
}

func NewMarkdownProcessor(params document.ChunkParams) *MarkdownProcessor {
	return &MarkdownProcessor{params: params}
}

func (p *MarkdownProcessor) Params() document.ChunkParams { return p.params }

func (p *MarkdownProcessor) ExtractPages(staged *staging.Staged) ([]document.Page, error) {
	src, err := readStaged(staged)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(mdtext.NewReader(src))

	var pages []document.Page
	var current strings.Builder

	flush := func() {
		content := chunker.CleanText(current.String())
		current.Reset()
		if content == "" {
			return
		}
		pages = append(pages, document.Page{
			Number:  len(pages) + 1,
			Content: content,
		})
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level <= markdownSectionLevel {
			flush()
			current.WriteString(string(nodeText(h, src)))
			current.WriteString("\n\n")
			continue
		}
		if t := nodeText(n, src); t != "" {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(t)
		}
	}
	flush()

	if len(pages) == 0 {
		pages = []document.Page{{Number: 1}}
	}
	return pages, nil
}

// nodeText gets the text content of a goldmark block node. Container
// blocks (lists, quotes) have no lines of their own, so recurse.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() != ast.TypeBlock {
		return ""
	}
	if lines := n.Lines(); lines.Len() > 0 {
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := nodeText(c, src); t != "" {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(t)
		}
	}
	return strings.TrimSpace(buf.String())
}
