package processor

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/staging"
)

// ErrUnsupportedKind is returned when a document name's suffix matches no
// registered kind.
var ErrUnsupportedKind = errors.New("unsupported document kind")

// Processor extracts page-ordered text from staged content. Each
// implementation carries a fixed chunk size/overlap pair injected at
// construction.
type Processor interface {
	ExtractPages(staged *staging.Staged) ([]document.Page, error)
	Params() document.ChunkParams
}

// pageFilter is implemented by processors that recognize non-substantive
// pages. Filtered pages are kept in the page sequence but yield no chunks.
type pageFilter interface {
	Substantive(content string) bool
}

// Registry maps file-name suffixes to kinds and kinds to processors.
// Kinds are extended by registration, never by special-casing.
type Registry struct {
	suffixes map[string]string
	procs    map[string]Processor
}

func NewRegistry() *Registry {
	return &Registry{
		suffixes: make(map[string]string),
		procs:    make(map[string]Processor),
	}
}

// Register binds a kind to its processor and the suffixes that select it.
func (r *Registry) Register(kind string, p Processor, suffixes ...string) {
	r.procs[kind] = p
	for _, s := range suffixes {
		r.suffixes[strings.ToLower(s)] = kind
	}
}

// Kinds and their default chunk parameters.
const (
	KindPDF      = "pdf"
	KindWord     = "word"
	KindMarkdown = "markdown"
	KindHTML     = "html"
	KindText     = "text"
	KindCSV      = "csv"
)

// DefaultRegistry returns a registry with every built-in kind using its
// default chunk parameters.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(KindPDF, NewPDFProcessor(document.ChunkParams{Size: 250, Overlap: 25}), ".pdf")
	r.Register(KindWord, NewWordProcessor(document.ChunkParams{Size: 1000, Overlap: 100}), ".docx", ".doc")
	r.Register(KindMarkdown, NewMarkdownProcessor(document.ChunkParams{Size: 1000, Overlap: 100}), ".md", ".markdown")
	r.Register(KindHTML, NewHTMLProcessor(document.ChunkParams{Size: 1000, Overlap: 100}), ".html", ".htm")
	r.Register(KindText, NewTextProcessor(document.ChunkParams{Size: 1000, Overlap: 100}), ".txt")
	r.Register(KindCSV, NewCSVProcessor(document.ChunkParams{Size: 800, Overlap: 80}), ".csv")
	return r
}

// ExtractMetadata resolves a document's kind from its name suffix and
// attaches the caller-supplied context. No side effects.
func (r *Registry) ExtractMetadata(name string, size int64, ctx document.Context) (document.Metadata, error) {
	ext := strings.ToLower(filepath.Ext(name))
	kind, ok := r.suffixes[ext]
	if !ok {
		return document.Metadata{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, ext)
	}
	return document.Metadata{
		Name:      name,
		Kind:      kind,
		SizeBytes: size,
		Context:   ctx,
	}, nil
}

// ForKind routes a resolved kind to its processor. Selection is total over
// the registered set; an unknown kind here is a terminal error, never a
// silent default.
func (r *Registry) ForKind(kind string) (Processor, error) {
	p, ok := r.procs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no processor registered for kind %q", ErrUnsupportedKind, kind)
	}
	return p, nil
}

// Supported reports whether a document name maps to a registered kind.
func (r *Registry) Supported(name string) bool {
	_, ok := r.suffixes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Suffix returns the lowercase extension of a document name.
func Suffix(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// readStaged loads the full staged content into memory for processors
// that decode from a byte slice.
func readStaged(staged *staging.Staged) ([]byte, error) {
	f, err := staged.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Process extracts pages from staged content and assembles the chunked
// document: gapless 1-based page ordinals, page-wise chunking with the
// processor's parameters, and document-wide 1-based chunk indices.
func Process(p Processor, staged *staging.Staged, meta document.Metadata, docID string) (*document.Processed, error) {
	pages, err := p.ExtractPages(staged)
	if err != nil {
		return nil, err
	}

	params := p.Params()
	cfg := chunker.Config{ChunkSize: params.Size, ChunkOverlap: params.Overlap}
	filter, hasFilter := p.(pageFilter)

	out := &document.Processed{
		DocumentID:   docID,
		DocumentName: meta.Name,
		Context:      meta.Context,
	}

	index := 0
	for i := range pages {
		page := &pages[i]
		page.Number = i + 1
		page.CharCount = utf8.RuneCountInString(page.Content)

		var parts []string
		if !hasFilter || filter.Substantive(page.Content) {
			parts = chunker.Split(page.Content, cfg)
		}
		page.ChunkCount = len(parts)

		for _, part := range parts {
			index++
			out.Chunks = append(out.Chunks, document.Chunk{
				ID:         document.ChunkID(docID, index),
				Index:      index,
				PageNumber: page.Number,
				Content:    part,
				Metadata: document.ChunkMetadata{
					DocumentID:   docID,
					PageNumber:   page.Number,
					Location:     meta.Context.Location,
					Year:         meta.Context.Year,
					DocType:      meta.Context.DocType,
					ChunkSize:    params.Size,
					ChunkOverlap: params.Overlap,
				},
			})
		}
	}

	out.Pages = pages
	out.TotalPages = len(pages)
	out.TotalChunks = index
	return out, nil
}
