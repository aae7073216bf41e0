// Package writer serializes a processed document into its artifact set:
// one manifest, one artifact per page, one artifact per chunk, all under
// a namespace keyed by document id.
package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docchunk/internal/blobstore"
	"github.com/dgallion1/docchunk/internal/document"
)

// Manifest is the aggregate metadata artifact describing a processed
// document's shape.
type Manifest struct {
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	TotalPages   int    `json:"total_pages"`
	TotalChunks  int    `json:"total_chunks"`
	Location     string `json:"location,omitempty"`
	Year         int    `json:"year,omitempty"`
	DocType      string `json:"doc_type,omitempty"`
}

// Result accounts for what was persisted. Writes are not transactional:
// on partial failure it reports how far the writer got; prior writes are
// not rolled back and compensation is the caller's call.
type Result struct {
	Namespace       string `json:"namespace"`
	ManifestWritten bool   `json:"manifest_written"`
	PagesWritten    int    `json:"pages_written"`
	PagesTotal      int    `json:"pages_total"`
	ChunksWritten   int    `json:"chunks_written"`
	ChunksTotal     int    `json:"chunks_total"`
}

func (r *Result) String() string {
	manifest := "manifest written"
	if !r.ManifestWritten {
		manifest = "manifest not written"
	}
	return fmt.Sprintf("%s, %d of %d page artifacts written, %d of %d chunk artifacts written",
		manifest, r.PagesWritten, r.PagesTotal, r.ChunksWritten, r.ChunksTotal)
}

// Writer persists processed documents through a blobstore.Store.
type Writer struct {
	store blobstore.Store
	log   *slog.Logger
}

func New(store blobstore.Store, log *slog.Logger) *Writer {
	return &Writer{store: store, log: log}
}

// Write persists the manifest, page, and chunk artifacts under
// `{document_id}/`, creating the destination namespace if absent. The
// returned Result is valid even when err is non-nil.
func (w *Writer) Write(ctx context.Context, doc *document.Processed) (*Result, error) {
	ns := doc.DocumentID
	result := &Result{
		Namespace:   ns,
		PagesTotal:  len(doc.Pages),
		ChunksTotal: len(doc.Chunks),
	}

	if err := w.store.EnsureNamespace(ctx, ns); err != nil {
		return result, fmt.Errorf("ensure namespace %s: %w", ns, err)
	}

	manifest := Manifest{
		DocumentID:   doc.DocumentID,
		DocumentName: doc.DocumentName,
		TotalPages:   doc.TotalPages,
		TotalChunks:  doc.TotalChunks,
		Location:     doc.Context.Location,
		Year:         doc.Context.Year,
		DocType:      doc.Context.DocType,
	}
	if err := w.putJSON(ctx, ns, "manifest.json", manifest); err != nil {
		return result, err
	}
	result.ManifestWritten = true

	for _, page := range doc.Pages {
		key := fmt.Sprintf("pages/page_%04d.json", page.Number)
		if err := w.putJSON(ctx, ns, key, page); err != nil {
			return result, err
		}
		result.PagesWritten++
	}

	for _, chunk := range doc.Chunks {
		key := fmt.Sprintf("chunks/chunk_%06d.json", chunk.Index)
		if err := w.putJSON(ctx, ns, key, chunk); err != nil {
			return result, err
		}
		result.ChunksWritten++
	}

	w.log.Info("document persisted",
		"document_id", doc.DocumentID,
		"pages", result.PagesWritten,
		"chunks", result.ChunksWritten,
	)
	return result, nil
}

func (w *Writer) putJSON(ctx context.Context, ns, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := w.store.Put(ctx, ns, key, data); err != nil {
		return fmt.Errorf("store %s/%s: %w", ns, key, err)
	}
	return nil
}
