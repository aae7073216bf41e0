package writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docchunk/internal/blobstore"
	"github.com/dgallion1/docchunk/internal/document"
)

func testDoc(chunksPerPage []int) *document.Processed {
	doc := &document.Processed{
		DocumentID:   "doc-test",
		DocumentName: "report.pdf",
		Context:      document.Context{Location: "WA", Year: 2023, DocType: "report"},
	}
	index := 0
	for p, n := range chunksPerPage {
		page := document.Page{
			Number:     p + 1,
			Content:    fmt.Sprintf("page %d content", p+1),
			CharCount:  14,
			ChunkCount: n,
		}
		doc.Pages = append(doc.Pages, page)
		for i := 0; i < n; i++ {
			index++
			doc.Chunks = append(doc.Chunks, document.Chunk{
				ID:         document.ChunkID(doc.DocumentID, index),
				Index:      index,
				PageNumber: page.Number,
				Content:    fmt.Sprintf("chunk %d", index),
				Metadata: document.ChunkMetadata{
					DocumentID: doc.DocumentID,
					PageNumber: page.Number,
					ChunkSize:  250, ChunkOverlap: 25,
					Location: "WA", Year: 2023, DocType: "report",
				},
			})
		}
	}
	doc.TotalPages = len(doc.Pages)
	doc.TotalChunks = index
	return doc
}

func TestWrite_FullArtifactSet(t *testing.T) {
	store := blobstore.NewMemory()
	w := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	doc := testDoc([]int{2, 0, 1})
	result, err := w.Write(context.Background(), doc)
	require.NoError(t, err)

	assert.True(t, result.ManifestWritten)
	assert.Equal(t, 3, result.PagesWritten)
	assert.Equal(t, 3, result.ChunksWritten)

	keys := store.Keys("doc-test")
	assert.Equal(t, []string{
		"chunks/chunk_000001.json",
		"chunks/chunk_000002.json",
		"chunks/chunk_000003.json",
		"manifest.json",
		"pages/page_0001.json",
		"pages/page_0002.json",
		"pages/page_0003.json",
	}, keys)

	raw, ok := store.Get("doc-test", "manifest.json")
	require.True(t, ok)
	var m Manifest
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "doc-test", m.DocumentID)
	assert.Equal(t, "report.pdf", m.DocumentName)
	assert.Equal(t, 3, m.TotalPages)
	assert.Equal(t, 3, m.TotalChunks)
	assert.Equal(t, "WA", m.Location)
	assert.Equal(t, 2023, m.Year)

	raw, ok = store.Get("doc-test", "chunks/chunk_000001.json")
	require.True(t, ok)
	var c document.Chunk
	require.NoError(t, json.Unmarshal(raw, &c))
	assert.Equal(t, "doc-test_1", c.ID)
	assert.Equal(t, 1, c.PageNumber)
	assert.Equal(t, 25, c.Metadata.ChunkOverlap)
}

func TestWrite_EmptyContextOmitted(t *testing.T) {
	store := blobstore.NewMemory()
	w := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	doc := testDoc([]int{1})
	doc.Context = document.Context{}
	_, err := w.Write(context.Background(), doc)
	require.NoError(t, err)

	raw, _ := store.Get("doc-test", "manifest.json")
	assert.NotContains(t, string(raw), "location")
	assert.NotContains(t, string(raw), "year")
	assert.NotContains(t, string(raw), "doc_type")
}

// flakyStore fails Put for one specific key.
type flakyStore struct {
	*blobstore.Memory
	failKey string
}

func (f *flakyStore) Put(ctx context.Context, ns, key string, data []byte) error {
	if key == f.failKey {
		return errors.New("storage unavailable")
	}
	return f.Memory.Put(ctx, ns, key, data)
}

func TestWrite_PartialFailureReportsCounts(t *testing.T) {
	// Ten chunks; the sink dies while writing chunk artifact 3.
	store := &flakyStore{
		Memory:  blobstore.NewMemory(),
		failKey: "chunks/chunk_000003.json",
	}
	w := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	doc := testDoc([]int{4, 6})
	result, err := w.Write(context.Background(), doc)
	require.Error(t, err)

	assert.True(t, result.ManifestWritten)
	assert.Equal(t, 2, result.PagesWritten)
	assert.Equal(t, 2, result.PagesTotal)
	assert.Equal(t, 2, result.ChunksWritten)
	assert.Equal(t, 10, result.ChunksTotal)
	assert.Equal(t,
		"manifest written, 2 of 2 page artifacts written, 2 of 10 chunk artifacts written",
		result.String())

	// Prior writes are not rolled back.
	if _, ok := store.Get("doc-test", "chunks/chunk_000002.json"); !ok {
		t.Error("expected earlier chunk artifact to remain")
	}
}

func TestWrite_ManifestFailure(t *testing.T) {
	store := &flakyStore{Memory: blobstore.NewMemory(), failKey: "manifest.json"}
	w := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := w.Write(context.Background(), testDoc([]int{1}))
	require.Error(t, err)
	assert.False(t, result.ManifestWritten)
	assert.Zero(t, result.PagesWritten)
	assert.True(t, strings.HasPrefix(result.String(), "manifest not written"))
}
