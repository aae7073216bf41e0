package document

import "fmt"

// Context is caller-supplied metadata propagated onto every chunk.
// All fields are optional.
type Context struct {
	Location string `json:"location,omitempty"`
	Year     int    `json:"year,omitempty"`
	DocType  string `json:"doc_type,omitempty"`
}

// Metadata describes a document before processing: its resolved kind
// plus the propagated caller context. Immutable once computed.
type Metadata struct {
	Name      string
	Kind      string
	SizeBytes int64
	Context   Context
}

// ChunkParams is the size/overlap pair a processor chunks with,
// measured in characters.
type ChunkParams struct {
	Size    int
	Overlap int
}

// Page is a single page of extracted text.
type Page struct {
	Number     int    `json:"page_number"` // 1-based, gapless
	Content    string `json:"content"`
	CharCount  int    `json:"char_count"`
	ChunkCount int    `json:"chunk_count"`
}

// ChunkMetadata is the metadata bag attached to every chunk.
type ChunkMetadata struct {
	DocumentID   string `json:"document_id"`
	PageNumber   int    `json:"page_number"`
	Location     string `json:"location,omitempty"`
	Year         int    `json:"year,omitempty"`
	DocType      string `json:"doc_type,omitempty"`
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap"`
}

// Chunk is a bounded-length text fragment, the unit consumed by
// downstream embedding and indexing.
type Chunk struct {
	ID         string        `json:"chunk_id"`
	Index      int           `json:"chunk_index"` // 1-based, document-wide
	PageNumber int           `json:"page_number"`
	Content    string        `json:"content"`
	Metadata   ChunkMetadata `json:"metadata"`
}

// ChunkID derives the unique chunk id for a document-wide index.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_%d", documentID, index)
}

// Processed is a fully chunked document, finalized before write-out.
// The document id is generated once per pipeline run and never changes.
type Processed struct {
	DocumentID   string
	DocumentName string
	TotalPages   int
	TotalChunks  int
	Pages        []Page
	Chunks       []Chunk
	Context      Context
}

// Summary is what a successful pipeline run returns.
type Summary struct {
	DocumentID  string `json:"document_id"`
	TotalPages  int    `json:"total_pages"`
	TotalChunks int    `json:"total_chunks"`
}
