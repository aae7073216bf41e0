package staging

import (
	"fmt"
	"os"
	"sync"
)

// Staged is a temporary on-disk holder for raw document bytes. The PDF
// and DOCX libraries need a ReadSeeker with a known size, so content is
// staged to a file for the duration of one pipeline invocation.
type Staged struct {
	path string
	size int64

	releaseOnce sync.Once
}

// Stage writes data to a temp file named with the document's suffix.
// The caller owns the resource and must call Release on every exit path.
func Stage(data []byte, suffix string) (*Staged, error) {
	tmp, err := os.CreateTemp("", "docchunk-*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	return &Staged{path: path, size: int64(len(data))}, nil
}

// Path returns the location of the staged content.
func (s *Staged) Path() string { return s.path }

// Size returns the staged content length in bytes.
func (s *Staged) Size() int64 { return s.size }

// Open returns a fresh read handle on the staged content.
func (s *Staged) Open() (*os.File, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open staged content: %w", err)
	}
	return f, nil
}

// Release deletes the staged file. Safe to call more than once.
func (s *Staged) Release() {
	s.releaseOnce.Do(func() {
		os.Remove(s.path)
	})
}
