package staging

import (
	"io"
	"os"
	"testing"
)

func TestStage_RoundTrip(t *testing.T) {
	data := []byte("staged payload")
	s, err := Stage(data, ".txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Release()

	if s.Size() != int64(len(data)) {
		t.Errorf("size: got %d, want %d", s.Size(), len(data))
	}

	f, err := s.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("content: got %q, want %q", got, data)
	}
}

func TestStage_ReleaseRemovesFile(t *testing.T) {
	s, err := Stage([]byte("x"), ".pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := s.Path()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("staged file missing before release: %v", err)
	}

	s.Release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("staged file still present after release")
	}

	// Second release must be a no-op.
	s.Release()
}
