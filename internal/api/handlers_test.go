package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docchunk/internal/blobstore"
	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/pipeline"
	"github.com/dgallion1/docchunk/internal/processor"
	"github.com/dgallion1/docchunk/internal/writer"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T, store *blobstore.Memory) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := processor.DefaultRegistry()
	pipe := pipeline.New(registry, writer.New(store, log), log)
	orch, err := pipeline.NewOrchestrator(pipe, log, pipeline.WithWorkerCount(2))
	require.NoError(t, err)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	cfg := config.Config{
		DocchunkAPIKey: testAPIKey,
		MaxUploadBytes: 1 << 20,
	}
	return NewServer(orch, store, registry, log, cfg)
}

func doRequest(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	srv := newTestServer(t, blobstore.NewMemory())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChunkRequiresAuth(t *testing.T) {
	srv := newTestServer(t, blobstore.NewMemory())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chunk", strings.NewReader(`{}`))
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/chunk", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer wrong")
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChunkUnknownDocument(t *testing.T) {
	srv := newTestServer(t, blobstore.NewMemory())
	req := httptest.NewRequest(http.MethodPost, "/api/chunk",
		strings.NewReader(`{"document_name":"missing.txt"}`))
	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChunkUnsupportedSuffix(t *testing.T) {
	srv := newTestServer(t, blobstore.NewMemory())
	req := httptest.NewRequest(http.MethodPost, "/api/chunk",
		strings.NewReader(`{"document_name":"sheet.xlsx"}`))
	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported file type")
}

func TestChunkRunsToCompletion(t *testing.T) {
	store := blobstore.NewMemory()
	store.Seed("notes.txt", []byte(strings.Repeat("stored document text ", 40)))
	srv := newTestServer(t, store)

	req := httptest.NewRequest(http.MethodPost, "/api/chunk",
		strings.NewReader(`{"document_name":"notes.txt","location":"WA","year":2023}`))
	rec := doRequest(srv, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.JobID)

	snap := pollJob(t, srv, accepted.PollURL)
	assert.Equal(t, pipeline.StatusCompleted, snap.Status)
	require.NotNil(t, snap.Summary)
	assert.Equal(t, 1, snap.Summary.TotalPages)
	assert.Greater(t, snap.Summary.TotalChunks, 0)

	_, ok := store.Get(snap.Summary.DocumentID, "manifest.json")
	assert.True(t, ok, "manifest artifact should exist after completion")
}

func TestIngestMultipartUpload(t *testing.T) {
	store := blobstore.NewMemory()
	srv := newTestServer(t, store)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "uploaded.txt")
	require.NoError(t, err)
	_, err = io.WriteString(fw, strings.Repeat("uploaded body text ", 30))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("doc_type", "memo"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := doRequest(srv, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted struct {
		PollURL string `json:"poll_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))

	snap := pollJob(t, srv, accepted.PollURL)
	assert.Equal(t, pipeline.StatusCompleted, snap.Status)
}

func TestJobStatusNotFound(t *testing.T) {
	srv := newTestServer(t, blobstore.NewMemory())
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil)
	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func pollJob(t *testing.T, srv *Server, pollURL string) pipeline.JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := doRequest(srv, httptest.NewRequest(http.MethodGet, pollURL, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var snap pipeline.JobSnapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		if snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusFailed {
			return snap
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish")
	return pipeline.JobSnapshot{}
}
