package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/docchunk/internal/document"
)

// JobStatus represents the state of a submitted chunking job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks one document through the host worker pool. Each job maps to
// exactly one pipeline invocation.
type Job struct {
	mu sync.Mutex

	ID           string
	DocumentName string
	Context      document.Context

	Status    JobStatus
	ErrorKind ErrorKind
	ErrorMsg  string
	Summary   *document.Summary

	CreatedAt time.Time
	UpdatedAt time.Time

	// Internal: raw bytes handed to the pipeline, not serialized.
	content []byte
}

// NewJob builds a queued job for the given payload.
func NewJob(documentName string, content []byte, ctx document.Context) *Job {
	now := time.Now()
	return &Job{
		ID:           contentHashHex([]byte(fmt.Sprintf("%s-%d", documentName, now.UnixNano())))[:20],
		DocumentName: documentName,
		Context:      ctx,
		Status:       StatusQueued,
		CreatedAt:    now,
		UpdatedAt:    now,
		content:      content,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// Complete records a successful run.
func (j *Job) Complete(summary document.Summary) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusCompleted
	j.Summary = &summary
	j.content = nil
	j.UpdatedAt = time.Now()
}

// Fail records a failed run.
func (j *Job) Fail(kind ErrorKind, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusFailed
	j.ErrorKind = kind
	j.ErrorMsg = msg
	j.content = nil
	j.UpdatedAt = time.Now()
}

// Content returns the raw document bytes.
func (j *Job) Content() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.content
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID           string            `json:"job_id"`
	DocumentName string            `json:"document_name"`
	Status       JobStatus         `json:"status"`
	ErrorKind    ErrorKind         `json:"error_kind,omitempty"`
	Error        string            `json:"error,omitempty"`
	Summary      *document.Summary `json:"summary,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:           j.ID,
		DocumentName: j.DocumentName,
		Status:       j.Status,
		ErrorKind:    j.ErrorKind,
		Error:        j.ErrorMsg,
		Summary:      j.Summary,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func contentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
