package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Blobstore connection
	BlobstoreURL    string
	BlobstoreAPIKey string
	SourceContainer string
	DestContainer   string

	// Auth
	DocchunkAPIKey string

	// Worker pool
	WorkerCount int

	// Upload limits
	MaxUploadBytes int64

	// Chunking
	PDFChunkSize        int
	PDFChunkOverlap     int
	DefaultChunkSize    int
	DefaultChunkOverlap int

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		BlobstoreURL:    envOr("BLOBSTORE_URL", "http://localhost:8080"),
		BlobstoreAPIKey: os.Getenv("BLOBSTORE_API_KEY"),
		SourceContainer: envOr("SOURCE_CONTAINER", "documents"),
		DestContainer:   envOr("DEST_CONTAINER", "chunks"),

		DocchunkAPIKey: os.Getenv("DOCCHUNK_API_KEY"),

		WorkerCount: envInt("WORKER_COUNT", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		PDFChunkSize:        envInt("PDF_CHUNK_SIZE", 250),
		PDFChunkOverlap:     envInt("PDF_CHUNK_OVERLAP", 25),
		DefaultChunkSize:    envInt("DEFAULT_CHUNK_SIZE", 1000),
		DefaultChunkOverlap: envInt("DEFAULT_CHUNK_OVERLAP", 100),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.PDFChunkSize <= 0 {
		cfg.PDFChunkSize = 250
	}
	if cfg.PDFChunkOverlap < 0 || cfg.PDFChunkOverlap >= cfg.PDFChunkSize {
		cfg.PDFChunkOverlap = 25
	}
	if cfg.DefaultChunkSize <= 0 {
		cfg.DefaultChunkSize = 1000
	}
	if cfg.DefaultChunkOverlap < 0 || cfg.DefaultChunkOverlap >= cfg.DefaultChunkSize {
		cfg.DefaultChunkOverlap = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.BlobstoreAPIKey == "" {
		return fmt.Errorf("BLOBSTORE_API_KEY is required")
	}
	if c.DocchunkAPIKey == "" {
		return fmt.Errorf("DOCCHUNK_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
