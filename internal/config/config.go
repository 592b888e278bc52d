package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port,omitempty"`

	// Auth; requests are not authenticated when empty.
	APIKey string `yaml:"api_key,omitempty"`

	// Heading marker for outline markup.
	Marker string `yaml:"marker,omitempty"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes,omitempty"`

	// Chunking defaults
	DefaultChunkSize    int `yaml:"chunk_size,omitempty"`
	DefaultChunkOverlap int `yaml:"chunk_overlap,omitempty"`
	DefaultMinChunk     int `yaml:"min_chunk,omitempty"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext,omitempty"`

	// Background jobs
	WorkerCount  int           `yaml:"worker_count,omitempty"`
	MaxQueueSize int           `yaml:"max_queue_size,omitempty"`
	JobTTL       time.Duration `yaml:"job_ttl,omitempty"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:                 "8090",
		Marker:               "*",
		MaxUploadBytes:       52428800, // 50MB
		DefaultChunkSize:     1500,
		DefaultChunkOverlap:  200,
		DefaultMinChunk:      100,
		PDFFallbackPdftotext: true,
		WorkerCount:          4,
		MaxQueueSize:         100,
		JobTTL:               time.Hour,
	}
}

// Load reads the configuration from environment variables.
func Load() Config {
	return fromEnv(Defaults())
}

// LoadFile reads a YAML config file and applies environment overrides on
// top. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return Config{}, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}
	return fromEnv(cfg), nil
}

func fromEnv(base Config) Config {
	cfg := Config{
		Port: envOr("PORT", base.Port),

		APIKey: envOr("OUTLINE_API_KEY", base.APIKey),

		Marker: envOr("OUTLINE_MARKER", base.Marker),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", base.MaxUploadBytes),

		DefaultChunkSize:    envInt("DEFAULT_CHUNK_SIZE", base.DefaultChunkSize),
		DefaultChunkOverlap: envInt("DEFAULT_CHUNK_OVERLAP", base.DefaultChunkOverlap),
		DefaultMinChunk:     envInt("DEFAULT_MIN_CHUNK", base.DefaultMinChunk),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", base.PDFFallbackPdftotext),

		WorkerCount:  envInt("WORKER_COUNT", base.WorkerCount),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", base.MaxQueueSize),
		JobTTL:       envDuration("JOB_TTL", base.JobTTL),
	}

	d := Defaults()
	if cfg.Port == "" {
		cfg.Port = d.Port
	}
	if cfg.Marker == "" {
		cfg.Marker = d.Marker
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = d.MaxUploadBytes
	}
	if cfg.DefaultChunkSize <= 0 {
		cfg.DefaultChunkSize = d.DefaultChunkSize
	}
	if cfg.DefaultChunkOverlap < 0 {
		cfg.DefaultChunkOverlap = d.DefaultChunkOverlap
	}
	if cfg.DefaultMinChunk <= 0 {
		cfg.DefaultMinChunk = d.DefaultMinChunk
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = d.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = d.MaxQueueSize
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = d.JobTTL
	}

	return cfg
}

func (c Config) Validate() error {
	if len(c.Marker) != 1 {
		return fmt.Errorf("OUTLINE_MARKER must be a single character, got %q", c.Marker)
	}
	if c.DefaultChunkOverlap >= c.DefaultChunkSize {
		return fmt.Errorf("DEFAULT_CHUNK_OVERLAP (%d) must be smaller than DEFAULT_CHUNK_SIZE (%d)",
			c.DefaultChunkOverlap, c.DefaultChunkSize)
	}
	return nil
}

// MarkerByte returns the configured marker. Call Validate first.
func (c Config) MarkerByte() byte {
	return c.Marker[0]
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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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

// DefaultPath returns ~/.config/outline/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "outline", "config.yaml"), nil
}
