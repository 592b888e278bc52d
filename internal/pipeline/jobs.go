// Package pipeline runs parse and chunk jobs on a background worker pool.
package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/outline/internal/chunker"
	"github.com/dgallion1/outline/internal/outline"
)

// JobStatus represents the state of a background job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusChunking  JobStatus = "chunking"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks the state of a single document.
type Job struct {
	mu sync.Mutex

	ID       string
	DocID    string
	Filename string
	Marker   byte

	Status JobStatus
	Phase  string

	Chunking chunker.Config
	Progress Progress

	CreatedAt time.Time
	UpdatedAt time.Time

	fileData []byte
	doc      *outline.Document
	chunks   []chunker.Chunk
	errors   []string
}

// Progress summarizes what a job has produced so far.
type Progress struct {
	Sections    int      `json:"sections"`
	MaxDepth    int      `json:"max_depth"`
	TotalChunks int      `json:"total_chunks"`
	Errors      []string `json:"errors"`
}

// NewJob creates a queued job for data. A zero marker means the worker's
// default.
func NewJob(filename string, data []byte, marker byte, chunking chunker.Config) *Job {
	now := time.Now()
	return &Job{
		ID:        newJobID(),
		DocID:     DocID(data),
		Filename:  filename,
		Marker:    marker,
		Status:    StatusQueued,
		Phase:     "queued",
		Chunking:  chunking,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
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

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs not updated within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Done() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail records err and marks the job failed during phase.
func (j *Job) Fail(phase string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err.Error())
	j.Progress.Errors = j.errors
	j.Status = StatusFailed
	j.Phase = phase
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

func (j *Job) setDocument(doc *outline.Document) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.doc = doc
	j.Progress.Sections = doc.Count()
	j.Progress.MaxDepth = doc.MaxDepth()
	j.UpdatedAt = time.Now()
}

// complete stores the chunks and releases the upload.
func (j *Job) complete(chunks []chunker.Chunk) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if chunks == nil {
		chunks = []chunker.Chunk{}
	}
	j.chunks = chunks
	j.Progress.TotalChunks = len(chunks)
	j.Status = StatusCompleted
	j.Phase = "done"
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// FileData returns the raw upload, or nil once the job has finished.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Result returns the parsed document and its chunks. ok is false until the
// job has completed.
func (j *Job) Result() (doc *outline.Document, chunks []chunker.Chunk, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusCompleted {
		return nil, nil, false
	}
	return j.doc, j.chunks, true
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	DocID     string    `json:"doc_id"`
	Filename  string    `json:"filename"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	progress := j.Progress
	progress.Errors = errs
	return JobSnapshot{
		ID:        j.ID,
		DocID:     j.DocID,
		Filename:  j.Filename,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress:  progress,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
