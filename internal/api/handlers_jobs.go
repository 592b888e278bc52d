package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/outline/internal/chunker"
	"github.com/dgallion1/outline/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleSubmitJob queues a document for background parsing and chunking.
func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)
	if s.jobs == nil {
		jsonError(w, "background jobs are disabled", http.StatusServiceUnavailable)
		return
	}
	u, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	op, err := s.outlineFor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	job := pipeline.NewJob(u.filename, u.data, op.Marker(), chunker.Config{
		ChunkSize:    intParam(r, "chunk_size", s.cfg.DefaultChunkSize),
		ChunkOverlap: overlapParam(r, s.cfg.DefaultChunkOverlap),
		MinChunk:     intParam(r, "min_chunk", s.cfg.DefaultMinChunk),
	})
	if err := s.jobs.Submit(job); err != nil {
		if !errors.Is(err, pipeline.ErrQueueFull) && !errors.Is(err, pipeline.ErrStopped) {
			s.writeError(w, r, err)
			return
		}
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"doc_id":   job.DocID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.lookupJob(w, r)
	if job == nil {
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleJobResult returns the tree and chunks of a completed job. Jobs
// still running answer 409 with their status.
func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	job := s.lookupJob(w, r)
	if job == nil {
		return
	}
	doc, chunks, ok := job.Result()
	if !ok {
		snap := job.Snapshot()
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  fmt.Sprintf("job is %s", snap.Status),
			"status": snap.Status,
			"errors": snap.Progress.Errors,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":    job.ID,
		"doc_id":    job.DocID,
		"filename":  job.Filename,
		"count":     doc.Count(),
		"max_depth": doc.MaxDepth(),
		"sections":  doc.Sections,
		"chunks":    chunks,
	})
}

func (s *Server) lookupJob(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	if s.jobs == nil {
		jsonError(w, "background jobs are disabled", http.StatusServiceUnavailable)
		return nil
	}
	job := s.jobs.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil
	}
	return job
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		jsonError(w, "background jobs are disabled", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth":  s.jobs.QueueDepth(),
		"tracked_jobs": s.jobs.TrackedJobs(),
		"durations":    s.jobs.Stats(),
	})
}
