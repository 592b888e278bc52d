package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dgallion1/outline/internal/chunker"
	"github.com/dgallion1/outline/internal/outline"
	"github.com/dgallion1/outline/internal/pipeline"
)

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)
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
	doc, err := s.parseUpload(op, u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":    pipeline.DocID(u.data),
		"filename":  u.filename,
		"count":     doc.Count(),
		"max_depth": doc.MaxDepth(),
		"sections":  doc.Sections,
	})
}

func (s *Server) handleBatchParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		s.writeError(w, r, uploadReadError("invalid multipart form", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	op, err := s.outlineFor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var results []map[string]any
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		result := map[string]any{"filename": filename}
		results = append(results, result)

		f, err := fh.Open()
		if err != nil {
			result["error"] = "failed to open file"
			continue
		}
		u, err := s.readFile(f, filename)
		f.Close()
		if err != nil {
			result["error"] = err.Error()
			continue
		}
		doc, err := s.parseUpload(op, u)
		if err != nil {
			result["error"] = err.Error()
			continue
		}
		result["doc_id"] = pipeline.DocID(u.data)
		result["count"] = doc.Count()
		result["max_depth"] = doc.MaxDepth()
		result["sections"] = doc.Sections
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": results})
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)
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
	doc, err := s.parseUpload(op, u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cfg := chunker.Config{
		ChunkSize:    intParam(r, "chunk_size", s.cfg.DefaultChunkSize),
		ChunkOverlap: overlapParam(r, s.cfg.DefaultChunkOverlap),
		MinChunk:     intParam(r, "min_chunk", s.cfg.DefaultMinChunk),
	}
	chunks := chunker.ChunkDocument(doc, cfg)
	if chunks == nil {
		chunks = []chunker.Chunk{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id": pipeline.DocID(u.data),
		"chunks": chunks,
	})
}

// handleRender turns a JSON document back into outline markup. Sections are
// re-nested by depth in document order, so a tree whose children are not
// deeper than their parents comes back normalized. Null sections and titles
// spanning lines are rejected since they cannot be written as one heading.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var in outline.Document
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, r, uploadReadError("invalid json", err))
		return
	}
	op, err := s.outlineFor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		records []outline.Record
		invalid error
	)
	in.Walk(func(_ []*outline.Section, sec *outline.Section) bool {
		switch {
		case invalid != nil:
			return false
		case sec == nil:
			invalid = &httpError{http.StatusUnprocessableEntity, fmt.Sprintf("section %d is null", len(records))}
			return false
		case strings.Contains(sec.Title, "\n"):
			invalid = &httpError{http.StatusUnprocessableEntity, fmt.Sprintf("section %d: title %q contains a newline", len(records), sec.Title)}
			return false
		}
		records = append(records, outline.Record{Depth: sec.Depth, Title: sec.Title, Body: sec.Body})
		return true
	})
	if invalid != nil {
		s.writeError(w, r, invalid)
		return
	}
	doc, err := outline.Build(records)
	if err != nil {
		s.writeError(w, r, parseError(err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, op.Render(doc))
}
