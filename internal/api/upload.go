package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/outline/internal/outline"
	"github.com/dgallion1/outline/internal/parser"
)

// rawFilename names request bodies sent without a multipart file.
const rawFilename = "document.org"

// upload is one document received in a request.
type upload struct {
	filename string
	data     []byte
}

// httpError carries the status code a handler should answer with.
type httpError struct {
	code int
	msg  string
}

func (e *httpError) Error() string { return e.msg }

// readUpload returns the document in r: the multipart "file" field when the
// request is multipart, otherwise the raw body. A raw body is outline markup
// unless the "filename" query parameter names another format.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	// Limit total request size; extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if isMultipart(r) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, uploadReadError("invalid multipart form", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, &httpError{http.StatusBadRequest, "file is required: " + err.Error()}
		}
		defer file.Close()
		return s.readFile(file, sanitizeFilename(header.Filename))
	}

	filename := rawFilename
	if name := r.URL.Query().Get("filename"); name != "" {
		filename = sanitizeFilename(name)
	}
	return s.readFile(r.Body, filename)
}

func (s *Server) readFile(f io.Reader, filename string) (*upload, error) {
	if !parser.IsSupportedExtension(filename) {
		return nil, &httpError{http.StatusBadRequest, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename))}
	}
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, uploadReadError("failed to read file", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, &httpError{http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)}
	}
	return &upload{filename: filename, data: data}, nil
}

func uploadReadError(msg string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &httpError{http.StatusRequestEntityTooLarge, "request too large"}
	}
	return &httpError{http.StatusBadRequest, msg + ": " + err.Error()}
}

func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// param reads a request option from the multipart form or the query string.
// The raw body is never consumed as a form.
func param(r *http.Request, key string) string {
	if r.MultipartForm != nil {
		if v := r.MultipartForm.Value[key]; len(v) > 0 {
			return v[0]
		}
	}
	return r.URL.Query().Get(key)
}

func intParam(r *http.Request, key string, fallback int) int {
	if v := param(r, key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// overlapParam reads the "overlap" option. Zero turns overlap off.
func overlapParam(r *http.Request, fallback int) int {
	if v := param(r, "overlap"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

// outlineFor returns the outline parser for a request, honoring a "marker"
// override.
func (s *Server) outlineFor(r *http.Request) (*outline.Parser, error) {
	m := param(r, "marker")
	if m == "" {
		return s.outline, nil
	}
	if len(m) != 1 {
		return nil, &httpError{http.StatusBadRequest, fmt.Sprintf("marker must be a single character, got %q", m)}
	}
	op, err := outline.New(outline.WithMarker(m[0]))
	if err != nil {
		return nil, &httpError{http.StatusBadRequest, err.Error()}
	}
	return op, nil
}

func (s *Server) parseUpload(op *outline.Parser, u *upload) (*outline.Document, error) {
	p, err := parser.ForFile(u.filename, parser.Options{
		Outline:           op,
		FallbackPdftotext: s.cfg.PDFFallbackPdftotext,
	})
	if err != nil {
		return nil, &httpError{http.StatusBadRequest, err.Error()}
	}
	doc, err := p.Parse(bytes.NewReader(u.data), u.filename)
	if err != nil {
		return nil, parseError(err)
	}
	return doc, nil
}

func parseError(err error) error {
	if errors.Is(err, outline.ErrMalformedHeading) {
		return &httpError{http.StatusUnprocessableEntity, err.Error()}
	}
	return &httpError{http.StatusBadRequest, "parse failed: " + err.Error()}
}

// writeError answers with err's status code, or 500 for unexpected errors.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var he *httpError
	if errors.As(err, &he) {
		jsonError(w, he.msg, he.code)
		return
	}
	s.log.Error("request failed", "path", r.URL.Path, "error", err)
	jsonError(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
