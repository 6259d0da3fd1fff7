package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/sylcheck/internal/checker"
	"github.com/dgallion1/sylcheck/internal/parser"
	"github.com/dgallion1/sylcheck/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// formOverhead is the extra body allowance for multipart framing.
const formOverhead = 1 << 20

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+formOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fhs := r.MultipartForm.File["file"]
	if len(fhs) == 0 {
		jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}
	filename, data, status, err := s.readUpload(fhs[0])
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	rep, err := s.checker.CheckReader(r.Context(), bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("check failed", "file", filename, "error", err)
		jsonError(w, err.Error(), checkErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleBatchCheck(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxUploadBytes*int64(s.cfg.MaxBatchFiles) + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fhs := r.MultipartForm.File["files"]
	if len(fhs) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(fhs) > s.cfg.MaxBatchFiles {
		jsonError(w, fmt.Sprintf("too many files (%d > %d)", len(fhs), s.cfg.MaxBatchFiles), http.StatusBadRequest)
		return
	}

	var files []pipeline.File
	var rejected []map[string]string
	for _, fh := range fhs {
		filename, data, _, err := s.readUpload(fh)
		if err != nil {
			rejected = append(rejected, map[string]string{
				"filename": sanitizeFilename(fh.Filename),
				"error":    err.Error(),
			})
			continue
		}
		files = append(files, pipeline.File{Name: filename, Data: data})
	}
	if len(files) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    "no acceptable files",
			"rejected": rejected,
		})
		return
	}

	job := pipeline.NewJob(files)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"files":    len(files),
		"rejected": rejected,
		"poll_url": fmt.Sprintf("/api/jobs/%s", snap.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// readUpload validates and reads one uploaded file. The returned status is
// meaningful only when err is non-nil.
func (s *Server) readUpload(fh *multipart.FileHeader) (string, []byte, int, error) {
	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		return filename, nil, http.StatusBadRequest,
			fmt.Errorf("unsupported file type %q, allowed: %s", filepath.Ext(filename), strings.Join(parser.Extensions(), ", "))
	}

	f, err := fh.Open()
	if err != nil {
		return filename, nil, http.StatusInternalServerError, errors.New("failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, http.StatusInternalServerError, errors.New("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, http.StatusRequestEntityTooLarge,
			fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return filename, data, 0, nil
}

func checkErrorStatus(err error) int {
	var ee *checker.ExtractionError
	switch {
	case errors.Is(err, checker.ErrInsufficientText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.As(err, &ee):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
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
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
