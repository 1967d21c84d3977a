package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dconnell/bookmaster/internal/bookmark"
	"github.com/dconnell/bookmaster/internal/export"
	"github.com/dconnell/bookmaster/internal/parser"
	"github.com/dconnell/bookmaster/internal/pipeline"
)

// handleImport accepts a bookmark export upload and queues an async
// import job.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	browser := strings.ToLower(strings.TrimSpace(r.FormValue("browser")))
	if browser != string(bookmark.SourceMarkdown) {
		if _, err := parser.ForBrowser(browser); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:        uuid.NewString(),
		Browser:   browser,
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		Filename:  sanitizeFilename(header.Filename),
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/import/%s/status", job.ID),
	})
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()

	resp := map[string]any{
		"job_id":   snap.ID,
		"browser":  snap.Browser,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	}
	if tree := job.Result(); tree != nil {
		resp["structure"] = tree
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type categorizeRequest struct {
	Bookmarks []bookmark.Bookmark `json:"bookmarks"`
}

// handleCategorize runs one synchronous categorization batch.
func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Bookmarks) == 0 {
		jsonError(w, "no bookmarks provided", http.StatusBadRequest)
		return
	}

	categorized, err := s.categorizer.Categorize(r.Context(), req.Bookmarks)
	if err != nil {
		jsonError(w, "categorization failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"bookmarks": categorized})
}

type organizeRequest struct {
	Bookmarks         []bookmark.Bookmark `json:"bookmarks"`
	ExistingStructure *bookmark.Folder    `json:"existing_structure,omitempty"`
}

// handleOrganize runs structure optimization synchronously. The
// optimizer degrades to the flat fallback folder internally, so this
// endpoint only fails on malformed requests.
func (s *Server) handleOrganize(w http.ResponseWriter, r *http.Request) {
	var req organizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	tree := s.optimizer.Optimize(r.Context(), req.Bookmarks, req.ExistingStructure)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"structure": tree})
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := s.store.Bookmarks(r.Context())
	if err != nil {
		jsonError(w, "failed to list bookmarks: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if bookmarks == nil {
		bookmarks = []bookmark.Bookmark{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"bookmarks": bookmarks})
}

// handleExport renders the stored tree back to Netscape markup.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	tree, err := s.store.Tree(r.Context())
	if err != nil {
		jsonError(w, "failed to load tree: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bookmarks.html"`)
	io.WriteString(w, export.Netscape(tree))
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." {
		name = "bookmarks.html"
	}
	return name
}
