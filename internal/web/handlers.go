package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/csvtree/internal/core"
	"github.com/JonMunkholm/csvtree/internal/export"
	"github.com/JonMunkholm/csvtree/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 32 << 20

// importResponse is returned by POST /api/projects.
type importResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Files          int              `json:"files"`
	Folders        int              `json:"folders"`
	Rows           int              `json:"rows"`
	Inserted       int              `json:"inserted"`
	Skipped        int              `json:"skipped"`
	FailedRows     []core.FailedRow `json:"failed_rows"`
	Warnings       []string         `json:"warnings,omitempty"`
	ExportLocation string           `json:"export_location,omitempty"`
	DurationMS     int64            `json:"duration_ms"`
}

// profileResponse describes one registered profile.
type profileResponse struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	PathSeparator string `json:"path_separator,omitempty"`
}

// queryResponse is returned by GET /api/projects/{id}/query.
type queryResponse struct {
	Expr    string `json:"expr"`
	Count   int    `json:"count"`
	Matches []any  `json:"matches"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readUpload parses the multipart form and returns the uploaded file with
// the import settings sent alongside it. On failure the error response has
// already been written. The caller must close the file.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (core.ImportRequest, multipart.File, int64, bool) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(min(maxSize, multipartMemory)); err != nil {
		if isTooLarge(err) {
			s.respondError(w, r, fmt.Errorf("%w: %w", core.ErrFileTooLarge, err))
			return core.ImportRequest{}, nil, 0, false
		}
		s.respondError(w, r, core.InvalidRequest("invalid multipart form", err))
		return core.ImportRequest{}, nil, 0, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		r.MultipartForm.RemoveAll()
		s.respondError(w, r, fmt.Errorf("%w: %w", core.ErrNoFile, err))
		return core.ImportRequest{}, nil, 0, false
	}

	req, err := importRequestFromForm(r, header.Filename)
	if err != nil {
		file.Close()
		r.MultipartForm.RemoveAll()
		s.respondError(w, r, err)
		return core.ImportRequest{}, nil, 0, false
	}
	return req, file, header.Size, true
}

// handleImport streams an uploaded CSV into a new project.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	req, file, size, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	counter := core.NewCountingReader(file, size)
	res, err := s.service.Import(ctx, req, counter)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(ctx).Debug("upload consumed",
		"import_id", res.ID.String(),
		"bytes", counter.BytesRead,
		"progress", counter.Progress(),
	)

	folders, files := res.Project.Stats()
	failed := res.Result.FailedRows
	if failed == nil {
		failed = []core.FailedRow{}
	}
	writeJSON(w, http.StatusCreated, importResponse{
		ID:             res.ID,
		Name:           res.Project.Name(),
		Files:          files,
		Folders:        folders,
		Rows:           res.Result.Rows,
		Inserted:       res.Result.Inserted,
		Skipped:        res.Result.Skipped,
		FailedRows:     failed,
		Warnings:       res.Result.Warnings,
		ExportLocation: res.ExportLocation,
		DurationMS:     res.Duration.Milliseconds(),
	})
}

// handlePreview reports what importing the upload would produce without
// storing it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, file, _, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()
	defer file.Close()

	resp, err := s.service.Preview(WithRequestMetadata(r.Context(), r), req, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// importRequestFromForm reads the optional import settings from the form.
func importRequestFromForm(r *http.Request, fileName string) (core.ImportRequest, error) {
	req := core.ImportRequest{
		ProjectName: strings.TrimSpace(r.FormValue("name")),
		FileName:    fileName,
		Profile:     strings.TrimSpace(r.FormValue("profile")),
		PathColumn:  strings.TrimSpace(r.FormValue("path_column")),
		Duplicates:  strings.TrimSpace(r.FormValue("duplicates")),
	}

	var err error
	if req.PathSeparator, err = core.ParseSeparator(r.FormValue("path_separator")); err != nil {
		return req, core.InvalidRequest("invalid path_separator", err)
	}
	if req.Delimiter, err = core.ParseSeparator(r.FormValue("delimiter")); err != nil {
		return req, core.InvalidRequest("invalid delimiter", err)
	}
	if _, err := core.ParseDuplicatePolicy(req.Duplicates); err != nil {
		return req, core.InvalidRequest("invalid duplicates policy", err)
	}

	if raw := strings.TrimSpace(r.FormValue("substitutions")); raw != "" {
		var renames map[string]string
		if err := json.Unmarshal([]byte(raw), &renames); err != nil {
			return req, core.InvalidRequest("substitutions must be a JSON object of strings", err)
		}
		req.Substitutions = core.Rename(renames)
	}
	return req, nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if list == nil {
		list = []core.ProjectSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetProject writes the project's cc.json document.
// ?pretty=1 indents it.
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadProject(w, r)
	if !ok {
		return
	}

	encode := export.Encode
	if r.URL.Query().Get("pretty") != "" {
		encode = export.EncodeIndent
	}
	w.Header().Set("Content-Type", "application/json")
	if err := encode(w, rec.Tree); err != nil {
		logging.FromContext(r.Context()).Error("encode project", "project_id", rec.ID.String(), "error", err)
	}
}

func (s *Server) handleQueryProject(w http.ResponseWriter, r *http.Request) {
	expr := strings.TrimSpace(r.URL.Query().Get("expr"))
	if expr == "" {
		s.respondError(w, r, core.InvalidRequest("missing expr parameter", nil))
		return
	}

	rec, ok := s.loadProject(w, r)
	if !ok {
		return
	}

	matches, err := export.Query(rec.Tree, expr)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if matches == nil {
		matches = []any{}
	}
	writeJSON(w, http.StatusOK, queryResponse{Expr: expr, Count: len(matches), Matches: matches})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := projectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := s.service.Profiles()
	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		pr := profileResponse{Name: p.Name, Description: p.Description}
		if p.PathSeparator != 0 {
			pr.PathSeparator = string(p.PathSeparator)
		}
		out = append(out, pr)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleStatus reports import slot usage and, when available, cache stats.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"imports": s.service.LimiterStatus(),
		"time":    time.Now().UTC(),
	}
	if s.cacheStats != nil {
		status["cache"] = s.cacheStats()
	}
	writeJSON(w, http.StatusOK, status)
}

// projectID parses the {id} route parameter.
func projectID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, core.InvalidRequest("invalid project id", err)
	}
	return id, nil
}

// loadProject resolves {id} to a stored project, writing the error response
// itself when that fails.
func (s *Server) loadProject(w http.ResponseWriter, r *http.Request) (core.ProjectRecord, bool) {
	id, err := projectID(r)
	if err != nil {
		s.respondError(w, r, err)
		return core.ProjectRecord{}, false
	}
	rec, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return core.ProjectRecord{}, false
	}
	return rec, true
}
