package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/csvtree/internal/logging"
	"github.com/google/uuid"
)

// DefaultImportTimeout is the maximum duration of one import.
const DefaultImportTimeout = 10 * time.Minute

// ServiceConfig holds the defaults applied to every import.
type ServiceConfig struct {
	PathColumn    string
	PathSeparator rune
	Delimiter     rune
	Duplicates    DuplicatePolicy

	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration
}

// ImportRequest describes one CSV import. Zero fields fall back to the
// selected profile and then to the service defaults.
type ImportRequest struct {
	ProjectName   string
	FileName      string
	Profile       string
	Substitutions Substitutions
	PathSeparator rune
	Delimiter     rune
	PathColumn    string
	Duplicates    string // "", "append", "replace" or "reject"
}

// ImportResult is what a finished import reports back.
type ImportResult struct {
	ID             uuid.UUID     `json:"id"`
	Project        *Project      `json:"-"`
	Result         IngestResult  `json:"result"`
	Duration       time.Duration `json:"duration"`
	ExportLocation string        `json:"export_location,omitempty"`
}

// Service runs imports and manages stored projects.
// Each import builds its own Project; imports may run concurrently up to the
// limiter's capacity.
type Service struct {
	repo    Repository
	sink    ExportSink
	limiter *ImportLimiter
	cfg     ServiceConfig
}

// NewService creates a Service backed by repo. sink may be nil.
func NewService(repo Repository, sink ExportSink, cfg ServiceConfig) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultImportTimeout
	}
	return &Service{
		repo:    repo,
		sink:    sink,
		limiter: NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		cfg:     cfg,
	}
}

// Import reads r as CSV into a new project and stores it.
// Skipped rows are reported in the result, not as an error. r is not closed.
func (s *Service) Import(ctx context.Context, req ImportRequest, r io.Reader) (ImportResult, error) {
	if err := ctx.Err(); err != nil {
		return ImportResult{}, err
	}
	if r == nil {
		return ImportResult{}, ErrNoFile
	}

	settings, err := s.resolve(req)
	if err != nil {
		return ImportResult{}, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return ImportResult{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	id := uuid.New()
	name := projectName(req)
	log := logging.WithFields(ctx,
		"component", "importer",
		"import_id", id.String(),
		"project", name,
		"file", req.FileName,
	)
	if ip := IPAddressFromContext(ctx); ip != "" {
		log = log.With("ip", ip)
	}
	if ua := UserAgentFromContext(ctx); ua != "" {
		log = log.With("user_agent", ua)
	}
	log.Info("import started", "profile", req.Profile, "duplicates", settings.duplicates.String())

	start := time.Now()
	project, res, err := settings.ingest(ctx, name, r, log)
	if err != nil {
		log.Error("import failed", "error", err)
		return ImportResult{}, fmt.Errorf("import %s: %w", name, err)
	}

	folders, files := project.Stats()
	rec := ProjectRecord{
		ID:        id,
		Name:      name,
		FileName:  req.FileName,
		CreatedAt: time.Now().UTC(),
		Files:     files,
		Folders:   folders,
		Skipped:   res.Skipped,
		Tree:      project,
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		log.Error("save project failed", "error", err)
		return ImportResult{}, fmt.Errorf("save project: %w", err)
	}

	out := ImportResult{
		ID:       id,
		Project:  project,
		Result:   res,
		Duration: time.Since(start),
	}

	if s.sink != nil {
		loc, err := s.sink.PutProject(ctx, id.String()+".cc.json", project)
		if err != nil {
			// The project is stored; a failed export is reported but not fatal.
			log.Warn("export failed", "error", err)
		} else {
			out.ExportLocation = loc
		}
	}

	log.Info("import finished",
		"rows", res.Rows,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
		"files", files,
		"folders", folders,
		"duration_ms", out.Duration.Milliseconds(),
	)
	return out, nil
}

// Get returns a stored project.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (ProjectRecord, error) {
	return s.repo.Get(ctx, id)
}

// List returns summaries of all stored projects.
func (s *Service) List(ctx context.Context) ([]ProjectSummary, error) {
	return s.repo.List(ctx)
}

// Delete removes a stored project.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logging.WithFields(ctx, "component", "importer").Info("project deleted", "project_id", id.String())
	return nil
}

// Profiles lists the registered substitution profiles.
func (s *Service) Profiles() []Profile {
	return Profiles()
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// Shutdown waits for running imports to finish.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// importSettings is an ImportRequest with profile and service defaults applied.
type importSettings struct {
	subs       Substitutions
	separator  rune
	delimiter  rune
	pathColumn string
	duplicates DuplicatePolicy
}

func (s *Service) resolve(req ImportRequest) (importSettings, error) {
	st := importSettings{
		subs:       req.Substitutions,
		separator:  req.PathSeparator,
		delimiter:  req.Delimiter,
		pathColumn: req.PathColumn,
		duplicates: s.cfg.Duplicates,
	}
	if req.Profile != "" {
		prof, err := LookupProfile(req.Profile)
		if err != nil {
			return st, err
		}
		st.subs = prof.Substitutions.Merge(req.Substitutions)
		if st.separator == 0 {
			st.separator = prof.PathSeparator
		}
	}
	if st.separator == 0 {
		st.separator = s.cfg.PathSeparator
	}
	if st.delimiter == 0 {
		st.delimiter = s.cfg.Delimiter
	}
	if st.pathColumn == "" {
		st.pathColumn = s.cfg.PathColumn
	}
	if req.Duplicates != "" {
		var err error
		if st.duplicates, err = ParseDuplicatePolicy(req.Duplicates); err != nil {
			return st, err
		}
	}
	return st, nil
}

// ingest reads r into a new project, logging every diagnostic to log.
func (st importSettings) ingest(ctx context.Context, name string, r io.Reader, log *slog.Logger) (*Project, IngestResult, error) {
	project := NewProject(name, st.separator, st.delimiter,
		WithPathColumn(st.pathColumn), WithDuplicatePolicy(st.duplicates))
	res, err := project.Ingest(r, IngestOptions{
		Substitutions: st.subs,
		Context:       ctx,
		Diagnostics: func(d Diagnostic) {
			var rse *RowShapeError
			if errors.As(d.Err, &rse) {
				log.Warn("row skipped", "line", rse.Line, "reason", rse.Reason, "detail", rse.Detail)
				return
			}
			log.Warn("header column ignored", "detail", d.Message)
		},
	})
	return project, res, err
}

func projectName(req ImportRequest) string {
	if n := strings.TrimSpace(req.ProjectName); n != "" {
		return n
	}
	if req.FileName != "" {
		base := filepath.Base(req.FileName)
		if n := strings.TrimSuffix(base, filepath.Ext(base)); n != "" {
			return n
		}
	}
	return "project"
}
