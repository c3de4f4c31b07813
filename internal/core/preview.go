package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/csvtree/internal/logging"
)

// PreviewSummary contains the summary counts for an import preview.
type PreviewSummary struct {
	TotalRows int `json:"totalRows"`
	Inserted  int `json:"inserted"`
	Skipped   int `json:"skipped"`
	Files     int `json:"files"`
	Folders   int `json:"folders"`
}

// ColumnPreview describes what one header cell resolved to.
type ColumnPreview struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// PreviewResponse is what an import would produce, without storing anything.
type PreviewResponse struct {
	Name             string          `json:"name"`
	Summary          PreviewSummary  `json:"summary"`
	Columns          []ColumnPreview `json:"columns"`
	PathSamples      []string        `json:"pathSamples"`
	ErrorSamples     []FailedRow     `json:"errorSamples"`
	Warnings         []string        `json:"warnings,omitempty"`
	ProcessingTimeMs int64           `json:"processingTimeMs"`
}

// Sample limits
const (
	maxPathSamples  = 10
	maxErrorSamples = 20
)

// Preview runs the import described by req against r and reports the
// outcome. Nothing is stored or exported. A rejected header is still an
// error, exactly as Import would return it.
func (s *Service) Preview(ctx context.Context, req ImportRequest, r io.Reader) (*PreviewResponse, error) {
	startTime := time.Now()
	if r == nil {
		return nil, ErrNoFile
	}

	settings, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	name := projectName(req)
	log := logging.WithFields(ctx, "component", "preview", "project", name, "file", req.FileName)

	project, res, err := settings.ingest(ctx, name, r, log)
	if err != nil {
		return nil, fmt.Errorf("preview %s: %w", name, err)
	}

	folders, files := project.Stats()
	resp := &PreviewResponse{
		Name: name,
		Summary: PreviewSummary{
			TotalRows: res.Rows,
			Inserted:  res.Inserted,
			Skipped:   res.Skipped,
			Files:     files,
			Folders:   folders,
		},
		Columns:      make([]ColumnPreview, 0, len(res.Header.Columns)),
		PathSamples:  []string{},
		ErrorSamples: []FailedRow{},
		Warnings:     res.Warnings,
	}

	for _, c := range res.Header.Columns {
		resp.Columns = append(resp.Columns, ColumnPreview{Index: c.Index, Name: c.Name, Role: c.Role.String()})
	}

	paths := project.Paths()
	resp.PathSamples = append(resp.PathSamples, paths[:min(len(paths), maxPathSamples)]...)
	resp.ErrorSamples = append(resp.ErrorSamples, res.FailedRows[:min(len(res.FailedRows), maxErrorSamples)]...)

	resp.ProcessingTimeMs = time.Since(startTime).Milliseconds()
	log.Debug("preview finished", "rows", res.Rows, "skipped", res.Skipped)
	return resp, nil
}
