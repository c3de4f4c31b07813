package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ContextCheckInterval is how many rows are ingested between context checks.
const ContextCheckInterval = 1000

// Diagnostic is one non-fatal problem found while ingesting.
type Diagnostic struct {
	Line    int    // 1-based input line, 0 for header-level warnings
	Message string // operator-facing text, e.g. "Ignoring line 3: empty path: ..."
	Err     error  // *RowShapeError for skipped rows, nil for header warnings
}

// DiagnosticsFunc receives diagnostics as they occur.
type DiagnosticsFunc func(Diagnostic)

// IngestOptions configures a single ingestion.
type IngestOptions struct {
	Substitutions Substitutions
	// PathColumn overrides the project's path column marker when set.
	PathColumn  string
	Diagnostics DiagnosticsFunc
	// Context, when set, is checked every ContextCheckInterval rows.
	Context context.Context
}

func (o IngestOptions) report(d Diagnostic) {
	if o.Diagnostics != nil {
		o.Diagnostics(d)
	}
}

// AddProjectFromCSV ingests r without renaming any header.
func (p *Project) AddProjectFromCSV(r io.Reader) (IngestResult, error) {
	return p.Ingest(r, IngestOptions{})
}

// AddProjectFromCSVWith ingests r, renaming headers with subs first.
func (p *Project) AddProjectFromCSVWith(r io.Reader, subs Substitutions) (IngestResult, error) {
	return p.Ingest(r, IngestOptions{Substitutions: subs})
}

// Ingest reads a header row and then one file per data row from r into the
// project tree.
//
// A bad header is fatal and leaves the tree untouched. Rows that cannot be
// decoded or inserted are skipped, recorded in the result and reported to
// opts.Diagnostics. Read errors from r other than per-record parse errors are
// fatal; rows inserted before them stay in the tree. r is never closed.
func (p *Project) Ingest(r io.Reader, opts IngestOptions) (IngestResult, error) {
	var result IngestResult

	reader := csv.NewReader(NewInputReader(r))
	reader.Comma = p.fieldDelimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rawHeader, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return result, ErrEmptyInput
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return result, invalidHeaderErr("line %d: %v", pe.StartLine, pe.Err)
		}
		return result, fmt.Errorf("read header: %w", err)
	}

	pathColumn := p.pathColumn
	if opts.PathColumn != "" {
		pathColumn = opts.PathColumn
	}
	header, err := ResolveHeader(rawHeader, opts.Substitutions, pathColumn)
	if err != nil {
		return result, err
	}
	result.Header = header
	for _, w := range header.Warnings {
		result.Warnings = append(result.Warnings, w)
		opts.report(Diagnostic{Message: "Ignoring " + w})
	}

	for {
		if opts.Context != nil && result.Rows%ContextCheckInterval == 0 {
			if err := opts.Context.Err(); err != nil {
				return result, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return result, fmt.Errorf("read row %d: %w", result.Rows+1, err)
			}
			result.Rows++
			p.skip(&result, opts, &RowShapeError{
				Line:   pe.StartLine,
				Reason: ReasonMalformed,
				Detail: pe.Err.Error(),
			}, record)
			continue
		}

		result.Rows++
		line, _ := reader.FieldPos(0)

		row, err := DecodeRow(record, header, p.pathSeparator)
		if err == nil {
			err = Insert(p, row)
		}
		if err != nil {
			var rse *RowShapeError
			if !errors.As(err, &rse) {
				return result, fmt.Errorf("line %d: %w", line, err)
			}
			rse.Line = line
			p.skip(&result, opts, rse, record)
			continue
		}
		result.Inserted++
	}

	return result, nil
}

func (p *Project) skip(result *IngestResult, opts IngestOptions, rse *RowShapeError, record []string) {
	result.Skipped++
	result.FailedRows = append(result.FailedRows, FailedRow{
		Line:   rse.Line,
		Reason: rse.Reason + ": " + rse.Detail,
		Data:   record,
	})
	opts.report(Diagnostic{
		Line:    rse.Line,
		Message: "Ignoring " + rse.Error(),
		Err:     rse,
	})
}

// FormatFailedRows renders failed rows one per line, for terminals and logs.
func FormatFailedRows(rows []FailedRow) string {
	var b strings.Builder
	for _, fr := range rows {
		fmt.Fprintf(&b, "line %d: %s\n", fr.Line, fr.Reason)
	}
	return b.String()
}
