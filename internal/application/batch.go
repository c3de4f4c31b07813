package application

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvtree/internal/core"
)

// FileResult is the outcome of importing one file from a directory.
type FileResult struct {
	Path       string
	Result     core.ImportResult
	FailedFile string // set when skipped rows were written out
	Err        error
}

// DirOptions controls ImportDir.
type DirOptions struct {
	// WriteFailed writes "<name> - failed.csv" next to each file that had
	// skipped rows.
	WriteFailed bool
}

// ImportDir imports every .csv file directly inside dir as its own project,
// in name order. Subdirectories are not visited. A file that fails does not
// stop the batch; the joined error lists every failure.
func ImportDir(ctx context.Context, svc *core.Service, dir string, req core.ImportRequest, opts DirOptions) ([]FileResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		if strings.HasSuffix(entry.Name(), failedSuffix) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	results := make([]FileResult, 0, len(names))
	var errs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("operation cancelled: %w", err)
		}

		fr := importFile(ctx, svc, filepath.Join(dir, name), req)
		if fr.Err == nil && opts.WriteFailed && len(fr.Result.Result.FailedRows) > 0 {
			fr.FailedFile, fr.Err = writeFailedRows(fr.Path, fr.Result.Result.FailedRows)
		}
		if fr.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, fr.Err))
		}
		results = append(results, fr)
	}
	return results, errors.Join(errs...)
}

func importFile(ctx context.Context, svc *core.Service, path string, req core.ImportRequest) FileResult {
	fr := FileResult{Path: path}

	f, err := os.Open(path)
	if err != nil {
		fr.Err = err
		return fr
	}
	defer f.Close()

	req.FileName = filepath.Base(path)
	if req.ProjectName != "" {
		// One shared name would make the projects indistinguishable.
		req.ProjectName += " - " + strings.TrimSuffix(req.FileName, filepath.Ext(req.FileName))
	}
	fr.Result, fr.Err = svc.Import(ctx, req, f)
	return fr
}

const failedSuffix = " - failed.csv"

// writeFailedRows writes skipped rows as Status,Line,cells... for correction
// and re-import.
func writeFailedRows(path string, rows []core.FailedRow) (string, error) {
	out := strings.TrimSuffix(path, filepath.Ext(path)) + failedSuffix

	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("failed writing failure file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Status", "Line"}); err != nil {
		return "", err
	}
	for _, r := range rows {
		record := append([]string{r.Reason, strconv.Itoa(r.Line)}, r.Data...)
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed writing failure file: %w", err)
	}
	return out, f.Close()
}
