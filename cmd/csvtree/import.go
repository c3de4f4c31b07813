package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/csvtree/internal/application"
	"github.com/JonMunkholm/csvtree/internal/config"
	"github.com/JonMunkholm/csvtree/internal/core"
	"github.com/JonMunkholm/csvtree/internal/export"
	"github.com/spf13/cobra"
)

// importFlags are the per-run overrides shared by import and import-dir.
type importFlags struct {
	name          string
	pathSeparator string
	delimiter     string
	pathColumn    string
	profile       string
	subst         []string
	duplicates    string
}

func (f *importFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "project name (default: file name without extension)")
	fl.StringVar(&f.pathSeparator, "path-separator", "", `path separator, e.g. "/" or "\" (default: IMPORT_PATH_SEPARATOR or the profile's)`)
	fl.StringVar(&f.delimiter, "delimiter", "", `CSV field delimiter, "tab" for tabs (default: IMPORT_DELIMITER)`)
	fl.StringVar(&f.pathColumn, "path-column", "", "header of the path column after substitution (default: IMPORT_PATH_COLUMN)")
	fl.StringVar(&f.profile, "profile", "", "substitution profile, see 'csvtree profiles'")
	fl.StringArrayVar(&f.subst, "subst", nil, "rename header old to new, as old=new (repeatable)")
	fl.StringVar(&f.duplicates, "duplicates", "", "same-name siblings: append, replace or reject (default: IMPORT_DUPLICATES)")
}

func (f *importFlags) request() (core.ImportRequest, error) {
	req := core.ImportRequest{
		ProjectName: f.name,
		Profile:     f.profile,
		PathColumn:  f.pathColumn,
		Duplicates:  f.duplicates,
	}

	var err error
	if req.PathSeparator, err = core.ParseSeparator(f.pathSeparator); err != nil {
		return req, fmt.Errorf("--path-separator: %w", err)
	}
	if req.Delimiter, err = core.ParseSeparator(f.delimiter); err != nil {
		return req, fmt.Errorf("--delimiter: %w", err)
	}
	if _, err := core.ParseDuplicatePolicy(f.duplicates); err != nil {
		return req, fmt.Errorf("--duplicates: %w", err)
	}

	if len(f.subst) > 0 {
		renames := make(map[string]string, len(f.subst))
		for _, s := range f.subst {
			from, to, ok := strings.Cut(s, "=")
			if !ok || strings.TrimSpace(from) == "" {
				return req, fmt.Errorf("--subst %q: want old=new", s)
			}
			renames[from] = to
		}
		req.Substitutions = core.Rename(renames)
	}
	return req, nil
}

func newImportCmd(c *cli) *cobra.Command {
	var (
		flags  importFlags
		out    string
		pretty bool
		upload bool
		save   bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a CSV file and write its tree as cc.json",
		Long: `Import one CSV file and write the resulting tree as cc.json.

Rows that cannot be placed in the tree are skipped and reported on stderr.
Use "-" to read from stdin.

Examples:
  csvtree import metrics.csv > metrics.cc.json
  csvtree import --profile sourcemonitor --out sm.cc.json sm.csv
  csvtree import --subst "File Name=path" --subst Lines=loc data.csv
  csvtree import --save --upload metrics.csv
  csvtree import --dry-run metrics.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			if dryRun && (upload || save) {
				return fmt.Errorf("--dry-run cannot be combined with --upload or --save")
			}

			in, fileName, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			req.FileName = fileName

			cfg := *c.cfg
			if !upload {
				cfg.Export = config.ExportConfig{}
			} else if !cfg.Export.Enabled() {
				return fmt.Errorf("--upload needs EXPORT_S3_BUCKET and the other EXPORT_S3_* settings")
			}
			if !save {
				cfg.Store = config.StoreConfig{Driver: config.DriverMemory}
			}

			ctx := cmd.Context()
			app, err := application.New(ctx, &cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if dryRun {
				preview, err := app.Service.Preview(ctx, req, in)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(preview)
			}

			res, err := app.Service.Import(ctx, req, in)
			if err != nil {
				return err
			}

			if err := writeTree(cmd.OutOrStdout(), out, pretty, res.Project); err != nil {
				return err
			}
			reportImport(cmd.ErrOrStderr(), res)
			if save {
				fmt.Fprintf(cmd.ErrOrStderr(), "saved as %s\n", res.ID)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", `write cc.json to this file instead of stdout`)
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the cc.json output")
	cmd.Flags().BoolVar(&upload, "upload", false, "also upload the cc.json to the EXPORT_S3_BUCKET")
	cmd.Flags().BoolVar(&save, "save", false, "also save the project to the configured STORE_DRIVER")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print a preview of the import as JSON instead of the tree")
	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, string, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), "stdin.csv", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	return f, filepath.Base(path), nil
}

// writeTree encodes p to path, or to stdout when path is empty or "-".
func writeTree(stdout io.Writer, path string, pretty bool, p *core.Project) error {
	encode := export.Encode
	if pretty {
		encode = export.EncodeIndent
	}
	if path == "" || path == "-" {
		return encode(stdout, p)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f, p); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func reportImport(w io.Writer, res core.ImportResult) {
	for _, warning := range res.Result.Warnings {
		fmt.Fprintf(w, "Ignoring %s\n", warning)
	}
	for _, fr := range res.Result.FailedRows {
		fmt.Fprintf(w, "Ignoring line %d: %s\n", fr.Line, fr.Reason)
	}

	folders, files := res.Project.Stats()
	fmt.Fprintf(w, "%s: %d files in %d folders from %d rows", res.Project.Name(), files, folders, res.Result.Rows)
	if res.Result.Skipped > 0 {
		fmt.Fprintf(w, ", %d skipped", res.Result.Skipped)
	}
	fmt.Fprintln(w)
	if res.ExportLocation != "" {
		fmt.Fprintf(w, "uploaded to %s\n", res.ExportLocation)
	}
}
