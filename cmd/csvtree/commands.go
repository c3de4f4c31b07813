package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/JonMunkholm/csvtree/internal/admin"
	"github.com/JonMunkholm/csvtree/internal/application"
	"github.com/JonMunkholm/csvtree/internal/core"
	"github.com/JonMunkholm/csvtree/internal/export"
	"github.com/spf13/cobra"
)

func newImportDirCmd(c *cli) *cobra.Command {
	var (
		flags       importFlags
		writeFailed bool
	)

	cmd := &cobra.Command{
		Use:   "import-dir <dir>",
		Short: "Import every CSV file in a directory into the project store",
		Long: `Import each .csv file directly inside dir as its own project and save it
to the configured STORE_DRIVER. A file that fails does not stop the others.

Examples:
  STORE_DRIVER=sqlite csvtree import-dir ./exports
  csvtree import-dir --profile sourcemonitor --write-failed ./exports`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, err := application.New(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			results, err := application.ImportDir(ctx, app.Service, args[0], req, application.DirOptions{WriteFailed: writeFailed})
			for _, r := range results {
				name := filepath.Base(r.Path)
				if r.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, r.Err)
					continue
				}
				folders, files := r.Result.Project.Stats()
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d files\t%d folders\t%d skipped\n",
					r.Result.ID, name, files, folders, r.Result.Result.Skipped)
				if r.FailedFile != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: skipped rows written to %s\n", name, r.FailedFile)
				}
			}
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&writeFailed, "write-failed", false, `write skipped rows to "<name> - failed.csv" next to each file`)
	return cmd
}

func newQueryCmd() *cobra.Command {
	var pathSeparator string

	cmd := &cobra.Command{
		Use:   "query <file.cc.json> <jsonpath>",
		Short: "Run a JSONPath expression against a cc.json file",
		Long: `Evaluate a JSONPath expression against a cc.json document and print
each match as one JSON line.

Examples:
  csvtree query tree.cc.json '$..children[?(@.type == "File")].name'
  csvtree query tree.cc.json '$..children[?(@.attributes.loc > 100)].name'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sep, err := core.ParseSeparator(pathSeparator)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			p, err := export.Decode(f, sep)
			if err != nil {
				return err
			}
			matches, err := export.Query(p, args[1])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, m := range matches {
				if err := enc.Encode(m); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pathSeparator, "path-separator", "/", "path separator of the tree's project")
	return cmd
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the built-in substitution profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSEPARATOR\tDESCRIPTION")
			for _, p := range core.Profiles() {
				sep := "-"
				if p.PathSeparator != 0 {
					sep = string(p.PathSeparator)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, sep, p.Description)
			}
			return tw.Flush()
		},
	}
}

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and tree viewer",
		Long: `Run the HTTP server configured by the SERVER_*, STORE_*, IMPORT_* and
EXPORT_S3_* settings until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := application.New(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Fprintf(cmd.ErrOrStderr(), "listening on %s\n", c.cfg.Server.Addr())
			return app.Serve(ctx)
		},
	}
}

func newResetCmd(c *cli) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every project in the configured store",
		Long: `Delete every stored project.

Warning: This operation cannot be undone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete all projects without --yes")
			}

			ctx := cmd.Context()
			app, err := application.New(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := admin.ResetAll(ctx, app.Store)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d projects\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
