package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JonMunkholm/csvtree/internal/config"
	"github.com/JonMunkholm/csvtree/internal/core"
	"github.com/JonMunkholm/csvtree/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cli carries state shared by all subcommands.
type cli struct {
	cfg      *config.Config
	logLevel string
	envFile  string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "csvtree",
		Short: "Build project trees from CSV metric exports",
		Long: `csvtree turns a CSV export with one row per file into a tree of
folders and files, each file carrying its row's values as attributes.

The tree is written as cc.json. Settings come from the environment
(and a .env file when present); flags override them per run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip initialization for help commands
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return c.init(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level for diagnostics on stderr (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file to load if it exists")

	root.AddCommand(
		newImportCmd(c),
		newImportDirCmd(c),
		newQueryCmd(),
		newProfilesCmd(),
		newServeCmd(c),
		newResetCmd(c),
	)
	return root
}

// init loads configuration and installs the stderr logger.
func (c *cli) init(stderr io.Writer) error {
	// Load never overrides variables that are already set.
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", c.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(logging.New(stderr, c.logLevel, cfg.Logging.Format))

	c.cfg = cfg
	return nil
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
	if core.IsUserFacing(err) {
		fmt.Fprintln(w, core.FormatUserError(err))
	}
}
