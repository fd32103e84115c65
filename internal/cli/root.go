// Package cli provides the command-line interface for starform.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/starform/internal/cli/commands"
	"github.com/leapstack-labs/starform/internal/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "starform",
		Short: "Starform - Star Schema Generator",
		Long: `Starform profiles delimited source files, infers a dimensional data
model, splits the source into dimension and fact tables with deterministic
surrogate keys, and verifies the result with data quality checks.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			ctx := config.NewContext(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, newLogger(cmd.ErrOrStderr(), cfg.Verbose))
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./starform.yaml)")
	rootCmd.PersistentFlags().Float64("uniqueness-threshold", 0, "Minimum distinct ratio for candidate keys")
	rootCmd.PersistentFlags().Int("max-composite-columns", 0, "Cap on columns scanned for composite keys (negative disables)")
	rootCmd.PersistentFlags().Bool("date-dimension", true, "Synthesize a date dimension for star schemas")
	rootCmd.PersistentFlags().String("database", "", "Target database name for DDL")
	rootCmd.PersistentFlags().String("schema", "", "Target schema name for DDL")
	rootCmd.PersistentFlags().String("output-dir", "", "Directory for split table files")
	rootCmd.PersistentFlags().String("state-path", "", "Path to the run-history database")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version, BuildDate, GitCommit))
	rootCmd.AddCommand(commands.NewProfileCommand())
	rootCmd.AddCommand(commands.NewModelCommand())
	rootCmd.AddCommand(commands.NewSplitCommand())
	rootCmd.AddCommand(commands.NewVerifyCommand())
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// newLogger builds the CLI logger. Verbose enables debug-level text logs;
// otherwise only warnings and errors are shown.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
