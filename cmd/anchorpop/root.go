// Package main provides the CLI entrypoint for anchorpop.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/anchorpop/internal/config"
	"github.com/jmylchreest/anchorpop/internal/output"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		format     string
		template   string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "anchorpop",
	Short: "Anchored popovers for Linux desktops and terminals",
	Long: `anchorpop shows small anchored popovers next to a screen rectangle.

Popovers on the desktop are drawn by the anchorpopd daemon, which this
command talks to over D-Bus. The placement engine can also be run on its
own with "place", and "demo" shows popovers inside the terminal.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(os.Stderr)

		var err error
		cfg, err = config.Load(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/anchorpop/anchorpop.toml)")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.format, "output", "o", "text",
		"Output format (text, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.template, "template", "",
		"Custom Go template for text output")
}

// setupLogger configures the global slog logger.
func setupLogger(w io.Writer) {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(w, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// getConfig returns the global config instance.
func getConfig() *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}

// createFormatter creates the output formatter from the global flags.
func createFormatter() (output.Formatter, error) {
	format, err := output.ParseFormat(globalOpts.format)
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(format, output.FormatterOptions{
		Template: globalOpts.template,
	}), nil
}

// writeReport formats report to stdout.
func writeReport(cmd *cobra.Command, report any) error {
	f, err := createFormatter()
	if err != nil {
		return err
	}
	return f.Format(cmd.OutOrStdout(), report)
}
