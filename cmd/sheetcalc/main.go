// Command sheetcalc evaluates sheet scripts and hosts an interactive REPL.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vogtb/go-spreadsheet/internal/config"
	"github.com/vogtb/go-spreadsheet/internal/console"
	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds what every subcommand needs once flags and config are resolved
type app struct {
	configPath string
	logLevel   string
	printMode  string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "sheetcalc [command]",
		Short: "Evaluate spreadsheet scripts",
		Long: `sheetcalc drives a spreadsheet engine from a small command language.
Without a subcommand it starts the REPL when stdin is a terminal and
otherwise runs stdin as a script.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if isTerminal(os.Stdin) {
				return a.repl(cmd.OutOrStdout())
			}
			return a.newSession(cmd.OutOrStdout()).Run(cmd.InOrStdin())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.printMode, "mode", "", "what a bare print shows (values, texts)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "repl",
			Short: "Start the interactive REPL",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.repl(cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "run FILE...",
			Short: "Run scripts against one sheet, in order",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runFiles(a.newSession(cmd.OutOrStdout()), args)
			},
		},
		&cobra.Command{
			Use:   "watch FILE",
			Short: "Re-run a script on every change and print the sheet",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.watch(cmd.Context(), cmd.OutOrStdout(), args[0])
			},
		},
	)

	return rootCmd
}

// setup loads the config file, applies flag overrides on top of it and
// validates the result
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.printMode != "" {
		cfg.Print.Mode = a.printMode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// newSession creates a fresh sheet with its own metrics registry
func (a *app) newSession(out io.Writer) *console.Session {
	reg := prometheus.NewRegistry()
	sheet := spreadsheet.NewSheet(
		spreadsheet.WithLogger(a.logger),
		spreadsheet.WithMetrics(spreadsheet.NewMetrics(reg)),
	)
	return console.NewSession(sheet, out,
		console.WithGatherer(reg),
		console.WithPrintMode(a.cfg.Print.Mode),
		console.WithLogger(a.logger),
	)
}

func (a *app) repl(out io.Writer) error {
	return console.RunREPL(a.newSession(out), a.cfg.REPL)
}

func (a *app) runFiles(session *console.Session, paths []string) error {
	for _, path := range paths {
		if err := a.runFile(session, path); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) runFile(session *console.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	a.logger.Debug("running script", slog.String("path", path))
	if err := session.Run(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
