package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gosimplify/internal/config"
	"github.com/njchilds90/gosimplify/internal/engine"
	"github.com/njchilds90/gosimplify/internal/journal"
	"github.com/njchilds90/gosimplify/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Mode       string // overrides the config mode when set
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gosimplify CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gosimplify",
		Short: "gosimplify - rule-based expression simplifier",
		Long:  "Simplify symbolic expression trees with a fixed set of algebraic rewrite rules.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.Mode != "" {
				if _, err := engine.ParseMode(opts.Mode); err != nil {
					return WrapExitError(ExitCommandError, "invalid --mode", err)
				}
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Mode, "mode", "", "simplification mode (faithful|normalize)")

	cmd.AddCommand(NewSimplifyCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code. A
// failing command is reported through the output formatter: as a JSON
// error response on stdout with --format json, as text on stderr otherwise.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	code := GetExitCode(err)
	f := &OutputFormatter{Format: opts.Format, Writer: stderr, Verbose: opts.Verbose}
	if opts.Format == "json" {
		f.Writer = stdout
	}
	f.Error(errorCode(code), err.Error(), nil)
	return code
}

func errorCode(exit int) string {
	if exit == ExitFailure {
		return "failure"
	}
	return "command_error"
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// app is the configured state shared by commands.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	eng    *engine.Engine
	store  *journal.Store
}

// setup loads the config, builds the logger and engine, and opens the
// journal when one is configured. Callers must Close the app.
func (o *RootOptions) setup(stderr io.Writer) (*app, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Mode != "" {
		cfg.Mode = o.Mode
	}
	level := cfg.Log.Level
	if o.Verbose {
		level = "debug"
	}
	logger, err := logging.New(stderr, level, cfg.Log.Format)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to configure logging", err)
	}

	rt := &app{cfg: cfg, logger: logger}
	var j engine.Journal
	if cfg.Journal != "" {
		rt.store, err = journal.Open(cfg.Journal)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		j = rt.store
	}

	rt.eng, err = engine.New(engine.Options{
		Mode:      engine.Mode(cfg.Mode),
		MaxDepth:  cfg.MaxDepth,
		MaxPasses: cfg.MaxPasses,
	}, j, logger)
	if err != nil {
		rt.Close()
		return nil, WrapExitError(ExitCommandError, "failed to create engine", err)
	}
	return rt, nil
}

func (rt *app) Close() error {
	if rt.store == nil {
		return nil
	}
	return rt.store.Close()
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
