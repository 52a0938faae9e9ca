package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/njchilds90/gosimplify"
	"github.com/njchilds90/gosimplify/internal/engine"
)

const (
	historyFile = ".gosimplify_history"
	prompt      = "gosimplify> "
)

const replHelp = `Enter one JSON expression tree per line.

REPL commands:
  :mode             Show the current mode
  :mode <name>      Switch mode (faithful|normalize)
  :help             Show this help
  :quit             Exit the REPL
`

// ReplOptions holds flags for the repl command.
type ReplOptions struct {
	*RootOptions
	History string
}

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "repl",
		Short:         "Interactive simplifier",
		Long:          "Read expression trees line by line and print their simplification.\n\n" + replHelp,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.History, "history", "", "history file (default ~/"+historyFile+")")
	return cmd
}

// replSession evaluates REPL lines against an engine.
type replSession struct {
	eng  *engine.Engine
	mode engine.Mode
	out  io.Writer
}

// eval handles one input line and reports whether the session should end.
func (s *replSession) eval(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case line == ":quit" || line == ":q" || line == ":exit":
		return true
	case line == ":help":
		fmt.Fprint(s.out, replHelp)
		return false
	case line == ":mode":
		fmt.Fprintf(s.out, "mode: %s\n", s.mode)
		return false
	case strings.HasPrefix(line, ":mode "):
		m, err := engine.ParseMode(strings.TrimSpace(strings.TrimPrefix(line, ":mode ")))
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			return false
		}
		s.mode = m
		fmt.Fprintf(s.out, "mode: %s\n", s.mode)
		return false
	case strings.HasPrefix(line, ":"):
		fmt.Fprintf(s.out, "error: unknown command %s (try :help)\n", line)
		return false
	}

	x, err := gosimplify.ParseJSON([]byte(line))
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return false
	}
	res, err := s.eng.SimplifyMode(ctx, x, s.mode)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return false
	}
	fmt.Fprintln(s.out, res.Output.String())
	return false
}

func runRepl(opts *ReplOptions, cmd *cobra.Command) error {
	rt, err := opts.setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	histPath := opts.History
	if histPath == "" {
		home, _ := os.UserHomeDir()
		histPath = filepath.Join(home, historyFile)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	session := &replSession{eng: rt.eng, mode: rt.eng.Options().Mode, out: cmd.OutOrStdout()}
	fmt.Fprintln(session.out, "gosimplify REPL. Ctrl+C cancels input, Ctrl+D exits. Type :help for commands.")

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read input", err)
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if session.eval(cmd.Context(), line) {
			return nil
		}
	}
}
