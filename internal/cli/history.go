package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gosimplify/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List recent journaled simplifications",
		Long:          "List the newest journal entries. Requires journal to be set in the config file.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	rt, err := opts.setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.store == nil {
		return NewExitError(ExitCommandError, "history requires journal to be set in the config file")
	}

	entries, err := rt.store.Recent(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	if entries == nil {
		entries = []journal.Entry{}
	}

	var text strings.Builder
	if len(entries) == 0 {
		text.WriteString("No journal entries.\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&text, "%4d  %-12s  %s  %s\n", e.Seq, e.Mode, shortFingerprint(e.Fingerprint), e.Rendered)
	}
	return opts.formatter(cmd).Success(entries, text.String())
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
