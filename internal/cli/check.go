package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gosimplify/internal/scenario"
)

// CheckResult holds the overall result of a check run.
type CheckResult struct {
	Suites []*scenario.Report `json:"suites"`
	Passed int                `json:"passed"`
	Failed int                `json:"failed"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <suite.yaml>...",
		Short: "Run YAML suites of simplification cases",
		Long: `Run scenario suites against the engine and report each case.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Command error (unreadable or invalid suite, etc.)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command, paths []string) error {
	suites := make([]*scenario.Suite, 0, len(paths))
	for _, path := range paths {
		s, err := scenario.Load(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load suite", err)
		}
		suites = append(suites, s)
	}

	rt, err := opts.setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	result := CheckResult{Suites: make([]*scenario.Report, 0, len(suites))}
	var text strings.Builder
	for _, s := range suites {
		rep := scenario.Run(cmd.Context(), rt.eng, s)
		result.Suites = append(result.Suites, rep)
		result.Passed += rep.Passed
		result.Failed += rep.Failed
		text.WriteString(rep.Text())
	}

	if err := opts.formatter(cmd).Success(result, text.String()); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d cases failed", result.Failed, result.Passed+result.Failed))
	}
	return nil
}
