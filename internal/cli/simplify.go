package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gosimplify"
	"github.com/njchilds90/gosimplify/internal/engine"
)

// SimplifyOutput is the JSON payload of the simplify command.
type SimplifyOutput struct {
	Result      map[string]interface{} `json:"result"`
	String      string                 `json:"string"`
	Mode        string                 `json:"mode"`
	Passes      int                    `json:"passes"`
	Depth       int                    `json:"depth"`
	Fingerprint string                 `json:"fingerprint"`
	Cached      bool                   `json:"cached"`
}

// NewSimplifyCommand creates the simplify command.
func NewSimplifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simplify [json]",
		Short: "Simplify one expression tree",
		Long: `Simplify an expression given as a JSON tree, either as the argument
or on stdin.

Examples:
  gosimplify simplify '{"type":"mul","left":{"type":"var","name":"x"},"right":{"type":"var","name":"x"}}'
  gosimplify simplify --mode normalize < expr.json
  gosimplify simplify --format json < expr.json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimplify(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runSimplify(opts *RootOptions, cmd *cobra.Command, args []string) error {
	var src string
	if len(args) == 1 {
		src = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read stdin", err)
		}
		src = string(data)
	}
	if strings.TrimSpace(src) == "" {
		return NewExitError(ExitCommandError, "no expression given")
	}

	x, err := gosimplify.ParseJSON([]byte(src))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid expression", err)
	}

	rt, err := opts.setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.eng.Simplify(cmd.Context(), x)
	if err != nil {
		return WrapExitError(ExitCommandError, "simplify failed", err)
	}

	out := opts.formatter(cmd)
	out.VerboseLog("mode=%s passes=%d depth=%d cached=%t", res.Mode, res.Passes, res.Depth, res.Cached)
	return out.Success(simplifyOutput(res), res.Output.String()+"\n")
}

func simplifyOutput(res *engine.Result) SimplifyOutput {
	return SimplifyOutput{
		Result:      gosimplify.ToMap(res.Output),
		String:      res.Output.String(),
		Mode:        string(res.Mode),
		Passes:      res.Passes,
		Depth:       res.Depth,
		Fingerprint: res.Fingerprint,
		Cached:      res.Cached,
	}
}
