package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/njchilds90/gosimplify"
	"github.com/njchilds90/gosimplify/internal/engine"
)

// Simplifier is the part of *engine.Engine a run needs.
type Simplifier interface {
	Simplify(ctx context.Context, x gosimplify.Expr) (*engine.Result, error)
	SimplifyMode(ctx context.Context, x gosimplify.Expr, mode engine.Mode) (*engine.Result, error)
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name   string `json:"name"`
	Pass   bool   `json:"pass"`
	Got    string `json:"got,omitempty"`
	Want   string `json:"want"`
	Passes int    `json:"passes,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Report collects the results of a suite run.
type Report struct {
	Suite   string       `json:"suite"`
	Results []CaseResult `json:"results"`
	Passed  int          `json:"passed"`
	Failed  int          `json:"failed"`
}

// OK reports whether every case passed.
func (r *Report) OK() bool { return r.Failed == 0 }

// Run executes every case of s in order. A cancelled context fails the
// remaining cases.
func Run(ctx context.Context, eng Simplifier, s *Suite) *Report {
	rep := &Report{Suite: s.Name, Results: make([]CaseResult, 0, len(s.Cases))}
	for _, c := range s.Cases {
		res := runCase(ctx, eng, c)
		if res.Pass {
			rep.Passed++
		} else {
			rep.Failed++
		}
		rep.Results = append(rep.Results, res)
	}
	return rep
}

func runCase(ctx context.Context, eng Simplifier, c Case) CaseResult {
	out := CaseResult{Name: c.Name, Want: c.Want}
	if c.expect != nil {
		out.Want = c.expect.String()
	}

	var (
		res *engine.Result
		err error
	)
	if c.mode != "" {
		res, err = eng.SimplifyMode(ctx, c.input, c.mode)
	} else {
		res, err = eng.Simplify(ctx, c.input)
	}
	if err != nil {
		out.Error = err.Error()
		return out
	}

	out.Got = res.Output.String()
	out.Passes = res.Passes
	if c.expect != nil {
		out.Pass = gosimplify.Equal(res.Output, c.expect)
	} else {
		out.Pass = out.Got == c.Want
	}
	return out
}

// Text renders the report deterministically, one line per case.
func (r *Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "suite %s\n", r.Suite)
	for _, res := range r.Results {
		switch {
		case res.Error != "":
			fmt.Fprintf(&b, "FAIL %s: error: %s\n", res.Name, res.Error)
		case res.Pass:
			fmt.Fprintf(&b, "PASS %s: %s\n", res.Name, res.Got)
		default:
			fmt.Fprintf(&b, "FAIL %s: got %s, want %s\n", res.Name, res.Got, res.Want)
		}
	}
	fmt.Fprintf(&b, "%d passed, %d failed\n", r.Passed, r.Failed)
	return b.String()
}
