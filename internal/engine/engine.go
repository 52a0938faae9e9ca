// Package engine wraps the simplifier for services: it selects the mode,
// guards tree depth, honours context cancellation and keeps a journal of
// results that also serves as a cache.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/njchilds90/gosimplify"
	"github.com/njchilds90/gosimplify/internal/journal"
)

// Mode selects how much simplification a call performs.
type Mode string

const (
	// ModeFaithful applies the rule set once, exactly as gosimplify.Simplify.
	ModeFaithful Mode = "faithful"
	// ModeNormalize repeats bottom-up passes until a fixed point.
	ModeNormalize Mode = "normalize"
)

// ParseMode maps a mode name to a Mode. The empty string is faithful.
func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case "", ModeFaithful:
		return ModeFaithful, nil
	case ModeNormalize:
		return ModeNormalize, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// DefaultMaxDepth bounds input trees when Options.MaxDepth is zero.
const DefaultMaxDepth = 10000

// Options configure an Engine. Zero fields take their defaults.
type Options struct {
	Mode      Mode
	MaxDepth  int
	MaxPasses int
}

// Journal persists results keyed by input fingerprint and a mode key.
// Normalize results are keyed with their pass limit, e.g. "normalize/16".
// *journal.Store satisfies it.
type Journal interface {
	Lookup(ctx context.Context, fingerprint, mode string) (journal.Entry, bool, error)
	Record(ctx context.Context, e journal.Entry) error
}

// Result describes one simplification.
type Result struct {
	Input       gosimplify.Expr
	Output      gosimplify.Expr
	Mode        Mode
	Passes      int
	Depth       int
	Fingerprint string
	Cached      bool
}

// Engine is safe for concurrent use when its Journal is.
type Engine struct {
	opts    Options
	journal Journal
	logger  *slog.Logger
}

// New returns an Engine. A nil journal disables caching; a nil logger
// discards records.
func New(opts Options, j Journal, logger *slog.Logger) (*Engine, error) {
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	opts.Mode = mode
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = gosimplify.DefaultMaxPasses
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{opts: opts, journal: j, logger: logger}, nil
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Simplify simplifies x in the engine's default mode.
func (e *Engine) Simplify(ctx context.Context, x gosimplify.Expr) (*Result, error) {
	return e.SimplifyMode(ctx, x, e.opts.Mode)
}

// SimplifyMode simplifies x in the given mode.
func (e *Engine) SimplifyMode(ctx context.Context, x gosimplify.Expr, mode Mode) (*Result, error) {
	if x == nil {
		return nil, ErrNilExpr
	}
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	depth := gosimplify.Depth(x)
	if depth > e.opts.MaxDepth {
		return nil, &DepthError{Depth: depth, Limit: e.opts.MaxDepth}
	}

	fp, err := gosimplify.Fingerprint(x)
	if err != nil {
		return nil, fmt.Errorf("simplify: %w", err)
	}

	if res := e.lookup(ctx, x, fp, mode, depth); res != nil {
		return res, nil
	}

	res := &Result{Input: x, Mode: mode, Depth: depth, Fingerprint: fp}
	switch mode {
	case ModeNormalize:
		res.Output, res.Passes = gosimplify.NormalizePasses(x, e.opts.MaxPasses)
	default:
		res.Output, res.Passes = gosimplify.Simplify(x), 1
	}

	e.logger.Debug("simplified",
		"fingerprint", fp,
		"mode", string(mode),
		"passes", res.Passes,
		"depth", depth,
	)
	e.record(ctx, res)
	return res, nil
}

// SimplifyAll simplifies each expression in order and stops at the first error.
func (e *Engine) SimplifyAll(ctx context.Context, xs []gosimplify.Expr) ([]*Result, error) {
	out := make([]*Result, 0, len(xs))
	for i, x := range xs {
		res, err := e.Simplify(ctx, x)
		if err != nil {
			return out, fmt.Errorf("expression %d: %w", i, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func (e *Engine) lookup(ctx context.Context, x gosimplify.Expr, fp string, mode Mode, depth int) *Result {
	if e.journal == nil {
		return nil
	}
	entry, ok, err := e.journal.Lookup(ctx, fp, e.journalMode(mode))
	if err != nil {
		e.logger.Warn("journal lookup failed", "fingerprint", fp, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	out, err := gosimplify.ParseJSON([]byte(entry.Output))
	if err != nil {
		e.logger.Warn("journal entry unreadable", "id", entry.ID, "error", err)
		return nil
	}
	e.logger.Debug("journal hit", "fingerprint", fp, "mode", string(mode))
	return &Result{
		Input:       x,
		Output:      out,
		Mode:        mode,
		Passes:      entry.Passes,
		Depth:       depth,
		Fingerprint: fp,
		Cached:      true,
	}
}

// journalMode is the journal key for mode. Normalize output depends on the
// pass limit, so engines with different limits never share entries.
func (e *Engine) journalMode(mode Mode) string {
	if mode == ModeNormalize {
		return fmt.Sprintf("%s/%d", mode, e.opts.MaxPasses)
	}
	return string(mode)
}

func (e *Engine) record(ctx context.Context, res *Result) {
	if e.journal == nil {
		return
	}
	in, err := gosimplify.ToJSON(res.Input)
	if err != nil {
		e.logger.Warn("journal encode failed", "error", err)
		return
	}
	out, err := gosimplify.ToJSON(res.Output)
	if err != nil {
		e.logger.Warn("journal encode failed", "error", err)
		return
	}
	err = e.journal.Record(ctx, journal.Entry{
		Fingerprint: res.Fingerprint,
		Mode:        e.journalMode(res.Mode),
		Input:       in,
		Output:      out,
		Rendered:    res.Output.String(),
		Passes:      res.Passes,
	})
	if err != nil {
		e.logger.Warn("journal record failed", "fingerprint", res.Fingerprint, "error", err)
	}
}
