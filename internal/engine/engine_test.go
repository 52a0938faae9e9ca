package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosimplify"
	"github.com/njchilds90/gosimplify/internal/journal"
)

var (
	x = gosimplify.V('x')
	y = gosimplify.V('y')
)

// memJournal is an in-process Journal.
type memJournal struct {
	mu      sync.Mutex
	entries map[string]journal.Entry
	lookups int
}

func newMemJournal() *memJournal {
	return &memJournal{entries: map[string]journal.Entry{}}
}

func (m *memJournal) Lookup(_ context.Context, fp, mode string) (journal.Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	e, ok := m.entries[fp+"/"+mode]
	return e, ok, nil
}

func (m *memJournal) Record(_ context.Context, e journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := e.Fingerprint + "/" + e.Mode
	if _, ok := m.entries[key]; !ok {
		m.entries[key] = e
	}
	return nil
}

type brokenJournal struct{}

func (brokenJournal) Lookup(context.Context, string, string) (journal.Entry, bool, error) {
	return journal.Entry{}, false, errors.New("disk on fire")
}

func (brokenJournal) Record(context.Context, journal.Entry) error {
	return errors.New("disk on fire")
}

func newEngine(t *testing.T, opts Options, j Journal) *Engine {
	t.Helper()
	e, err := New(opts, j, nil)
	require.NoError(t, err)
	return e
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeFaithful, m)

	m, err = ParseMode("normalize")
	require.NoError(t, err)
	assert.Equal(t, ModeNormalize, m)

	_, err = ParseMode("eager")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestNew_Defaults(t *testing.T) {
	e := newEngine(t, Options{}, nil)
	opts := e.Options()
	assert.Equal(t, ModeFaithful, opts.Mode)
	assert.Equal(t, DefaultMaxDepth, opts.MaxDepth)
	assert.Equal(t, gosimplify.DefaultMaxPasses, opts.MaxPasses)

	_, err := New(Options{Mode: "bogus"}, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestSimplify_Faithful(t *testing.T) {
	e := newEngine(t, Options{}, nil)
	res, err := e.Simplify(context.Background(), gosimplify.MulOf(x, gosimplify.PowF(x, 2)))
	require.NoError(t, err)

	assert.Equal(t, "x^(2 + 1)", res.Output.String())
	assert.Equal(t, ModeFaithful, res.Mode)
	assert.Equal(t, 1, res.Passes)
	assert.Equal(t, 3, res.Depth)
	assert.Len(t, res.Fingerprint, 64)
	assert.False(t, res.Cached)
}

func TestSimplify_Normalize(t *testing.T) {
	e := newEngine(t, Options{Mode: ModeNormalize}, nil)
	res, err := e.Simplify(context.Background(), gosimplify.MulOf(x, gosimplify.PowF(x, 2)))
	require.NoError(t, err)
	assert.Equal(t, "x^3", res.Output.String())
	assert.Equal(t, 3, res.Passes)
}

func TestSimplifyMode_Override(t *testing.T) {
	e := newEngine(t, Options{}, nil)
	res, err := e.SimplifyMode(context.Background(), gosimplify.MulOf(x, gosimplify.PowF(x, 2)), ModeNormalize)
	require.NoError(t, err)
	assert.Equal(t, "x^3", res.Output.String())

	_, err = e.SimplifyMode(context.Background(), x, "eager")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestSimplify_Errors(t *testing.T) {
	e := newEngine(t, Options{MaxDepth: 3}, nil)

	_, err := e.Simplify(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilExpr)

	deep := gosimplify.NegOf(gosimplify.NegOf(gosimplify.NegOf(x)))
	_, err = e.Simplify(context.Background(), deep)
	require.ErrorIs(t, err, ErrTooDeep)
	var de *DepthError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 4, de.Depth)
	assert.Equal(t, 3, de.Limit)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Simplify(ctx, x)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimplify_DoesNotAliasInput(t *testing.T) {
	e := newEngine(t, Options{}, nil)
	in := gosimplify.AddOf(gosimplify.Zero(), x)
	res, err := e.Simplify(context.Background(), in)
	require.NoError(t, err)
	assert.Same(t, in, res.Input)
	assert.Equal(t, "0 + x", in.String())
	assert.Equal(t, "x", res.Output.String())
}

func TestSimplify_UsesJournal(t *testing.T) {
	j := newMemJournal()
	e := newEngine(t, Options{}, j)
	ctx := context.Background()
	in := gosimplify.MulOf(x, x)

	first, err := e.Simplify(ctx, in)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	require.Len(t, j.entries, 1)

	second, err := e.Simplify(ctx, gosimplify.MulOf(gosimplify.V('x'), gosimplify.V('x')))
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.True(t, gosimplify.Equal(first.Output, second.Output))
	assert.Equal(t, first.Fingerprint, second.Fingerprint)

	third, err := e.SimplifyMode(ctx, in, ModeNormalize)
	require.NoError(t, err)
	assert.False(t, third.Cached, "modes are cached separately")
	assert.Len(t, j.entries, 2)
}

func TestSimplify_JournalKeyedByPassLimit(t *testing.T) {
	st, err := journal.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	in := gosimplify.MulOf(x, gosimplify.MulOf(x, gosimplify.MulOf(x, x)))

	short := newEngine(t, Options{Mode: ModeNormalize, MaxPasses: 1}, st)
	first, err := short.Simplify(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "x^((2 + 1) + 1)", first.Output.String())

	full := newEngine(t, Options{Mode: ModeNormalize, MaxPasses: 16}, st)
	second, err := full.Simplify(ctx, in)
	require.NoError(t, err)
	assert.False(t, second.Cached)
	assert.Equal(t, "x^4", second.Output.String())

	again, err := short.Simplify(ctx, in)
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, "x^((2 + 1) + 1)", again.Output.String())

	recent, err := st.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "normalize/16", recent[0].Mode)
	assert.Equal(t, "normalize/1", recent[1].Mode)
}

func TestSimplify_JournalFailuresAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	e, err := New(Options{}, brokenJournal{}, logger)
	require.NoError(t, err)

	res, err := e.Simplify(context.Background(), gosimplify.AddOf(x, gosimplify.Zero()))
	require.NoError(t, err)
	assert.Equal(t, "x", res.Output.String())
	assert.Contains(t, buf.String(), "journal lookup failed")
	assert.Contains(t, buf.String(), "journal record failed")
}

func TestSimplify_SQLiteJournal(t *testing.T) {
	st, err := journal.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	e := newEngine(t, Options{}, st)
	ctx := context.Background()
	in := gosimplify.DivOf(y, gosimplify.Zero())

	_, err = e.Simplify(ctx, in)
	require.NoError(t, err)
	res, err := e.Simplify(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, "NaN", res.Output.String())

	recent, err := st.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "NaN", recent[0].Rendered)
	assert.Equal(t, "faithful", recent[0].Mode)
}

func TestSimplifyAll(t *testing.T) {
	e := newEngine(t, Options{}, nil)
	ctx := context.Background()

	out, err := e.SimplifyAll(ctx, []gosimplify.Expr{gosimplify.MulOf(x, x), gosimplify.SubOf(x, gosimplify.Zero())})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "x^2", out[0].Output.String())
	assert.Equal(t, "x", out[1].Output.String())

	out, err = e.SimplifyAll(ctx, []gosimplify.Expr{x, nil, y})
	assert.ErrorIs(t, err, ErrNilExpr)
	assert.Contains(t, err.Error(), "expression 1")
	assert.Len(t, out, 1)
}
