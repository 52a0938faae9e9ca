package scenario

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosimplify/internal/engine"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(engine.Options{}, nil, nil)
	require.NoError(t, err)
	return eng
}

func TestLoad_Corpus(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "identities.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "identities", s.Name)
	assert.Len(t, s.Cases, 12)
	assert.Equal(t, engine.ModeNormalize, s.Cases[6].mode)
}

func TestRun_CorpusGolden(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "identities.yaml"))
	require.NoError(t, err)

	rep := Run(context.Background(), newEngine(t), s)
	assert.True(t, rep.OK(), rep.Text())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, []byte(rep.Text()))
}

func TestRun_ReportsFailures(t *testing.T) {
	s, err := Parse([]byte(`
name: failing
cases:
  - name: wrong render
    input: {type: mul, left: {type: var, name: x}, right: {type: var, name: x}}
    want: x*x
  - name: wrong tree
    input: {type: add, left: {type: var, name: x}, right: {type: const, value: 0}}
    expect: {type: var, name: y}
  - name: right
    input: {type: neg, arg: {type: var, name: x}}
    want: -x
`))
	require.NoError(t, err)

	rep := Run(context.Background(), newEngine(t), s)
	assert.False(t, rep.OK())
	assert.Equal(t, 1, rep.Passed)
	assert.Equal(t, 2, rep.Failed)
	assert.Equal(t, "suite failing\n"+
		"FAIL wrong render: got x^2, want x*x\n"+
		"FAIL wrong tree: got x, want y\n"+
		"PASS right: -x\n"+
		"1 passed, 2 failed\n", rep.Text())
}

func TestRun_EngineErrors(t *testing.T) {
	s, err := Parse([]byte(`
name: deep
cases:
  - name: too deep
    input: {type: neg, arg: {type: neg, arg: {type: var, name: x}}}
    want: x
`))
	require.NoError(t, err)

	eng, err := engine.New(engine.Options{MaxDepth: 2}, nil, nil)
	require.NoError(t, err)
	rep := Run(context.Background(), eng, s)
	require.Len(t, rep.Results, 1)
	assert.Contains(t, rep.Results[0].Error, "exceeds limit 2")
	assert.Contains(t, rep.Text(), "FAIL too deep: error:")
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown field", "name: a\ncasez: []\n", "casez"},
		{"missing name", "cases: [{name: c, input: {type: var, name: x}, want: x}]\n", "name is required"},
		{"no cases", "name: a\n", "cases list is required"},
		{"case name", "name: a\ncases: [{input: {type: var, name: x}, want: x}]\n", "cases[0]: name is required"},
		{"duplicate", "name: a\ncases: [{name: c, input: {type: var, name: x}, want: x}, {name: c, input: {type: var, name: x}, want: x}]\n", "duplicate"},
		{"no input", "name: a\ncases: [{name: c, want: x}]\n", "input is required"},
		{"both expectations", "name: a\ncases: [{name: c, input: {type: var, name: x}, want: x, expect: {type: var, name: x}}]\n", "exactly one"},
		{"neither expectation", "name: a\ncases: [{name: c, input: {type: var, name: x}}]\n", "exactly one"},
		{"bad tree", "name: a\ncases: [{name: c, input: {type: var, name: xy}, want: x}]\n", "cases[0].input"},
		{"bad mode", "name: a\ncases: [{name: c, mode: eager, input: {type: var, name: x}, want: x}]\n", "unknown mode"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
