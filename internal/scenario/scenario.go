// Package scenario runs YAML suites of simplification cases.
//
// A suite file looks like:
//
//	name: identities
//	description: Additive and multiplicative identities
//	cases:
//	  - name: add zero
//	    input: {type: add, left: {type: const, value: 0}, right: {type: var, name: x}}
//	    want: x
//	  - name: exp of ln
//	    mode: normalize
//	    input: {type: exp, arg: {type: ln, arg: {type: var, name: x}}}
//	    expect: {type: var, name: x}
//
// Each case gives either want (the rendered output) or expect (the output
// tree, compared structurally).
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gosimplify"
	"github.com/njchilds90/gosimplify/internal/engine"
)

// Suite is one YAML scenario file.
type Suite struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Cases       []Case `yaml:"cases"`
}

// Case is a single input with its expected simplification.
type Case struct {
	Name string `yaml:"name"`

	// Input is the expression tree in its JSON object form.
	Input map[string]interface{} `yaml:"input"`

	// Mode overrides the engine mode for this case.
	Mode string `yaml:"mode,omitempty"`

	// Expect is the expected output tree.
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Want is the expected rendered output.
	Want string `yaml:"want,omitempty"`

	input  gosimplify.Expr
	expect gosimplify.Expr
	mode   engine.Mode
}

// Load reads and validates a suite file. Unknown fields are rejected.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a suite document.
func Parse(data []byte) (*Suite, error) {
	var s Suite
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.compile(); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &s, nil
}

// compile validates required fields and decodes the trees.
func (s *Suite) compile() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}
	seen := make(map[string]bool, len(s.Cases))
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true

		if c.Input == nil {
			return fmt.Errorf("cases[%d]: input is required", i)
		}
		if (c.Expect == nil) == (c.Want == "") {
			return fmt.Errorf("cases[%d]: exactly one of expect or want is required", i)
		}

		var err error
		if c.input, err = gosimplify.FromJSON(c.Input); err != nil {
			return fmt.Errorf("cases[%d].input: %w", i, err)
		}
		if c.Expect != nil {
			if c.expect, err = gosimplify.FromJSON(c.Expect); err != nil {
				return fmt.Errorf("cases[%d].expect: %w", i, err)
			}
		}
		if c.Mode != "" {
			if c.mode, err = engine.ParseMode(c.Mode); err != nil {
				return fmt.Errorf("cases[%d]: %w", i, err)
			}
		}
	}
	return nil
}
