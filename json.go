package gosimplify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ============================================================
// JSON Serialization
// ============================================================

// Trees are encoded as nested objects tagged by "type":
//
//	{"type": "const", "value": "2"}            optional "imag"
//	{"type": "var", "name": "x"}
//	{"type": "neg", "arg": {...}}              also exp, ln, sin, cos
//	{"type": "add", "left": {...}, "right": {...}}  also sub, mul, div, pow

var kindByName = map[string]Kind{}

func init() {
	for k, name := range kindNames {
		kindByName[name] = Kind(k)
	}
}

// ToMap returns the generic JSON object form of e.
func ToMap(e Expr) map[string]interface{} {
	m := map[string]interface{}{"type": e.Kind().String()}
	switch x := e.(type) {
	case *Const:
		if x.val.IsNaN() {
			m["value"] = "NaN"
			break
		}
		m["value"] = formatFloat(x.val.re)
		if x.val.im != 0 {
			m["imag"] = formatFloat(x.val.im)
		}
	case *Var:
		m["name"] = string(x.name)
	default:
		ch := e.Children()
		if len(ch) == 1 {
			m["arg"] = ToMap(ch[0])
		} else {
			m["left"], m["right"] = ToMap(ch[0]), ToMap(ch[1])
		}
	}
	return m
}

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(ToMap(e))
	return string(b), err
}

// ParseJSON decodes a JSON document holding one expression tree.
func ParseJSON(data []byte) (Expr, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return FromJSON(m)
}

// FromJSON builds an expression from its generic object form. Numbers may
// be given as strings or as JSON/YAML numbers.
func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}
	kind, ok := kindByName[typ]
	if !ok {
		return nil, fmt.Errorf("unknown expression type: %s", typ)
	}

	sub := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := asObject(v)
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	switch kind {
	case KindConst:
		re, err := numberField(data, "value", true)
		if err != nil {
			return nil, err
		}
		im, err := numberField(data, "imag", false)
		if err != nil {
			return nil, err
		}
		return Num(Complex(re, im)), nil

	case KindVar:
		nameAny, ok := data["name"]
		if !ok {
			return nil, fmt.Errorf("var: missing 'name'")
		}
		name, ok := nameAny.(string)
		if !ok {
			return nil, fmt.Errorf("var: 'name' must be a string")
		}
		name = norm.NFC.String(name)
		if utf8.RuneCountInString(name) != 1 {
			return nil, fmt.Errorf("var: 'name' must be a single character, got %q", name)
		}
		r, _ := utf8.DecodeRuneInString(name)
		return V(r), nil

	case KindNeg, KindExp, KindLn, KindSin, KindCos:
		arg, err := sub("arg")
		if err != nil {
			return nil, err
		}
		return unaryOf(kind, arg), nil
	}

	left, err := sub("left")
	if err != nil {
		return nil, err
	}
	right, err := sub("right")
	if err != nil {
		return nil, err
	}
	return binaryOf(kind, left, right), nil
}

func unaryOf(k Kind, arg Expr) Expr {
	switch k {
	case KindExp:
		return ExpOf(arg)
	case KindLn:
		return LnOf(arg)
	case KindSin:
		return SinOf(arg)
	case KindCos:
		return CosOf(arg)
	}
	return NegOf(arg)
}

func binaryOf(k Kind, l, r Expr) Expr {
	switch k {
	case KindSub:
		return SubOf(l, r)
	case KindMul:
		return MulOf(l, r)
	case KindDiv:
		return DivOf(l, r)
	case KindPow:
		return PowOf(l, r)
	}
	return AddOf(l, r)
}

// asObject accepts both JSON objects and YAML mappings with string keys.
func asObject(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

func numberField(data map[string]interface{}, field string, required bool) (float64, error) {
	v, ok := data[field]
	if !ok {
		if required {
			return 0, fmt.Errorf("const: missing %q", field)
		}
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("const: invalid %s %q", field, n)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("const: invalid %s %q", field, n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("const: %q must be a number or numeric string", field)
}

// formatFloat writes -0 as 0 so the encoding agrees with Number.Equal.
func formatFloat(f float64) string {
	if f == 0 {
		f = 0
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
