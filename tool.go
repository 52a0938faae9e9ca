package gosimplify

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func HandleToolCall(req ToolRequest) ToolResponse {
	getExpr := func(key string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		val, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		return FromJSON(val)
	}
	getInt := func(key string, def int) (int, error) {
		v, ok := req.Params[key]
		if !ok {
			return def, nil
		}
		n, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("param %s must be a number", key)
		}
		return int(n), nil
	}
	exprResponse := func(e Expr) ToolResponse {
		return ToolResponse{Result: ToMap(e), String: e.String()}
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	switch req.Tool {
	case "simplify":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return exprResponse(Simplify(e))

	case "normalize":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		maxPasses, err := getInt("max_passes", DefaultMaxPasses)
		if err != nil {
			return fail(err)
		}
		out, passes := NormalizePasses(e, maxPasses)
		resp := exprResponse(out)
		resp.Result = map[string]interface{}{"expr": ToMap(out), "passes": passes}
		return resp

	case "equal":
		a, err := getExpr("a")
		if err != nil {
			return fail(err)
		}
		b, err := getExpr("b")
		if err != nil {
			return fail(err)
		}
		eq := Equal(a, b)
		return ToolResponse{Result: eq, String: fmt.Sprint(eq)}

	case "depth":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		d := Depth(e)
		return ToolResponse{
			Result: map[string]interface{}{"depth": d, "size": Size(e)},
			String: fmt.Sprint(d),
		}

	case "fingerprint":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		fp, err := Fingerprint(e)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: fp, String: fp}

	case "mcp_spec":
		return ToolResponse{Result: json.RawMessage(MCPToolSpec())}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("simplify", "Apply one pass of the simplification rules", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("normalize", "Simplify bottom-up until a fixed point. Optional: max_passes", []string{"expr"}, map[string]string{"expr": "object", "max_passes": "integer"}),
		ts("equal", "Structural equality of two expressions", []string{"a", "b"}, map[string]string{"a": "object", "b": "object"}),
		ts("depth", "Tree depth and node count", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("fingerprint", "Content address (SHA-256) of an expression", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
