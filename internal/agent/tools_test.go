package agent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/pantry/internal/model"
)

func TestValidateArgs(t *testing.T) {
	schema := mustJSON(`{
		"type": "object",
		"properties": {
			"name":  {"type": "string"},
			"price": {"type": "integer"},
			"score": {"type": "number"},
			"flag":  {"type": "boolean"},
			"tags":  {"type": "array"},
			"meta":  {"type": "object"}
		},
		"required": ["name"]
	}`)

	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{"all valid", `{"name": "x", "price": 42, "score": 0.5, "flag": true, "tags": [], "meta": {}}`, ""},
		{"only required", `{"name": "x"}`, ""},
		{"empty string defaults to empty object", ``, `missing required argument "name"`},
		{"missing required", `{"price": 42}`, `missing required argument "name"`},
		{"not an object", `[1, 2]`, "not a JSON object"},
		{"malformed json", `{"name":`, "not a JSON object"},
		{"undeclared field", `{"name": "x", "extra": 1}`, `unexpected argument "extra"`},
		{"wrong string type", `{"name": 42}`, `"name" must be a string`},
		{"float for integer", `{"name": "x", "price": 4.2}`, `"price" must be an integer`},
		{"whole float accepted as integer", `{"name": "x", "price": 4.0}`, ""},
		{"string for number", `{"name": "x", "score": "high"}`, `"score" must be a number`},
		{"string for boolean", `{"name": "x", "flag": "yes"}`, `"flag" must be a boolean`},
		{"object for array", `{"name": "x", "tags": {}}`, `"tags" must be an array`},
		{"array for object", `{"name": "x", "meta": []}`, `"meta" must be an object`},
		{"null value skips type check", `{"name": "x", "price": null}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validateArgs(schema, tt.raw)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validateArgs(%q) error = %v, want nil", tt.raw, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validateArgs(%q) error = %v, want containing %q", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestRegistryInvoke(t *testing.T) {
	r := echoRegistry(t)

	t.Run("unknown tool", func(t *testing.T) {
		res := r.Invoke(context.Background(), model.ToolCall{Name: "nope", Arguments: `{}`})
		if res.Error == "" || !strings.Contains(res.Error, "unknown tool") {
			t.Errorf("Invoke() = %+v, want unknown tool error", res)
		}
	})

	t.Run("invalid arguments", func(t *testing.T) {
		res := r.Invoke(context.Background(), model.ToolCall{Name: "echo", Arguments: `{"text": 42}`})
		if res.Error == "" || !strings.Contains(res.Error, "invalid arguments") {
			t.Errorf("Invoke() = %+v, want invalid arguments error", res)
		}
	})

	t.Run("valid call executes", func(t *testing.T) {
		res := r.Invoke(context.Background(), model.ToolCall{Name: "echo", Arguments: `{"text": "hi"}`})
		if res.Error != "" || res.Content != "hi" {
			t.Errorf("Invoke() = %+v, want content hi", res)
		}
	})
}

func TestRegistryDefinitionsPreserveOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		r.Register(&Tool{Name: name, Schema: mustJSON(`{"type": "object", "properties": {}}`)})
	}

	defs := r.Definitions()
	got := make([]string, len(defs))
	for i, d := range defs {
		got[i] = d.Name
	}
	if len(got) != 3 || got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Errorf("Definitions() order = %v, want [c a b]", got)
	}
}

func TestRenderChartTool(t *testing.T) {
	tool := renderChartTool()

	t.Run("valid chart yields artifact", func(t *testing.T) {
		args := map[string]any{
			"type":   "bar",
			"title":  "Prices",
			"labels": []any{"Lemons", "Cookie"},
			"values": []any{0.99, 1.99},
		}
		res := tool.Execute(context.Background(), args)
		if res.Error != "" {
			t.Fatalf("Execute() error = %q", res.Error)
		}
		if res.Artifact == nil || res.Artifact.Kind != "chart" {
			t.Fatalf("Execute() artifact = %+v, want kind chart", res.Artifact)
		}

		var spec chartSpec
		if err := json.Unmarshal(res.Artifact.Payload, &spec); err != nil {
			t.Fatalf("payload not valid JSON: %v", err)
		}
		if spec.Type != "bar" || spec.Title != "Prices" || len(spec.Labels) != 2 || len(spec.Values) != 2 {
			t.Errorf("payload = %+v", spec)
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		res := tool.Execute(context.Background(), map[string]any{
			"type": "scatter", "title": "t", "labels": []any{"a"}, "values": []any{1.0},
		})
		if res.Error == "" || !strings.Contains(res.Error, "unsupported chart type") {
			t.Errorf("Execute() = %+v, want unsupported type error", res)
		}
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		res := tool.Execute(context.Background(), map[string]any{
			"type": "pie", "title": "t", "labels": []any{"a", "b"}, "values": []any{1.0},
		})
		if res.Error == "" {
			t.Errorf("Execute() = %+v, want length mismatch error", res)
		}
	})

	t.Run("empty data", func(t *testing.T) {
		res := tool.Execute(context.Background(), map[string]any{
			"type": "line", "title": "t", "labels": []any{}, "values": []any{},
		})
		if res.Error == "" {
			t.Errorf("Execute() = %+v, want error on empty data", res)
		}
	})
}

func TestIntArg(t *testing.T) {
	args := map[string]any{"limit": float64(7), "name": "x"}
	if got := intArg(args, "limit", 5); got != 7 {
		t.Errorf("intArg(limit) = %d, want 7", got)
	}
	if got := intArg(args, "missing", 5); got != 5 {
		t.Errorf("intArg(missing) = %d, want fallback 5", got)
	}
	if got := intArg(args, "name", 5); got != 5 {
		t.Errorf("intArg(name) = %d, want fallback on non-number", got)
	}
}
