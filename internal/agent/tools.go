// Package agent drives the bounded tool-calling loop for one conversation turn
// and owns the registry of tools the model may invoke.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/pantry/internal/model"
)

// Artifact is a typed envelope for structured tool output (e.g. a chart spec)
// that the rendering collaborator special-cases instead of treating as text.
type Artifact struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// ToolResult is the outcome of one tool invocation. A non-empty Error is fed
// back to the model as a tool error so it can retry or explain; it never
// aborts the turn.
type ToolResult struct {
	Tool     string    `json:"tool"`
	Content  string    `json:"content"`
	Artifact *Artifact `json:"artifact,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Tool couples a name, a model-facing description, a JSON argument schema, and
// an executor over validated arguments.
type Tool struct {
	Name        string
	Description string
	Schema      json.RawMessage
	Execute     func(ctx context.Context, args map[string]any) ToolResult
}

// Registry maps tool names to their schema, validator, and executor.
// Registration order is preserved so tool specs reach the model in a stable order.
type Registry struct {
	order []string
	tools map[string]*Tool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool. A duplicate name replaces the earlier registration.
func (r *Registry) Register(t *Tool) {
	if _, exists := r.tools[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tools[t.Name] = t
}

// Definitions returns tool specs for the model, in registration order.
func (r *Registry) Definitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			Schema:      t.Schema,
		})
	}
	return defs
}

// Invoke validates the model-supplied arguments against the tool's schema and
// executes. Never trusts raw model output as typed input: unknown tools,
// malformed JSON, and schema violations all come back as tool-error results.
func (r *Registry) Invoke(ctx context.Context, call model.ToolCall) ToolResult {
	t, ok := r.tools[call.Name]
	if !ok {
		return ToolResult{Tool: call.Name, Error: fmt.Sprintf("unknown tool %q", call.Name)}
	}

	args, err := validateArgs(t.Schema, call.Arguments)
	if err != nil {
		return ToolResult{Tool: call.Name, Error: fmt.Sprintf("invalid arguments: %v", err)}
	}

	return t.Execute(ctx, args)
}

// argSchema is the subset of JSON schema the tool declarations use.
type argSchema struct {
	Properties map[string]struct {
		Type string `json:"type"`
	} `json:"properties"`
	Required []string `json:"required"`
}

// validateArgs checks the model's raw argument JSON against the schema:
// required fields present, declared types respected, no undeclared fields.
func validateArgs(schema json.RawMessage, raw string) (map[string]any, error) {
	var s argSchema
	if err := json.Unmarshal(schema, &s); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}

	if raw == "" {
		raw = "{}"
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}

	for _, req := range s.Required {
		if _, ok := args[req]; !ok {
			return nil, fmt.Errorf("missing required argument %q", req)
		}
	}

	for name, value := range args {
		prop, declared := s.Properties[name]
		if !declared {
			return nil, fmt.Errorf("unexpected argument %q", name)
		}
		if value == nil {
			continue
		}
		if err := checkType(name, prop.Type, value); err != nil {
			return nil, err
		}
	}

	return args, nil
}

func checkType(name, want string, value any) error {
	switch want {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("argument %q must be a string", name)
		}
	case "integer":
		f, ok := value.(float64)
		if !ok || f != math.Trunc(f) {
			return fmt.Errorf("argument %q must be an integer", name)
		}
	case "number":
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("argument %q must be a number", name)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("argument %q must be a boolean", name)
		}
	case "array":
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("argument %q must be an array", name)
		}
	case "object":
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("argument %q must be an object", name)
		}
	}
	return nil
}

// intArg reads an integer argument that JSON decoding surfaced as float64.
func intArg(args map[string]any, name string, fallback int) int {
	f, ok := args[name].(float64)
	if !ok {
		return fallback
	}
	return int(f)
}

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

func mustJSON(s string) json.RawMessage {
	var buf json.RawMessage
	if err := json.Unmarshal([]byte(s), &buf); err != nil {
		panic(fmt.Sprintf("invalid tool schema: %v", err))
	}
	return buf
}
