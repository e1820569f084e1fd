package agent

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/pantry/internal/model"
)

// scriptedModel plays back one scripted event sequence per Chat call and
// records every request it receives.
type scriptedModel struct {
	script   [][]model.Event
	requests []model.Request
}

func (s *scriptedModel) Chat(_ context.Context, req model.Request) (<-chan model.Event, error) {
	s.requests = append(s.requests, req)

	var events []model.Event
	if len(s.script) > 0 {
		events = s.script[0]
		s.script = s.script[1:]
	}

	ch := make(chan model.Event, len(events)+1)
	for _, ev := range events {
		ch <- ev
	}
	ch <- model.Event{Type: model.EventDone}
	close(ch)
	return ch, nil
}

func textEvents(text string) []model.Event {
	return []model.Event{{Type: model.EventTextDelta, Text: text}}
}

func toolCallEvent(id, name, args string) []model.Event {
	return []model.Event{{Type: model.EventToolCall, ToolCall: &model.ToolCall{ID: id, Name: name, Arguments: args}}}
}

func echoRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	r.Register(&Tool{
		Name:        "echo",
		Description: "echoes its input",
		Schema:      mustJSON(`{"type": "object", "properties": {"text": {"type": "string"}}, "required": ["text"]}`),
		Execute: func(_ context.Context, args map[string]any) ToolResult {
			return ToolResult{Tool: "echo", Content: stringArg(args, "text")}
		},
	})
	return r
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func userTurn(text string) []model.Message {
	return []model.Message{{Role: model.RoleUser, Content: text}}
}

func TestRunFinalAnswerWithoutTools(t *testing.T) {
	m := &scriptedModel{script: [][]model.Event{textEvents("Hello there")}}
	o := New(m, echoRegistry(t), Config{Model: "test"}, discardLogger())

	var streamed strings.Builder
	turn, err := o.Run(context.Background(), userTurn("hi"), func(d string) { streamed.WriteString(d) })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if turn.Content != "Hello there" {
		t.Errorf("Content = %q, want %q", turn.Content, "Hello there")
	}
	if streamed.String() != "Hello there" {
		t.Errorf("streamed %q, want %q", streamed.String(), "Hello there")
	}
	if turn.ModelCalls != 1 {
		t.Errorf("ModelCalls = %d, want 1", turn.ModelCalls)
	}
	if turn.BudgetHit {
		t.Error("BudgetHit set on a one-shot answer")
	}
	if len(turn.Steps) != 0 {
		t.Errorf("Steps = %v, want none", turn.Steps)
	}

	// The system prompt leads the conversation sent to the model.
	req := m.requests[0]
	if len(req.Messages) != 2 || req.Messages[0].Role != model.RoleSystem {
		t.Errorf("first request messages = %v, want system prompt then user", req.Messages)
	}
}

func TestRunToolRoundTrip(t *testing.T) {
	m := &scriptedModel{script: [][]model.Event{
		toolCallEvent("call-1", "echo", `{"text": "pong"}`),
		textEvents("The tool said pong"),
	}}
	o := New(m, echoRegistry(t), Config{Model: "test"}, discardLogger())

	turn, err := o.Run(context.Background(), userTurn("ping"), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if turn.Content != "The tool said pong" {
		t.Errorf("Content = %q", turn.Content)
	}
	if turn.ModelCalls != 2 {
		t.Errorf("ModelCalls = %d, want 2", turn.ModelCalls)
	}
	if len(turn.Steps) != 1 || turn.Steps[0].Tool != "echo" || turn.Steps[0].Content != "pong" {
		t.Errorf("Steps = %+v, want one echo step with content pong", turn.Steps)
	}

	// Second request carries the assistant tool-call message and the tool result.
	second := m.requests[1].Messages
	last := second[len(second)-1]
	if last.Role != model.RoleTool || last.Content != "pong" || last.ToolCallID != "call-1" {
		t.Errorf("tool message = %+v, want role=tool content=pong id=call-1", last)
	}
	assistant := second[len(second)-2]
	if assistant.Role != model.RoleAssistant || len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].ID != "call-1" {
		t.Errorf("assistant message = %+v, want tool call call-1", assistant)
	}
}

func TestRunToolErrorFedBackToModel(t *testing.T) {
	m := &scriptedModel{script: [][]model.Event{
		toolCallEvent("call-1", "noSuchTool", `{}`),
		textEvents("I could not do that"),
	}}
	o := New(m, echoRegistry(t), Config{Model: "test"}, discardLogger())

	turn, err := o.Run(context.Background(), userTurn("do the thing"), nil)
	if err != nil {
		t.Fatalf("Run() error = %v, want tool errors absorbed into the turn", err)
	}

	if len(turn.Steps) != 1 || turn.Steps[0].Error == "" {
		t.Fatalf("Steps = %+v, want one failed step", turn.Steps)
	}

	second := m.requests[1].Messages
	last := second[len(second)-1]
	if last.Role != model.RoleTool || !strings.HasPrefix(last.Content, "tool error:") {
		t.Errorf("tool message = %+v, want a tool error fed back", last)
	}
}

func TestRunStopsAtStepBudget(t *testing.T) {
	// A model that calls a tool on every turn never produces a final answer.
	m := &scriptedModel{script: [][]model.Event{
		toolCallEvent("c1", "echo", `{"text": "1"}`),
		toolCallEvent("c2", "echo", `{"text": "2"}`),
		toolCallEvent("c3", "echo", `{"text": "3"}`),
		toolCallEvent("c4", "echo", `{"text": "4"}`),
	}}
	o := New(m, echoRegistry(t), Config{Model: "test", StepBudget: 3}, discardLogger())

	turn, err := o.Run(context.Background(), userTurn("loop forever"), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if turn.ModelCalls != 3 {
		t.Errorf("ModelCalls = %d, want exactly the budget of 3", turn.ModelCalls)
	}
	if !turn.BudgetHit {
		t.Error("BudgetHit not set after exhausting the budget")
	}
	if len(turn.Steps) != 3 {
		t.Errorf("Steps = %d, want 3", len(turn.Steps))
	}
}

func TestRunDefaultsApplied(t *testing.T) {
	o := New(&scriptedModel{}, NewRegistry(), Config{Model: "test"}, discardLogger())
	if o.config.StepBudget != DefaultStepBudget {
		t.Errorf("StepBudget = %d, want default %d", o.config.StepBudget, DefaultStepBudget)
	}
	if o.config.SystemPrompt == "" {
		t.Error("SystemPrompt default not applied")
	}
}

func TestRunStreamErrorFailsTurn(t *testing.T) {
	m := &scriptedModel{script: [][]model.Event{
		{{Type: model.EventError, Err: "rate limited"}},
	}}
	o := New(m, echoRegistry(t), Config{Model: "test"}, discardLogger())

	_, err := o.Run(context.Background(), userTurn("hi"), nil)
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Run() error = %v, want the stream error surfaced", err)
	}
}

func TestRunArtifactsCollected(t *testing.T) {
	r := NewRegistry()
	r.Register(&Tool{
		Name:        "chart",
		Description: "makes a chart",
		Schema:      mustJSON(`{"type": "object", "properties": {}}`),
		Execute: func(_ context.Context, _ map[string]any) ToolResult {
			return ToolResult{
				Tool:     "chart",
				Content:  "chart ready",
				Artifact: &Artifact{Kind: "chart", Payload: json.RawMessage(`{"type":"bar"}`)},
			}
		},
	})

	m := &scriptedModel{script: [][]model.Event{
		toolCallEvent("c1", "chart", `{}`),
		textEvents("Here is your chart"),
	}}
	o := New(m, r, Config{Model: "test"}, discardLogger())

	turn, err := o.Run(context.Background(), userTurn("chart it"), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(turn.Artifacts) != 1 || turn.Artifacts[0].Kind != "chart" {
		t.Errorf("Artifacts = %+v, want one chart artifact", turn.Artifacts)
	}
}
