package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/pantry/internal/model"
)

// DefaultStepBudget bounds the number of model<->tool round trips per turn.
const DefaultStepBudget = 5

const defaultSystemPrompt = `You are a helpful assistant for a food and beverage catalog.
Answer questions using the provided tools: semantic search for free-text questions,
rankByPrice for most/least expensive questions, and runReadOnlyQuery for anything the
other tools cannot answer. Mutate the catalog only when the user explicitly asks.
If a tool returns no results, say so rather than guessing.`

// Config holds orchestrator construction-time settings. Model and budget are
// explicit values threaded in here, never ambient state.
type Config struct {
	Model        string
	StepBudget   int
	SystemPrompt string
}

// Step records one tool invocation and its outcome, for the turn trace.
type Step struct {
	Tool      string `json:"tool"`
	Arguments string `json:"arguments"`
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Turn is the result of one conversation turn.
type Turn struct {
	Content    string     `json:"content"`
	Artifacts  []Artifact `json:"artifacts,omitempty"`
	Steps      []Step     `json:"steps,omitempty"`
	BudgetHit  bool       `json:"budget_hit,omitempty"`
	ModelCalls int        `json:"-"`
}

// Orchestrator drives a single user turn: ask the model, maybe invoke a tool,
// feed the result back, repeat until a final answer or the step budget runs out.
type Orchestrator struct {
	chat   model.ChatModel
	tools  *Registry
	config Config
	logger *slog.Logger
}

// New creates an Orchestrator.
func New(chat model.ChatModel, tools *Registry, cfg Config, logger *slog.Logger) *Orchestrator {
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = DefaultStepBudget
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	return &Orchestrator{chat: chat, tools: tools, config: cfg, logger: logger}
}

// Run executes one turn over the given conversation history. Text deltas are
// streamed to sink as they arrive (sink may be nil); tool progression is
// staged between model calls, with exactly one outstanding model call or tool
// execution at a time. The loop terminates on a final answer or after
// StepBudget round trips, returning whatever the model last produced.
func (o *Orchestrator) Run(ctx context.Context, history []model.Message, sink func(delta string)) (*Turn, error) {
	messages := make([]model.Message, 0, len(history)+1)
	messages = append(messages, model.Message{Role: model.RoleSystem, Content: o.config.SystemPrompt})
	messages = append(messages, history...)

	defs := o.tools.Definitions()
	turn := &Turn{}

	for step := 0; step < o.config.StepBudget; step++ {
		eventCh, err := o.chat.Chat(ctx, model.Request{
			Model:    o.config.Model,
			Messages: messages,
			Tools:    defs,
		})
		if err != nil {
			return nil, fmt.Errorf("model call: %w", err)
		}
		turn.ModelCalls++

		text, calls, streamErr := o.drain(eventCh, sink)
		if streamErr != "" {
			return nil, fmt.Errorf("model stream: %s", streamErr)
		}
		turn.Content = text

		if len(calls) == 0 {
			// Final answer.
			return turn, nil
		}

		messages = append(messages, model.Message{
			Role:      model.RoleAssistant,
			Content:   text,
			ToolCalls: derefCalls(calls),
		})

		for _, call := range calls {
			result := o.tools.Invoke(ctx, *call)

			content := result.Content
			if result.Error != "" {
				// Returned to the model as a tool error so it can retry with
				// corrected arguments or explain the problem conversationally.
				content = "tool error: " + result.Error
				o.logger.Warn("tool invocation failed", "tool", call.Name, "error", result.Error)
			}

			messages = append(messages, model.Message{
				Role:       model.RoleTool,
				Content:    content,
				ToolCallID: call.ID,
			})

			turn.Steps = append(turn.Steps, Step{
				Tool:      call.Name,
				Arguments: call.Arguments,
				Content:   result.Content,
				Error:     result.Error,
			})
			if result.Artifact != nil {
				turn.Artifacts = append(turn.Artifacts, *result.Artifact)
			}
		}
	}

	o.logger.Warn("step budget exhausted", "budget", o.config.StepBudget)
	turn.BudgetHit = true
	return turn, nil
}

// drain consumes the event stream, forwarding text deltas to sink and
// collecting tool calls.
func (o *Orchestrator) drain(eventCh <-chan model.Event, sink func(delta string)) (string, []*model.ToolCall, string) {
	var buf strings.Builder
	var calls []*model.ToolCall
	var streamErr string

	for ev := range eventCh {
		switch ev.Type {
		case model.EventTextDelta:
			buf.WriteString(ev.Text)
			if sink != nil {
				sink(ev.Text)
			}
		case model.EventToolCall:
			if ev.ToolCall != nil {
				calls = append(calls, ev.ToolCall)
			}
		case model.EventError:
			streamErr = ev.Err
		case model.EventDone:
		}
	}

	return buf.String(), calls, streamErr
}

func derefCalls(calls []*model.ToolCall) []model.ToolCall {
	out := make([]model.ToolCall, 0, len(calls))
	for _, c := range calls {
		out = append(out, *c)
	}
	return out
}
