// Package model defines the chat-model boundary: an opaque capability that
// accepts a prompt plus tool specs and streams back either answer text or tool
// invocations.
package model

import (
	"context"
	"encoding/json"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in the conversation context.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls is set on assistant messages that invoked tools.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a role=tool result back to the invocation it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolCall is a model-requested tool invocation. Arguments are the model's raw
// JSON and must be validated before use.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition describes a tool to the model: name, natural-language
// description, and a JSON schema for its arguments.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Schema      json.RawMessage `json:"schema"`
}

// Request is a single chat call.
type Request struct {
	Model    string
	Messages []Message
	Tools    []ToolDefinition
}

// EventType discriminates streamed chat events.
type EventType int

const (
	EventTextDelta EventType = iota
	EventToolCall
	EventDone
	EventError
)

// Event is one streamed chunk of a chat response.
type Event struct {
	Type     EventType
	Text     string
	ToolCall *ToolCall
	Err      string
}

// ChatModel streams a chat response. The channel is closed after EventDone or
// EventError. Implementations may be slow, rate-limited, and fallible.
type ChatModel interface {
	Chat(ctx context.Context, req Request) (<-chan Event, error)
}
