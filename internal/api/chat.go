package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/MikeSquared-Agency/pantry/internal/agent"
	"github.com/MikeSquared-Agency/pantry/internal/model"
)

// ChatHandler runs a conversation turn through the orchestrator, streaming
// answer text to the caller as newline-delimited JSON events.
type ChatHandler struct {
	orchestrator *agent.Orchestrator
	logger       *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(orchestrator *agent.Orchestrator, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator, logger: logger}
}

// ChatRequest carries the conversation history for one turn.
type ChatRequest struct {
	Messages []model.Message `json:"messages"`
}

// chatEvent is one NDJSON line of the streamed response.
type chatEvent struct {
	Type      string            `json:"type"` // "delta", "turn", "error"
	Text      string            `json:"text,omitempty"`
	Content   string            `json:"content,omitempty"`
	Artifacts []agent.Artifact  `json:"artifacts,omitempty"`
	Steps     []agent.Step      `json:"steps,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "At least one message is required")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	emit := func(ev chatEvent) {
		_ = enc.Encode(ev)
		if flusher != nil {
			flusher.Flush()
		}
	}

	turn, err := h.orchestrator.Run(r.Context(), req.Messages, func(delta string) {
		emit(chatEvent{Type: "delta", Text: delta})
	})
	if err != nil {
		// The turn failed at the model boundary; report it in-stream so the
		// client can render it instead of a broken response.
		h.logger.Error("chat turn failed", "error", err)
		emit(chatEvent{Type: "error", Error: err.Error()})
		return
	}

	emit(chatEvent{
		Type:      "turn",
		Content:   turn.Content,
		Artifacts: turn.Artifacts,
		Steps:     turn.Steps,
	})
}
