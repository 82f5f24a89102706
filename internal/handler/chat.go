package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/snooooofy/clawdbert/internal/config"
	"github.com/snooooofy/clawdbert/internal/domain"
	"github.com/snooooofy/clawdbert/internal/middleware"
	"github.com/snooooofy/clawdbert/internal/service"
	"github.com/snooooofy/clawdbert/internal/session"
)

type chatRequest struct {
	Messages []service.ChatMessage `json:"messages"`
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

// sseWriter frames streamed fragments as text/event-stream data lines.
// Headers go out lazily so that gateway failures occurring before the
// first fragment can still be reported with a real status code.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}
	return &sseWriter{w: w, flusher: flusher}, nil
}

func (s *sseWriter) start() {
	if s.started {
		return
	}
	s.w.Header().Set("Content-Type", "text/event-stream")
	s.w.Header().Set("Cache-Control", "no-cache")
	s.w.Header().Set("Connection", "keep-alive")
	s.w.WriteHeader(http.StatusOK)
	s.started = true
}

func (s *sseWriter) event(v any) {
	s.start()
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal stream event", "error", err)
		return
	}
	fmt.Fprintf(s.w, "data: %s\n\n", payload)
	s.flusher.Flush()
}

func (s *sseWriter) done() {
	s.start()
	fmt.Fprint(s.w, "data: [DONE]\n\n")
	s.flusher.Flush()
}

type streamDelta struct {
	Content string `json:"content,omitempty"`
}

type streamChoice struct {
	Delta streamDelta `json:"delta"`
}

type streamChunk struct {
	Choices []streamChoice `json:"choices"`
}

func deltaChunk(content string) streamChunk {
	return streamChunk{Choices: []streamChoice{{Delta: streamDelta{Content: content}}}}
}

// chat relays a stateless streaming completion. The client supplies the
// full message history and receives deltas as they arrive from the
// gateway.
func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !readJSON(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	err = h.openClaw.ChatStream(r.Context(), req.Messages, func(fragment string) {
		sse.event(deltaChunk(fragment))
	})
	if err != nil {
		h.streamError(w, sse, err)
		return
	}
	sse.done()
}

// sendMessage appends a user message to a stored conversation, streams
// the assistant reply to the client, and persists the completed
// exchange.
func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req sendMessageRequest
	if !readJSON(w, r, &req) {
		return
	}

	conv, err := h.transcript.Get(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		slog.Error("failed to load conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	turns, err := h.transcript.LoadTurns(r.Context(), conv.ID)
	if err != nil {
		slog.Error("failed to load turns", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load turns")
		return
	}

	red := session.New()
	if err := red.Load(turns); err != nil {
		slog.Error("failed to seed session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to seed session")
		return
	}

	tok, err := red.Send(req.Message)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "message must not be empty")
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	messages := contextWindow(red.Transcript())

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	err = h.openClaw.ChatStream(r.Context(), messages, func(fragment string) {
		red.Fragment(tok, fragment)
		sse.event(deltaChunk(fragment))
	})
	if err != nil {
		red.Fail(tok, err)
		h.streamError(w, sse, err)
		return
	}

	pair := red.Complete(tok)
	// A store failure must not read as a chat failure: the reply already
	// streamed in full, so it is logged and the stream still closes clean.
	if err := h.transcript.PersistExchange(r.Context(), conv, pair); err != nil {
		slog.Error("failed to persist exchange", "conversation_id", conv.ID, "error", err)
	}
	sse.done()
}

// contextWindow converts the newest turns of a transcript into gateway
// messages, capped so long conversations do not blow the prompt budget.
func contextWindow(transcript domain.Transcript) []service.ChatMessage {
	if len(transcript) > config.MaxContextTurns {
		transcript = transcript[len(transcript)-config.MaxContextTurns:]
	}
	messages := make([]service.ChatMessage, 0, len(transcript))
	for _, turn := range transcript {
		messages = append(messages, service.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	return messages
}

// streamError reports a gateway failure either as a plain status (when
// no SSE bytes have gone out yet) or as a terminal stream event.
func (h *Handler) streamError(w http.ResponseWriter, sse *sseWriter, err error) {
	if sse.started {
		sse.event(map[string]string{"error": err.Error()})
		return
	}
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrPaymentRequired):
		writeError(w, http.StatusPaymentRequired, err.Error())
	default:
		slog.Error("gateway stream failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
