package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/snooooofy/clawdbert/internal/domain"
	"github.com/snooooofy/clawdbert/internal/middleware"
)

func (h *Handler) listConversations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	convs, err := h.transcript.List(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list conversations", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	if convs == nil {
		convs = []domain.Conversation{}
	}
	writeJSON(w, http.StatusOK, convs)
}

func (h *Handler) createConversation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conv, err := h.transcript.Create(r.Context(), userID)
	if err != nil {
		slog.Error("failed to create conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create conversation")
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (h *Handler) deleteConversation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.transcript.Delete(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		slog.Error("failed to delete conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete conversation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTurns(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Ownership check before reading turns.
	if _, err := h.transcript.Get(r.Context(), r.PathValue("id"), userID); err != nil {
		if errors.Is(err, domain.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		slog.Error("failed to load conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	turns, err := h.transcript.LoadTurns(r.Context(), r.PathValue("id"))
	if err != nil {
		slog.Error("failed to load turns", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load turns")
		return
	}
	if turns == nil {
		turns = []domain.Turn{}
	}
	writeJSON(w, http.StatusOK, turns)
}
