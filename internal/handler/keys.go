package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/snooooofy/clawdbert/internal/domain"
	"github.com/snooooofy/clawdbert/internal/middleware"
)

type createKeyRequest struct {
	Name string `json:"name"`
}

type createKeyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

type keyListItem struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

// createKey mints a new API key. The raw key is returned exactly once;
// only its hash is stored.
func (h *Handler) createKey(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createKeyRequest
	if !readJSON(w, r, &req) {
		return
	}

	raw, key, err := h.keys.Create(r.Context(), userID, req.Name)
	if err != nil {
		slog.Error("failed to create API key", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create API key")
		return
	}

	writeJSON(w, http.StatusCreated, createKeyResponse{
		ID:        key.ID,
		Name:      key.Name,
		Key:       raw,
		CreatedAt: key.CreatedAt,
	})
}

func (h *Handler) listKeys(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	keys, err := h.keys.List(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list API keys", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list API keys")
		return
	}

	items := make([]keyListItem, 0, len(keys))
	for _, k := range keys {
		items = append(items, keyListItem{
			ID:         k.ID,
			Name:       k.Name,
			CreatedAt:  k.CreatedAt,
			LastUsedAt: k.LastUsedAt,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) deleteKey(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.keys.Delete(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			writeError(w, http.StatusNotFound, "API key not found")
			return
		}
		slog.Error("failed to delete API key", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete API key")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
