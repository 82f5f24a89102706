package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/snooooofy/clawdbert/internal/config"
	"github.com/snooooofy/clawdbert/internal/mcp"
	"github.com/snooooofy/clawdbert/internal/middleware"
)

// mcpPost serves JSON-RPC 2.0 requests for the tool endpoint. Callers
// authenticate with a bearer API key; failures are reported as a
// JSON-RPC error body before any method dispatch happens.
func (h *Handler) mcpPost(w http.ResponseWriter, r *http.Request) {
	key := middleware.BearerToken(r)
	if key == "" {
		h.mcpUnauthorized(w, "Missing Authorization header. Use Bearer <your-api-key>")
		return
	}
	if _, err := h.keys.Authenticate(r.Context(), key); err != nil {
		h.mcpUnauthorized(w, "Invalid API key")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, mcp.Response{
			JSONRPC: "2.0",
			Error:   &mcp.Error{Code: mcp.CodeParseError, Message: "Unable to read request body"},
		})
		return
	}

	resp := h.dispatcher.HandleRaw(r.Context(), raw)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) mcpUnauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, mcp.Response{
		JSONRPC: "2.0",
		Error:   &mcp.Error{Code: mcp.CodeServerError, Message: msg},
	})
}

// mcpInfo describes the endpoint for clients probing it with GET.
func (h *Handler) mcpInfo(w http.ResponseWriter, r *http.Request) {
	info := h.dispatcher.Info()
	slog.Debug("mcp info probe", "remote", r.RemoteAddr)
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        info.Name,
		"version":     info.Version,
		"description": "ClawdBert tool endpoint. POST JSON-RPC 2.0 requests with a Bearer API key.",
		"tools":       h.dispatcher.Tools(),
	})
}
