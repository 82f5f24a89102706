package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/snooooofy/clawdbert/internal/config"
	"github.com/snooooofy/clawdbert/internal/domain"
	"github.com/snooooofy/clawdbert/internal/mcp"
	"github.com/snooooofy/clawdbert/internal/middleware"
	"github.com/snooooofy/clawdbert/internal/service"
)

// AuthService covers account registration and session verification.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	VerifyToken(ctx context.Context, raw string) (string, error)
}

// TranscriptStore covers conversation and turn persistence.
type TranscriptStore interface {
	List(ctx context.Context, userID string) ([]domain.Conversation, error)
	Get(ctx context.Context, id, userID string) (*domain.Conversation, error)
	Create(ctx context.Context, userID string) (*domain.Conversation, error)
	Delete(ctx context.Context, id, userID string) error
	LoadTurns(ctx context.Context, conversationID string) ([]domain.Turn, error)
	PersistExchange(ctx context.Context, conv *domain.Conversation, pair []domain.Turn) error
}

// Gateway streams model completions.
type Gateway interface {
	ChatStream(ctx context.Context, messages []service.ChatMessage, onFragment func(string)) error
}

// KeyStore covers API key lifecycle and authentication.
type KeyStore interface {
	Create(ctx context.Context, userID, name string) (string, *domain.APIKey, error)
	List(ctx context.Context, userID string) ([]domain.APIKey, error)
	Delete(ctx context.Context, id, userID string) error
	Authenticate(ctx context.Context, presented string) (string, error)
}

// Handler holds all dependencies needed by the HTTP endpoints.
type Handler struct {
	cfg        *config.Config
	authSvc    AuthService
	transcript TranscriptStore
	openClaw   Gateway
	keys       KeyStore
	stats      *service.StatsService
	dispatcher *mcp.Dispatcher
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Cfg        *config.Config
	AuthSvc    AuthService
	Transcript TranscriptStore
	OpenClaw   Gateway
	Keys       KeyStore
	Stats      *service.StatsService
	Dispatcher *mcp.Dispatcher
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		cfg:        deps.Cfg,
		authSvc:    deps.AuthSvc,
		transcript: deps.Transcript,
		openClaw:   deps.OpenClaw,
		keys:       deps.Keys,
		stats:      deps.Stats,
		dispatcher: deps.Dispatcher,
	}
}

// Routes builds the full route table with middleware applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	authed := middleware.UserLoader(h.authSvc)

	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /api/stats", h.serverStats)

	mux.HandleFunc("POST /auth/register", h.register)
	mux.HandleFunc("POST /auth/login", h.login)

	mux.HandleFunc("POST /api/chat", h.chat)

	mux.Handle("GET /api/conversations", authed(http.HandlerFunc(h.listConversations)))
	mux.Handle("POST /api/conversations", authed(http.HandlerFunc(h.createConversation)))
	mux.Handle("DELETE /api/conversations/{id}", authed(http.HandlerFunc(h.deleteConversation)))
	mux.Handle("GET /api/conversations/{id}/turns", authed(http.HandlerFunc(h.listTurns)))
	mux.Handle("POST /api/conversations/{id}/messages", authed(http.HandlerFunc(h.sendMessage)))

	mux.Handle("POST /api/keys", authed(http.HandlerFunc(h.createKey)))
	mux.Handle("GET /api/keys", authed(http.HandlerFunc(h.listKeys)))
	mux.Handle("DELETE /api/keys/{id}", authed(http.HandlerFunc(h.deleteKey)))

	mux.HandleFunc("POST /mcp", h.mcpPost)
	mux.HandleFunc("GET /mcp", h.mcpInfo)

	var handler http.Handler = mux
	handler = middleware.RateLimit(h.cfg.RateLimit, h.cfg.RateLimitBurst)(handler)
	handler = middleware.CORS(h.cfg.AllowedOrigin)(handler)
	handler = middleware.Logging()(handler)
	handler = middleware.Recover()(handler)
	return handler
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) serverStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
