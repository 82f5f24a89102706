package config

import "time"

const (
	// AI request timeout (covers the full streamed response)
	RequestTimeout = 90 * time.Second

	// Conversation title length (runes)
	MaxTitleLen = 60

	// Request body cap for JSON endpoints
	MaxRequestBodySize = 1 << 20

	// Maximum number of prior turns forwarded to the gateway
	MaxContextTurns = 100

	// Session token lifetime
	SessionTokenTTL = 30 * 24 * time.Hour

	// API key prefix shown to users (the raw secret is cb_<64 hex chars>)
	APIKeyPrefix = "cb_"

	// Server identity reported by the tool endpoint
	ServerName    = "clawdbert-mcp"
	ServerVersion = "1.0.0"

	// Tool protocol revision
	ProtocolVersion = "2024-11-05"

	// Background sweep of expired session tokens
	SessionSweepInterval = time.Hour

	// Background refresh of the documentation corpus
	DocsRefreshInterval = 6 * time.Hour
)
