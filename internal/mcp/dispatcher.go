// Package mcp exposes the question-answering capability to external
// tool-calling clients over a JSON-RPC 2.0 wire contract: an initialize
// handshake, tool discovery, and invocation of the single registered tool.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// JSON-RPC error codes returned to callers. Stable so clients can branch
// programmatically.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeServerError    = -32000
)

const toolName = "ask_clawdbert"

// Answerer produces a complete answer for one question. The dispatcher is
// stateless: every call is a fresh single-question exchange with no session
// concept.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Request is an incoming JSON-RPC request object.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is an outgoing JSON-RPC response object. Exactly one of Result
// and Error is set, except for notification acks which carry neither.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a structured JSON-RPC error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ServerInfo identifies this server in the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Tool describes one invocable tool for tools/list.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// TextContent is one block of a tools/call result.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Dispatcher maps protocol methods onto the Answerer. It never lets an
// internal failure escape unstructured: every code path yields a
// well-formed Response.
type Dispatcher struct {
	info            ServerInfo
	protocolVersion string
	answerer        Answerer
}

// New builds a Dispatcher for the given server identity.
func New(info ServerInfo, protocolVersion string, answerer Answerer) *Dispatcher {
	return &Dispatcher{info: info, protocolVersion: protocolVersion, answerer: answerer}
}

// Info returns the server identity, also served on plain GET.
func (d *Dispatcher) Info() ServerInfo { return d.info }

// Tools returns the advertised tool list.
func (d *Dispatcher) Tools() []Tool {
	return []Tool{{
		Name: toolName,
		Description: "Ask ClawdBert 🦞 a question about OpenClaw. ClawdBert is the official " +
			"OpenClaw documentation assistant that knows everything about installation, " +
			"configuration, channels, tools, skills, and more.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "The question to ask ClawdBert about OpenClaw",
				},
			},
			"required": []string{"question"},
		},
	}}
}

// Dispatch handles one decoded request.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	switch req.Method {
	case "initialize":
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: map[string]any{
				"protocolVersion": d.protocolVersion,
				"capabilities":    map[string]any{"tools": map[string]any{}},
				"serverInfo":      d.info,
			},
		}

	case "notifications/initialized":
		return Response{JSONRPC: "2.0"}

	case "tools/list":
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]any{"tools": d.Tools()},
		}

	case "tools/call":
		return d.call(ctx, req)

	default:
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("Method not found: %s", req.Method)},
		}
	}
}

// HandleRaw decodes raw request bytes and dispatches. Malformed JSON maps
// to a parse error response instead of a transport failure.
func (d *Dispatcher) HandleRaw(ctx context.Context, raw []byte) Response {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Response{
			JSONRPC: "2.0",
			Error:   &Error{Code: CodeParseError, Message: "Parse error"},
		}
	}
	return d.Dispatch(ctx, req)
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (d *Dispatcher) call(ctx context.Context, req Request) Response {
	var params callParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return Response{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error:   &Error{Code: CodeInvalidParams, Message: "Invalid params"},
			}
		}
	}

	if params.Name != toolName {
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("Unknown tool: %s", params.Name)},
		}
	}

	var args struct {
		Question string `json:"question"`
	}
	if len(params.Arguments) > 0 {
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return Response{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error:   &Error{Code: CodeInvalidParams, Message: "Invalid params"},
			}
		}
	}
	if args.Question == "" {
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: CodeInvalidParams, Message: "Missing required parameter: question"},
		}
	}

	answer, err := d.answerer.Answer(ctx, args.Question)
	if err != nil {
		slog.Error("tool call failed", "tool", toolName, "error", err)
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: CodeServerError, Message: err.Error()},
		}
	}

	return Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"content": []TextContent{{Type: "text", Text: answer}},
		},
	}
}
