package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type stubAnswerer struct {
	answer string
	err    error
	calls  int
}

func (s *stubAnswerer) Answer(_ context.Context, question string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func newTestDispatcher(a Answerer) *Dispatcher {
	return New(ServerInfo{Name: "clawdbert-mcp", Version: "1.0.0"}, "2024-11-05", a)
}

func dispatch(t *testing.T, d *Dispatcher, method string, params any) Response {
	t.Helper()
	req := Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			t.Fatalf("marshal params: %v", err)
		}
		req.Params = raw
	}
	return d.Dispatch(context.Background(), req)
}

func TestInitialize(t *testing.T) {
	d := newTestDispatcher(&stubAnswerer{})

	resp := dispatch(t, d, "initialize", nil)
	if resp.Error != nil {
		t.Fatalf("initialize error = %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("result type = %T, want map", resp.Result)
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
	if info, ok := result["serverInfo"].(ServerInfo); !ok || info.Name != "clawdbert-mcp" {
		t.Errorf("serverInfo = %v", result["serverInfo"])
	}
}

func TestToolsListAdvertisesSingleTool(t *testing.T) {
	d := newTestDispatcher(&stubAnswerer{})

	resp := dispatch(t, d, "tools/list", nil)
	if resp.Error != nil {
		t.Fatalf("tools/list error = %+v", resp.Error)
	}
	tools := resp.Result.(map[string]any)["tools"].([]Tool)
	if len(tools) != 1 {
		t.Fatalf("advertised %d tools, want 1", len(tools))
	}
	if tools[0].Name != "ask_clawdbert" {
		t.Errorf("tool name = %q", tools[0].Name)
	}
	required, _ := tools[0].InputSchema["required"].([]string)
	if len(required) != 1 || required[0] != "question" {
		t.Errorf("required schema fields = %v, want [question]", required)
	}
}

func TestUnknownMethod(t *testing.T) {
	d := newTestDispatcher(&stubAnswerer{})

	resp := dispatch(t, d, "resources/list", nil)
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Fatalf("error = %+v, want code %d", resp.Error, CodeMethodNotFound)
	}
}

func TestNotificationAck(t *testing.T) {
	d := newTestDispatcher(&stubAnswerer{})

	resp := dispatch(t, d, "notifications/initialized", nil)
	if resp.Error != nil || resp.Result != nil {
		t.Fatalf("notification ack = %+v, want empty response", resp)
	}
}

func TestCallReturnsAnswerVerbatim(t *testing.T) {
	stub := &stubAnswerer{answer: "EXFOLIATE! Install with the one-line script."}
	d := newTestDispatcher(stub)

	resp := dispatch(t, d, "tools/call", map[string]any{
		"name":      "ask_clawdbert",
		"arguments": map[string]any{"question": "How do I install OpenClaw?"},
	})
	if resp.Error != nil {
		t.Fatalf("tools/call error = %+v", resp.Error)
	}
	content := resp.Result.(map[string]any)["content"].([]TextContent)
	if len(content) != 1 || content[0].Type != "text" {
		t.Fatalf("content = %+v, want one text block", content)
	}
	if content[0].Text != stub.answer {
		t.Errorf("text = %q, want %q", content[0].Text, stub.answer)
	}
	if stub.calls != 1 {
		t.Errorf("answerer called %d times, want 1", stub.calls)
	}
}

func TestCallUnknownTool(t *testing.T) {
	stub := &stubAnswerer{answer: "unused"}
	d := newTestDispatcher(stub)

	resp := dispatch(t, d, "tools/call", map[string]any{
		"name":      "ask_someone_else",
		"arguments": map[string]any{"question": "hi"},
	})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Fatalf("error = %+v, want code %d", resp.Error, CodeInvalidParams)
	}
	if stub.calls != 0 {
		t.Errorf("answerer called %d times, want 0", stub.calls)
	}
}

func TestCallMissingQuestion(t *testing.T) {
	stub := &stubAnswerer{answer: "unused"}
	d := newTestDispatcher(stub)

	resp := dispatch(t, d, "tools/call", map[string]any{
		"name":      "ask_clawdbert",
		"arguments": map[string]any{},
	})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Fatalf("error = %+v, want code %d", resp.Error, CodeInvalidParams)
	}
	if stub.calls != 0 {
		t.Errorf("answerer called %d times, want 0", stub.calls)
	}
}

func TestCallAnswererFailure(t *testing.T) {
	d := newTestDispatcher(&stubAnswerer{err: errors.New("upstream inference failure")})

	resp := dispatch(t, d, "tools/call", map[string]any{
		"name":      "ask_clawdbert",
		"arguments": map[string]any{"question": "hi"},
	})
	if resp.Error == nil || resp.Error.Code != CodeServerError {
		t.Fatalf("error = %+v, want code %d", resp.Error, CodeServerError)
	}
}

func TestHandleRawParseError(t *testing.T) {
	d := newTestDispatcher(&stubAnswerer{})

	resp := d.HandleRaw(context.Background(), []byte("{not json"))
	if resp.Error == nil || resp.Error.Code != CodeParseError {
		t.Fatalf("error = %+v, want code %d", resp.Error, CodeParseError)
	}
}

func TestResponsesSerializeCleanly(t *testing.T) {
	d := newTestDispatcher(&stubAnswerer{answer: "ok"})

	resp := d.HandleRaw(context.Background(), []byte(`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"ask_clawdbert","arguments":{"question":"q"}}}`))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var decoded struct {
		JSONRPC string `json:"jsonrpc"`
		ID      int    `json:"id"`
		Result  struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if decoded.ID != 7 || decoded.Result.Content[0].Text != "ok" {
		t.Errorf("round-tripped response = %+v", decoded)
	}
}
