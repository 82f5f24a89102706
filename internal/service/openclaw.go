package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/snooooofy/clawdbert/internal/config"
	"github.com/snooooofy/clawdbert/internal/docs"
	"github.com/snooooofy/clawdbert/internal/domain"
)

// OpenClawService talks to the hosted inference gateway. It is the
// incremental text source for the chat reducer: given prior turns it
// produces a sequence of text fragments and exactly one terminal
// completion or failure.
type OpenClawService struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	stats      *StatsService

	mu           sync.RWMutex
	systemPrompt string
}

func NewOpenClawService(apiKey, baseURL, model string, stats *StatsService) *OpenClawService {
	return &OpenClawService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		stats:      stats,

		systemPrompt: docs.SystemPrompt(docs.Corpus),
	}
}

// UpdateCorpus swaps in a freshly scraped documentation corpus.
func (s *OpenClawService) UpdateCorpus(corpus string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systemPrompt = docs.SystemPrompt(corpus)
}

func (s *OpenClawService) currentPrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.systemPrompt
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *streamChunk) content() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.Content
	}
	return ""
}

func (c *streamChunk) done() bool {
	return len(c.Choices) > 0 && c.Choices[0].FinishReason != ""
}

// ChatStream streams a completion for the given prior turns. onFragment is
// called for each non-empty text fragment in delivery order. A nil return
// is the done signal; a non-nil return is the error signal. Exactly one of
// the two follows the last fragment.
func (s *OpenClawService) ChatStream(ctx context.Context, messages []ChatMessage, onFragment func(string)) error {
	resp, err := s.send(ctx, messages, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	fragments := 0
	reader := newSSEReader(resp.Body)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		data, err := reader.readEvent()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read stream: %w", err)
		}

		if bytes.Equal(data, []byte("[DONE]")) {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Malformed keep-alive or vendor extension; skip it.
			continue
		}
		if text := chunk.content(); text != "" {
			fragments++
			onFragment(text)
		}
		if chunk.done() {
			break
		}
	}

	if s.stats != nil {
		s.stats.RecordStream(fragments)
	}
	return nil
}

// Answer asks a single question without streaming and returns the full
// reply. This is the path the tool dispatcher uses.
func (s *OpenClawService) Answer(ctx context.Context, question string) (string, error) {
	messages := []ChatMessage{{Role: "user", Content: question}}

	resp, err := s.send(ctx, messages, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if s.stats != nil {
		s.stats.RecordCompletion(chatResp.Usage.PromptTokens, chatResp.Usage.CompletionTokens)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "No response generated.", nil
	}
	return chatResp.Choices[0].Message.Content, nil
}

func (s *OpenClawService) send(ctx context.Context, messages []ChatMessage, stream bool) (*http.Response, error) {
	withSystem := make([]ChatMessage, 0, len(messages)+1)
	withSystem = append(withSystem, ChatMessage{Role: "system", Content: s.currentPrompt()})
	withSystem = append(withSystem, messages...)

	payload, err := json.Marshal(chatRequest{
		Model:    s.model,
		Messages: withSystem,
		Stream:   stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		return nil, domain.ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		resp.Body.Close()
		return nil, domain.ErrPaymentRequired
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrGateway, resp.StatusCode, body)
	}
	return resp, nil
}
