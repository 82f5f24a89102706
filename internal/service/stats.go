package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// StatsService tracks gateway usage across the process lifetime. Token
// counts are only exact on the non-streaming path (the gateway reports
// usage there); streamed requests are counted by fragment.
type StatsService struct {
	mu sync.Mutex

	startTime          time.Time
	streamRequests     int64
	completionRequests int64
	fragments          int64
	promptTokens       int64
	completionTokens   int64

	promptPricePerM     decimal.Decimal
	completionPricePerM decimal.Decimal
}

// Stats is an immutable usage snapshot.
type Stats struct {
	StartTime          time.Time `json:"start_time"`
	TotalRequests      int64     `json:"total_requests"`
	StreamRequests     int64     `json:"stream_requests"`
	CompletionRequests int64     `json:"completion_requests"`
	Fragments          int64     `json:"fragments"`
	PromptTokens       int64     `json:"prompt_tokens"`
	CompletionTokens   int64     `json:"completion_tokens"`
	CostUSD            string    `json:"cost_usd"`
}

// NewStatsService parses the per-million-token prices (USD, decimal
// strings) and starts the clock.
func NewStatsService(promptPricePerM, completionPricePerM string) (*StatsService, error) {
	pp, err := decimal.NewFromString(promptPricePerM)
	if err != nil {
		return nil, fmt.Errorf("parse prompt price: %w", err)
	}
	cp, err := decimal.NewFromString(completionPricePerM)
	if err != nil {
		return nil, fmt.Errorf("parse completion price: %w", err)
	}
	return &StatsService{
		startTime:           time.Now(),
		promptPricePerM:     pp,
		completionPricePerM: cp,
	}, nil
}

// RecordStream records one streamed request and its fragment count.
func (s *StatsService) RecordStream(fragments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streamRequests++
	s.fragments += int64(fragments)
}

// RecordCompletion records one non-streaming request with exact usage.
func (s *StatsService) RecordCompletion(promptTokens, completionTokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completionRequests++
	s.promptTokens += int64(promptTokens)
	s.completionTokens += int64(completionTokens)
}

// Snapshot returns current counters and the accumulated token cost.
func (s *StatsService) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	million := decimal.NewFromInt(1_000_000)
	cost := s.promptPricePerM.Mul(decimal.NewFromInt(s.promptTokens)).Div(million).
		Add(s.completionPricePerM.Mul(decimal.NewFromInt(s.completionTokens)).Div(million))

	return Stats{
		StartTime:          s.startTime,
		TotalRequests:      s.streamRequests + s.completionRequests,
		StreamRequests:     s.streamRequests,
		CompletionRequests: s.completionRequests,
		Fragments:          s.fragments,
		PromptTokens:       s.promptTokens,
		CompletionTokens:   s.completionTokens,
		CostUSD:            cost.StringFixed(6),
	}
}
