package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/snooooofy/clawdbert/internal/config"
	"github.com/snooooofy/clawdbert/internal/domain"
)

// ConversationStore is the persistence surface the transcript service
// needs, satisfied by repository.ConversationRepo.
type ConversationStore interface {
	CreateConversation(ctx context.Context, id, userID, title string) (*domain.Conversation, error)
	GetConversation(ctx context.Context, id, userID string) (*domain.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error)
	UpdateTitle(ctx context.Context, id, title string) error
	DeleteConversation(ctx context.Context, id, userID string) error
	AppendTurns(ctx context.Context, conversationID string, turns []domain.Turn) error
	ListTurns(ctx context.Context, conversationID string) ([]domain.StoredTurn, error)
}

// TranscriptService owns durable conversation state. Only finalized turn
// pairs ever reach it; partially streamed text stays in memory with the
// reducer.
type TranscriptService struct {
	repo ConversationStore
}

func NewTranscriptService(repo ConversationStore) *TranscriptService {
	return &TranscriptService{repo: repo}
}

func (s *TranscriptService) List(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return s.repo.ListConversations(ctx, userID)
}

func (s *TranscriptService) Get(ctx context.Context, id, userID string) (*domain.Conversation, error) {
	return s.repo.GetConversation(ctx, id, userID)
}

// Create starts an empty conversation. The title is derived later, from
// the first user turn.
func (s *TranscriptService) Create(ctx context.Context, userID string) (*domain.Conversation, error) {
	return s.repo.CreateConversation(ctx, domain.NewConversationID(), userID, "")
}

func (s *TranscriptService) Delete(ctx context.Context, id, userID string) error {
	return s.repo.DeleteConversation(ctx, id, userID)
}

// LoadTurns returns the persisted transcript in conversation order.
func (s *TranscriptService) LoadTurns(ctx context.Context, conversationID string) ([]domain.Turn, error) {
	stored, err := s.repo.ListTurns(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	turns := make([]domain.Turn, len(stored))
	for i, t := range stored {
		turns[i] = domain.Turn{Role: t.Role, Content: t.Content, Finalized: true}
	}
	return turns, nil
}

// PersistExchange appends a finalized turn pair and, for a conversation
// that has no title yet, derives one from the first user turn. The title
// is set exactly once and never overwritten by later turns.
func (s *TranscriptService) PersistExchange(ctx context.Context, conv *domain.Conversation, pair []domain.Turn) error {
	for _, t := range pair {
		if !t.Finalized {
			return fmt.Errorf("refusing to persist non-finalized %s turn", t.Role)
		}
	}

	if err := s.repo.AppendTurns(ctx, conv.ID, pair); err != nil {
		return err
	}

	if conv.Title == "" {
		for _, t := range pair {
			if t.Role == domain.RoleUser {
				title := domain.DeriveTitle(t.Content, config.MaxTitleLen)
				if err := s.repo.UpdateTitle(ctx, conv.ID, title); err != nil {
					// Title is cosmetic; the exchange is already durable.
					slog.Error("set conversation title", "conversation_id", conv.ID, "error", err)
				} else {
					conv.Title = title
				}
				break
			}
		}
	}
	return nil
}
