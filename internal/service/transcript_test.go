package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snooooofy/clawdbert/internal/domain"
)

type stubConversationStore struct {
	appended       [][]domain.Turn
	appendErr      error
	titleUpdates   []string
	updateTitleErr error
	storedTurns    []domain.StoredTurn
}

func (s *stubConversationStore) CreateConversation(ctx context.Context, id, userID, title string) (*domain.Conversation, error) {
	return &domain.Conversation{ID: id, UserID: userID, Title: title}, nil
}

func (s *stubConversationStore) GetConversation(ctx context.Context, id, userID string) (*domain.Conversation, error) {
	return nil, domain.ErrConversationNotFound
}

func (s *stubConversationStore) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return nil, nil
}

func (s *stubConversationStore) UpdateTitle(ctx context.Context, id, title string) error {
	if s.updateTitleErr != nil {
		return s.updateTitleErr
	}
	s.titleUpdates = append(s.titleUpdates, title)
	return nil
}

func (s *stubConversationStore) DeleteConversation(ctx context.Context, id, userID string) error {
	return nil
}

func (s *stubConversationStore) AppendTurns(ctx context.Context, conversationID string, turns []domain.Turn) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, turns)
	return nil
}

func (s *stubConversationStore) ListTurns(ctx context.Context, conversationID string) ([]domain.StoredTurn, error) {
	return s.storedTurns, nil
}

func exchange(user, assistant string) []domain.Turn {
	return []domain.Turn{
		{Role: domain.RoleUser, Content: user, Finalized: true},
		{Role: domain.RoleAssistant, Content: assistant, Finalized: true},
	}
}

func TestPersistExchangeSetsTitleOnce(t *testing.T) {
	store := &stubConversationStore{}
	svc := NewTranscriptService(store)
	conv := &domain.Conversation{ID: "c1", UserID: "u1"}

	require.NoError(t, svc.PersistExchange(context.Background(), conv,
		exchange("What is OpenClaw?", "A gateway.")))
	require.Equal(t, []string{"What is OpenClaw?"}, store.titleUpdates)
	assert.Equal(t, "What is OpenClaw?", conv.Title)

	// Later exchanges never touch the title again.
	require.NoError(t, svc.PersistExchange(context.Background(), conv,
		exchange("And channels?", "Connectors.")))
	assert.Equal(t, []string{"What is OpenClaw?"}, store.titleUpdates)
	assert.Equal(t, "What is OpenClaw?", conv.Title)
	assert.Len(t, store.appended, 2)
}

func TestPersistExchangeTruncatesLongTitle(t *testing.T) {
	store := &stubConversationStore{}
	svc := NewTranscriptService(store)
	conv := &domain.Conversation{ID: "c1", UserID: "u1"}

	long := "how do I configure the gateway to talk to several model providers at once"
	require.NoError(t, svc.PersistExchange(context.Background(), conv, exchange(long, "Like this.")))
	require.Len(t, store.titleUpdates, 1)
	assert.Equal(t, string([]rune(long)[:60]), store.titleUpdates[0])
}

func TestPersistExchangeRejectsNonFinalizedTurn(t *testing.T) {
	store := &stubConversationStore{}
	svc := NewTranscriptService(store)
	conv := &domain.Conversation{ID: "c1", UserID: "u1"}

	pair := []domain.Turn{
		{Role: domain.RoleUser, Content: "hi", Finalized: true},
		{Role: domain.RoleAssistant, Content: "partial"},
	}
	err := svc.PersistExchange(context.Background(), conv, pair)
	assert.Error(t, err)
	assert.Empty(t, store.appended, "nothing may reach the store")
	assert.Empty(t, store.titleUpdates)
}

func TestPersistExchangeAppendFailurePropagates(t *testing.T) {
	store := &stubConversationStore{appendErr: errors.New("db down")}
	svc := NewTranscriptService(store)
	conv := &domain.Conversation{ID: "c1", UserID: "u1"}

	err := svc.PersistExchange(context.Background(), conv, exchange("hi", "hello"))
	assert.Error(t, err)
	assert.Empty(t, store.titleUpdates, "no title without a durable exchange")
}

func TestPersistExchangeTitleFailureIsNotFatal(t *testing.T) {
	store := &stubConversationStore{updateTitleErr: errors.New("db down")}
	svc := NewTranscriptService(store)
	conv := &domain.Conversation{ID: "c1", UserID: "u1"}

	require.NoError(t, svc.PersistExchange(context.Background(), conv, exchange("hi", "hello")))
	assert.Len(t, store.appended, 1)
	assert.Empty(t, conv.Title, "title stays unset so the next exchange retries")
}

func TestLoadTurnsFinalizesStoredContent(t *testing.T) {
	store := &stubConversationStore{storedTurns: []domain.StoredTurn{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
	}}
	svc := NewTranscriptService(store)

	turns, err := svc.LoadTurns(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	for _, turn := range turns {
		assert.True(t, turn.Finalized)
	}
}
