package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snooooofy/clawdbert/internal/domain"
)

// ConversationRepo persists conversation headers and their finalized turns.
type ConversationRepo struct {
	db *pgxpool.Pool
}

func NewConversationRepo(db *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{db: db}
}

func (r *ConversationRepo) CreateConversation(ctx context.Context, id, userID, title string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := r.db.QueryRow(ctx, `
		INSERT INTO conversations (id, user_id, title)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, title, created_at, updated_at`,
		id, userID, title,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &c, nil
}

func (r *ConversationRepo) GetConversation(ctx context.Context, id, userID string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &c, nil
}

// ListConversations returns the user's conversations, most recently
// updated first.
func (r *ConversationRepo) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateTitle sets the conversation title. Called exactly once, after the
// first user turn of a new conversation.
func (r *ConversationRepo) UpdateTitle(ctx context.Context, id, title string) error {
	if _, err := r.db.Exec(ctx, `UPDATE conversations SET title = $2 WHERE id = $1`, id, title); err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	return nil
}

// DeleteConversation removes the conversation; turns cascade via FK.
func (r *ConversationRepo) DeleteConversation(ctx context.Context, id, userID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM conversations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

// AppendTurns persists finalized turns in order and bumps the
// conversation's updated_at. Append-only: rows are never rewritten.
func (r *ConversationRepo) AppendTurns(ctx context.Context, conversationID string, turns []domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range turns {
		if _, err := tx.Exec(ctx, `
			INSERT INTO turns (conversation_id, role, content)
			VALUES ($1, $2, $3)`,
			conversationID, string(t.Role), t.Content,
		); err != nil {
			return fmt.Errorf("insert turn: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE conversations SET updated_at = now() WHERE id = $1`, conversationID); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// ListTurns returns the conversation's turns oldest first.
func (r *ConversationRepo) ListTurns(ctx context.Context, conversationID string) ([]domain.StoredTurn, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, conversation_id, role, content, created_at
		FROM turns
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var out []domain.StoredTurn
	for rows.Next() {
		var t domain.StoredTurn
		var role string
		if err := rows.Scan(&t.ID, &t.ConversationID, &role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.Role = domain.Role(role)
		out = append(out, t)
	}
	return out, rows.Err()
}
