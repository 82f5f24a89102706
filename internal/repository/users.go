package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snooooofy/clawdbert/internal/domain"
)

// UserRepo persists accounts and their web session tokens.
type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) CreateUser(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
		RETURNING created_at`,
		u.ID, u.Email, u.PasswordHash,
	).Scan(&u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) CreateSessionToken(ctx context.Context, t *domain.SessionToken) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO session_tokens (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt,
	); err != nil {
		return fmt.Errorf("create session token: %w", err)
	}
	return nil
}

// GetSessionTokenByHash resolves a bearer token digest to its row; the
// caller checks expiry.
func (r *UserRepo) GetSessionTokenByHash(ctx context.Context, tokenHash string) (*domain.SessionToken, error) {
	var t domain.SessionToken
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, token_hash, created_at, expires_at
		FROM session_tokens
		WHERE token_hash = $1`,
		tokenHash,
	).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get session token: %w", err)
	}
	return &t, nil
}

// DeleteExpiredSessionTokens is run periodically from main.
func (r *UserRepo) DeleteExpiredSessionTokens(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM session_tokens WHERE expires_at < now()`); err != nil {
		return fmt.Errorf("delete expired tokens: %w", err)
	}
	return nil
}
