package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/snooooofy/clawdbert/internal/config"
	"github.com/snooooofy/clawdbert/internal/domain"
	"github.com/snooooofy/clawdbert/internal/repository"
)

// AuthService implements email/password accounts and the opaque bearer
// session tokens the web UI sends on every request.
type AuthService struct {
	repo *repository.UserRepo
}

func NewAuthService(repo *repository.UserRepo) *AuthService {
	return &AuthService{repo: repo}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidCredentials
	}
	if len(password) < 8 {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the password and issues a session token. The raw token
// is returned once; only its digest is stored.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	raw := hex.EncodeToString(secret)

	token := &domain.SessionToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: HashKey(raw),
		ExpiresAt: time.Now().Add(config.SessionTokenTTL),
	}
	if err := s.repo.CreateSessionToken(ctx, token); err != nil {
		return "", nil, err
	}
	return raw, user, nil
}

// VerifyToken resolves a bearer session token to a user ID.
func (s *AuthService) VerifyToken(ctx context.Context, raw string) (string, error) {
	token, err := s.repo.GetSessionTokenByHash(ctx, HashKey(raw))
	if err != nil {
		return "", err
	}
	if time.Now().After(token.ExpiresAt) {
		return "", domain.ErrTokenExpired
	}
	return token.UserID, nil
}
