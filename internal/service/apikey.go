package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/snooooofy/clawdbert/internal/config"
	"github.com/snooooofy/clawdbert/internal/domain"
	"github.com/snooooofy/clawdbert/internal/repository"
)

// APIKeyService manages tool-endpoint credentials. Secrets are stored
// only as SHA-256 hex digests; the raw key is returned exactly once, at
// creation time.
type APIKeyService struct {
	repo *repository.APIKeyRepo
}

func NewAPIKeyService(repo *repository.APIKeyRepo) *APIKeyService {
	return &APIKeyService{repo: repo}
}

// HashKey computes the stored digest of a raw credential.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Create mints a new credential and returns the raw secret alongside its
// stored metadata. The secret is not retrievable afterwards.
func (s *APIKeyService) Create(ctx context.Context, userID, name string) (string, *domain.APIKey, error) {
	if name == "" {
		name = "Default"
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", nil, fmt.Errorf("generate key: %w", err)
	}
	raw := config.APIKeyPrefix + hex.EncodeToString(secret)

	key := &domain.APIKey{
		ID:      uuid.NewString(),
		UserID:  userID,
		Name:    name,
		KeyHash: HashKey(raw),
	}
	if err := s.repo.CreateAPIKey(ctx, key); err != nil {
		return "", nil, err
	}
	return raw, key, nil
}

func (s *APIKeyService) List(ctx context.Context, userID string) ([]domain.APIKey, error) {
	return s.repo.ListAPIKeys(ctx, userID)
}

func (s *APIKeyService) Delete(ctx context.Context, id, userID string) error {
	return s.repo.DeleteAPIKey(ctx, id, userID)
}

// Authenticate resolves a presented bearer credential to its owning user.
// A match records last-used time asynchronously so the caller's response
// is never blocked on the bookkeeping write.
func (s *APIKeyService) Authenticate(ctx context.Context, presented string) (string, error) {
	key, err := s.repo.GetAPIKeyByHash(ctx, HashKey(presented))
	if err != nil {
		return "", err
	}

	go func() {
		touchCtx := context.WithoutCancel(ctx)
		if err := s.repo.TouchAPIKey(touchCtx, key.ID); err != nil {
			slog.Error("touch api key", "key_id", key.ID, "error", err)
		}
	}()

	return key.UserID, nil
}
