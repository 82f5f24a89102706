package domain

import "time"

// User is an authenticated account. The password is stored as a bcrypt
// hash and never leaves the repository layer.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// SessionToken is an opaque bearer credential for the web UI. Stored as a
// SHA-256 digest; the raw token is returned once at login.
type SessionToken struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// APIKey is a credential for the tool endpoint. The raw secret is shown
// exactly once at creation time; only its SHA-256 digest is stored.
type APIKey struct {
	ID         string
	UserID     string
	Name       string
	KeyHash    string
	CreatedAt  time.Time
	LastUsedAt *time.Time
}
