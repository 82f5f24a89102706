package domain

import "errors"

var (
	ErrEmptyMessage         = errors.New("empty message")
	ErrSendInProgress       = errors.New("send already in progress")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTokenExpired         = errors.New("session token expired")
	ErrKeyNotFound          = errors.New("api key not found")
	ErrInvalidAPIKey        = errors.New("invalid api key")

	// Inference gateway taxonomy, mirrored to distinguishable client errors.
	ErrRateLimited     = errors.New("rate limits exceeded, please try again later")
	ErrPaymentRequired = errors.New("payment required, please add funds")
	ErrGateway         = errors.New("ai gateway error")
)
