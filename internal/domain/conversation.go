package domain

import "time"

// Conversation is the persisted header of one chat. Turns are stored
// separately and loaded on demand.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoredTurn is a finalized turn as persisted in the transcript store.
// Only finalized content is ever written, so there is no Finalized flag.
type StoredTurn struct {
	ID             int64
	ConversationID string
	Role           Role
	Content        string
	CreatedAt      time.Time
}
