package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Content grows while the turn is
// streaming and is immutable once Finalized is set.
type Turn struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Finalized bool   `json:"finalized"`
}

// Transcript is the ordered list of turns for one conversation. Insertion
// order is conversation order. At most one turn is non-finalized, and if
// present it is the last element and has RoleAssistant.
type Transcript []Turn

// Clone returns an independent copy, safe to hand to subscribers.
func (t Transcript) Clone() Transcript {
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// Last returns a pointer to the final turn, or nil for an empty transcript.
func (t Transcript) Last() *Turn {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// DeriveTitle builds a conversation title from the first user message:
// leading text truncated to max runes. The caller sets it exactly once.
func DeriveTitle(firstUserText string, max int) string {
	s := strings.TrimSpace(firstUserText)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// NewConversationID mints a conversation identifier.
func NewConversationID() string {
	return uuid.NewString()
}
