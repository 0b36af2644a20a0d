package model

import (
	"strings"
	"time"
)

// User is a registered account. Usernames are stored normalized
// (trimmed, lowercase) and are unique. The struct is a storage document,
// never an API response body, so the password hash round-trips through
// JSON-backed storage.
type User struct {
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Normalize canonicalizes a username for storage and comparison
func Normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// MessageID uniquely identifies a message
type MessageID string

// Message is a flat user-to-user message; the badge aggregator only ever
// counts the unread ones.
type Message struct {
	ID     MessageID `json:"id"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Body   string    `json:"body"`
	Read   bool      `json:"read"`
	SentAt time.Time `json:"sentAt"`
}

// BadgeCounts are the three counters summarizing unseen activity for a user
type BadgeCounts struct {
	UnreadMessages        int `json:"unreadMessages"`
	OpenGames             int `json:"openGames"`
	PendingFriendRequests int `json:"pendingFriendRequests"`
}
