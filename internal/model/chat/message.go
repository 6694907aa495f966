package chat

import "time"

// Author identifies who produced a transcript entry.
type Author string

const (
	AuthorUser Author = "user"
	AuthorBot  Author = "bot"
)

// Message is a single rendered transcript entry.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId,omitempty"`
	Author    Author    `json:"author"`
	Text      string    `json:"text"`
	HTML      string    `json:"html,omitempty"`
	Timestamp string    `json:"timestamp"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsUser reports whether the message was typed by the user.
func (m Message) IsUser() bool {
	return m.Author == AuthorUser
}
