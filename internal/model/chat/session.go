package chat

import "time"

// Session captures a transient anonymous widget conversation.
type Session struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"createdAt"`
}
