package domain

import "time"

// Conversation is a titled, timestamped thread of messages owned by one
// user. MessageCount tracks recorded exchanges: one user message plus one
// assistant reply per exchange.
type Conversation struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// Message is a single persisted conversation turn. Messages are immutable
// once written; they are only removed when their conversation is deleted.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
