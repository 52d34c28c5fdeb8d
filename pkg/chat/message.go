package chat

import (
	"context"
	"time"
)

// Message is one question and its generated answer.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Tokens    int       `json:"tokens"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageStore persists chat messages.
type MessageStore interface {
	Create(ctx context.Context, m *Message) (*Message, error)

	// ListByUser returns the user's messages, newest first.
	ListByUser(ctx context.Context, userID string) ([]*Message, error)

	CountByUser(ctx context.Context, userID string) (int, error)
}
