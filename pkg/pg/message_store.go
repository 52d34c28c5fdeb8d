package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/chatbilling/pkg/chat"
)

const messageColumns = `id, user_id, question, answer, tokens, created_at`

// MessageStore implements chat.MessageStore on the chat_messages table.
type MessageStore struct {
	db DB
}

// NewMessageStore creates a message store. Panics if db is nil.
func NewMessageStore(db DB) *MessageStore {
	if db == nil {
		panic("pg: DB is required")
	}
	return &MessageStore{db: db}
}

func (s *MessageStore) Create(ctx context.Context, m *chat.Message) (*chat.Message, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO chat_messages (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+messageColumns,
		m.ID, m.UserID, m.Question, m.Answer, m.Tokens, m.CreatedAt,
	)
	created, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("failed to store chat message: %w", err)
	}
	return created, nil
}

func (s *MessageStore) ListByUser(ctx context.Context, userID string) ([]*chat.Message, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+messageColumns+` FROM chat_messages
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	out := make([]*chat.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return out, nil
}

func (s *MessageStore) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM chat_messages WHERE user_id = $1`,
		userID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chat messages: %w", err)
	}
	return n, nil
}

func scanMessage(row pgx.Row) (*chat.Message, error) {
	var m chat.Message
	if err := row.Scan(&m.ID, &m.UserID, &m.Question, &m.Answer, &m.Tokens, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}

var _ chat.MessageStore = (*MessageStore)(nil)
