package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/chatbilling/pkg/entitlement"
	"github.com/dmitrymomot/chatbilling/pkg/logger"
)

// Entitlements gates and meters usage. *entitlement.Resolver satisfies it.
type Entitlements interface {
	Authorize(ctx context.Context, userID string) error
	Record(ctx context.Context, userID string) (entitlement.Target, error)
}

// AnswerGenerator produces the answer for a question. *answer.Generator satisfies it.
type AnswerGenerator interface {
	Generate(ctx context.Context, question string) (string, int, error)
}

// Service orchestrates a chat turn.
type Service struct {
	entitlements Entitlements
	answers      AnswerGenerator
	store        MessageStore
	now          func() time.Time
	newID        func() string
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides message ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a chat service. Panics if any dependency is nil.
func NewService(ent Entitlements, answers AnswerGenerator, store MessageStore, opts ...Option) *Service {
	if ent == nil {
		panic("chat: Entitlements is required")
	}
	if answers == nil {
		panic("chat: AnswerGenerator is required")
	}
	if store == nil {
		panic("chat: MessageStore is required")
	}
	s := &Service{
		entitlements: ent,
		answers:      answers,
		store:        store,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send answers question for userID and charges one unit of usage.
// Denials surface as entitlement.ErrQuotaExceeded or
// entitlement.ErrSubscriptionRequired before any answer is generated.
func (s *Service) Send(ctx context.Context, userID, question string) (*Message, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	if err := s.entitlements.Authorize(ctx, userID); err != nil {
		return nil, err
	}

	text, tokens, err := s.answers.Generate(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	msg, err := s.store.Create(ctx, &Message{
		ID:        s.newID(),
		UserID:    userID,
		Question:  question,
		Answer:    text,
		Tokens:    tokens,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	target, err := s.entitlements.Record(ctx, userID)
	if err != nil {
		// The message is kept; the answer was already produced.
		s.logger.WarnContext(ctx, "chat message stored without recorded usage",
			logger.UserID(userID),
			logger.MessageID(msg.ID),
			logger.Error(err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "chat message answered",
		logger.UserID(userID),
		logger.MessageID(msg.ID),
		slog.String("charged_to", string(target.Kind)),
		slog.Int("tokens", tokens),
	)
	return msg, nil
}

// History returns the user's messages, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]*Message, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.store.ListByUser(ctx, userID)
}

// Count returns how many messages the user has sent.
func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrMissingUserID
	}
	return s.store.CountByUser(ctx, userID)
}
