package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/chatbilling/pkg/account"
)

const userColumns = `id, email, password_hash, created_at, updated_at`

// UserStore implements account.Store on the users table.
type UserStore struct {
	db DB
}

// NewUserStore creates a user store. Panics if db is nil.
func NewUserStore(db DB) *UserStore {
	if db == nil {
		panic("pg: DB is required")
	}
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u *account.User) (*account.User, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	created, err := scanUser(row)
	if IsDuplicateKeyError(err) {
		return nil, account.ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	return s.get(ctx, `email = $1`, email)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*account.User, error) {
	return s.get(ctx, `id = $1`, id)
}

func (s *UserStore) get(ctx context.Context, where string, arg string) (*account.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if IsNotFoundError(err) {
		return nil, account.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*account.User, error) {
	var u account.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

var _ account.Store = (*UserStore)(nil)
