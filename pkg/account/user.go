package account

import (
	"context"
	"time"
)

// User is a registered account. PasswordHash never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store persists users. Emails are stored normalized and are unique.
type Store interface {
	// Create returns ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, u *User) (*User, error)
	// GetByEmail and GetByID return ErrUserNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
