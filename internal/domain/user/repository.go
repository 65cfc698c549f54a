package user

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, u *User) error

	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByLogin matches username or email.
	FindByLogin(ctx context.Context, login string) (*User, error)

	Update(ctx context.Context, u *User) error
}
