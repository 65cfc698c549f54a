package customer

import (
	"context"

	"lending-engine/internal/domain/authz"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, cust *Customer) error

	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// List returns customers visible under scope, newest first.
	List(ctx context.Context, scope authz.Scope, limit, offset int) ([]*Customer, error)

	Update(ctx context.Context, cust *Customer) error

	Delete(ctx context.Context, id uuid.UUID) error
}
