package offer

import (
	"context"

	"lending-engine/internal/domain/authz"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilter narrows a scoped offer listing. Zero values mean "no filter".
type ListFilter struct {
	Status     Status
	CustomerID uuid.UUID
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, o *LoanOffer) error

	FindByID(ctx context.Context, id uuid.UUID) (*LoanOffer, error)

	// List returns offers visible under scope, newest first.
	List(ctx context.Context, scope authz.Scope, filter ListFilter) ([]*LoanOffer, error)

	// Update persists the three loan inputs, the status and the recomputed
	// monthly payment as one atomic write.
	Update(ctx context.Context, o *LoanOffer) error

	Delete(ctx context.Context, id uuid.UUID) error

	// ListPage walks all offers regardless of scope; used by the nightly
	// integrity sweep.
	ListPage(ctx context.Context, limit, offset int) ([]*LoanOffer, error)

	UpdateMonthlyPayment(ctx context.Context, id uuid.UUID, payment decimal.Decimal) error
}
