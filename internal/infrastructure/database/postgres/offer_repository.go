package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"lending-engine/internal/domain/authz"
	"lending-engine/internal/domain/offer"
	"lending-engine/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Offers are always loaded with their customer summary so the ownership
// chain can be resolved without a second query.
const offerSelect = `
        SELECT o.id, o.customer_id, o.loan_amount, o.interest_rate, o.loan_term,
               o.monthly_payment, o.status, o.created_by, o.created_at, o.updated_at,
               c.first_name, c.last_name, c.email, c.user_id
        FROM loan_offers o
        JOIN customers c ON c.id = o.customer_id`

type OfferRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ offer.Repository = (*OfferRepository)(nil)

func NewOfferRepository(db DBPool, logger *slog.Logger) *OfferRepository {
	if db == nil {
		panic("DBPool cannot be nil for OfferRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewOfferRepository, using default stderr handler")
	}
	return &OfferRepository{db: db, logger: logger.With("component", "OfferRepository")}
}

func scanOffer(row pgx.Row) (*offer.LoanOffer, error) {
	var o offer.LoanOffer
	err := row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.LoanAmount,
		&o.InterestRate,
		&o.LoanTerm,
		&o.MonthlyPayment,
		&o.Status,
		&o.CreatedBy,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.Customer.FirstName,
		&o.Customer.LastName,
		&o.Customer.Email,
		&o.Customer.UserID,
	)
	if err != nil {
		return nil, err
	}
	o.Customer.ID = o.CustomerID
	return &o, nil
}

func (r *OfferRepository) Create(ctx context.Context, o *offer.LoanOffer) error {
	if o == nil {
		return fmt.Errorf("%w: offer cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.logger.InfoContext(ctx, "Attempting to insert new loan offer", slog.String("customerID", o.CustomerID.String()))

	// The three loan inputs and the derived payment land in one INSERT so
	// a partially applied snapshot can never be observed.
	query := `
        INSERT INTO loan_offers (id, customer_id, loan_amount, interest_rate,
            loan_term, monthly_payment, status, created_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		o.ID,
		o.CustomerID,
		o.LoanAmount,
		o.InterestRate,
		o.LoanTerm,
		o.MonthlyPayment,
		o.Status,
		o.CreatedBy,
	).Scan(
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan offer", slog.Any("error", err))
		return translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Loan offer inserted successfully", slog.String("offerID", o.ID.String()))
	return nil
}

func (r *OfferRepository) FindByID(ctx context.Context, id uuid.UUID) (*offer.LoanOffer, error) {
	r.logger.InfoContext(ctx, "Attempting to find loan offer by ID")

	query := offerSelect + ` WHERE o.id = $1`

	o, err := scanOffer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan offer not found")
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan loan offer by ID", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get loan offer by ID: %w", apperrors.ErrDatabase, err)
	}

	return o, nil
}

func (r *OfferRepository) List(ctx context.Context, scope authz.Scope, filter offer.ListFilter) ([]*offer.LoanOffer, error) {
	r.logger.InfoContext(ctx, "Attempting to list loan offers", slog.Bool("scopeAll", scope.All))

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	conditions := []string{}
	args := []any{}
	if !scope.All {
		// LoanOffer visibility resolves through its customer: the scope
		// names the one customer whose offers are visible.
		args = append(args, scope.CustomerID)
		conditions = append(conditions, fmt.Sprintf("o.customer_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if filter.CustomerID != uuid.Nil {
		args = append(args, filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("o.customer_id = $%d", len(args)))
	}

	query := offerSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loan offers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query loan offers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	offers := make([]*offer.LoanOffer, 0)
	for rows.Next() {
		o, scanErr := scanOffer(rows)
		if scanErr != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan offer row", slog.Any("error", scanErr))
			return nil, fmt.Errorf("%w: failed scanning loan offer row: %w", apperrors.ErrDatabase, scanErr)
		}
		offers = append(offers, o)
	}
	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan offer rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating loan offer rows: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Loan offers listed successfully", slog.Int("count", len(offers)))
	return offers, nil
}

func (r *OfferRepository) Update(ctx context.Context, o *offer.LoanOffer) error {
	if o == nil {
		return fmt.Errorf("%w: offer cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.logger.InfoContext(ctx, "Attempting to update loan offer", slog.String("offerID", o.ID.String()))

	// Inputs and the recomputed payment are written together; a stale
	// payment can never be committed alongside new inputs.
	query := `
        UPDATE loan_offers
        SET loan_amount = $2, interest_rate = $3, loan_term = $4,
            monthly_payment = $5, status = $6, updated_at = NOW()
        WHERE id = $1`

	cmdTag, err := r.db.Exec(ctx, query,
		o.ID,
		o.LoanAmount,
		o.InterestRate,
		o.LoanTerm,
		o.MonthlyPayment,
		o.Status,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan offer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update loan offer: %w", apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Update affected zero rows, loan offer likely not found")
		return apperrors.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Loan offer updated successfully")
	return nil
}

func (r *OfferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.logger.InfoContext(ctx, "Attempting to delete loan offer", slog.String("offerID", id.String()))

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM loan_offers WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete loan offer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete loan offer: %w", apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Delete affected zero rows, loan offer likely not found")
		return apperrors.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Loan offer deleted successfully")
	return nil
}

func (r *OfferRepository) ListPage(ctx context.Context, limit, offset int) ([]*offer.LoanOffer, error) {
	r.logger.DebugContext(ctx, "Listing loan offer page for sweep", slog.Int("limit", limit), slog.Int("offset", offset))

	query := offerSelect + ` ORDER BY o.id LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loan offer page", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query loan offer page: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	offers := make([]*offer.LoanOffer, 0, limit)
	for rows.Next() {
		o, scanErr := scanOffer(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: failed scanning loan offer row: %w", apperrors.ErrDatabase, scanErr)
		}
		offers = append(offers, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating loan offer rows: %w", apperrors.ErrDatabase, err)
	}

	return offers, nil
}

func (r *OfferRepository) UpdateMonthlyPayment(ctx context.Context, id uuid.UUID, payment decimal.Decimal) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE loan_offers SET monthly_payment = $2, updated_at = NOW() WHERE id = $1`,
		id, payment,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update monthly payment", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update monthly payment: %w", apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
