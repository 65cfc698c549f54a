package offer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"lending-engine/internal/domain/authz"
	"lending-engine/internal/domain/customer"
	"lending-engine/internal/event"
	"lending-engine/internal/infrastructure/monitoring"
	"lending-engine/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Terms is the client-controlled part of an offer. MonthlyPayment is absent
// on purpose: it is always computed server-side.
type Terms struct {
	CustomerID   uuid.UUID
	LoanAmount   decimal.Decimal
	InterestRate decimal.Decimal
	LoanTerm     int
}

// UpdateInput carries a partial update; nil fields keep their stored value.
type UpdateInput struct {
	LoanAmount   *decimal.Decimal
	InterestRate *decimal.Decimal
	LoanTerm     *int
	Status       *Status
}

type OfferService interface {
	CreateOffer(ctx context.Context, actor authz.Actor, terms Terms) (*LoanOffer, error)

	GetOffer(ctx context.Context, actor authz.Actor, id uuid.UUID) (*LoanOffer, error)

	ListOffers(ctx context.Context, actor authz.Actor, filter ListFilter) ([]*LoanOffer, error)

	UpdateOffer(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateInput) (*LoanOffer, error)

	DeleteOffer(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

var _ OfferService = (*offerService)(nil)

type offerService struct {
	repo            Repository
	customerService customer.CustomerService
	pub             event.Publisher
	logger          *slog.Logger
}

func NewOfferService(repo Repository, cs customer.CustomerService, pub event.Publisher, logger *slog.Logger) OfferService {
	if repo == nil {
		panic("offer repository cannot be nil")
	}
	if cs == nil {
		panic("customer service cannot be nil")
	}
	if pub == nil {
		pub = event.NopPublisher{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewOfferService, using default stderr handler")
	}
	return &offerService{
		repo:            repo,
		customerService: cs,
		pub:             pub,
		logger:          logger.With(slog.String("component", "offerService")),
	}
}

func (s *offerService) CreateOffer(ctx context.Context, actor authz.Actor, terms Terms) (*LoanOffer, error) {
	s.logger.InfoContext(ctx, "Attempting to create loan offer", slog.String("customerID", terms.CustomerID.String()))

	decision := authz.AuthorizeCreate(actor)
	monitoring.RecordAuthzDecision("offer.create", decision)
	if !decision.Allowed {
		s.logger.WarnContext(ctx, "Offer creation denied", slog.String("reason", string(decision.Reason)))
		return nil, fmt.Errorf("%w: only installers can create loan offers", apperrors.ErrForbidden)
	}

	// Bounds and payment are evaluated against this one snapshot of the
	// three inputs; the row is inserted with the value computed here.
	payment, err := ValidateAndCompute(terms.LoanAmount, terms.InterestRate, terms.LoanTerm)
	if err != nil {
		s.logger.WarnContext(ctx, "Loan term validation failed", slog.Any("error", err))
		return nil, err
	}

	cust, err := s.customerService.GetCustomer(ctx, actor, terms.CustomerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found for offer")
			return nil, fmt.Errorf("%w: customer %s not found", apperrors.ErrValidation, terms.CustomerID)
		}
		s.logger.ErrorContext(ctx, "Failed to verify customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}

	now := time.Now()
	createdBy := actor.ID
	o := &LoanOffer{
		ID:         uuid.New(),
		CustomerID: cust.ID,
		Customer: CustomerSummary{
			ID:        cust.ID,
			FirstName: cust.FirstName,
			LastName:  cust.LastName,
			Email:     cust.Email,
			UserID:    cust.UserID,
		},
		LoanAmount:     terms.LoanAmount,
		InterestRate:   terms.InterestRate,
		LoanTerm:       terms.LoanTerm,
		MonthlyPayment: payment,
		Status:         StatusPending,
		CreatedBy:      &createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save loan offer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save loan offer: %w", err)
	}

	monitoring.RecordOfferCreated(string(o.Status))
	s.logger.InfoContext(ctx, "Loan offer created successfully",
		slog.String("offerID", o.ID.String()),
		slog.String("monthlyPayment", o.MonthlyPayment.StringFixed(2)))

	if pubErr := s.pub.PublishOfferCreated(ctx, event.NewOfferCreatedEvent(o.ID, o.CustomerID, o.MonthlyPayment.StringFixed(2), createdBy)); pubErr != nil {
		s.logger.ErrorContext(ctx, "Offer created, but failed to publish creation event", slog.Any("error", pubErr))
	}
	return o, nil
}

func (s *offerService) GetOffer(ctx context.Context, actor authz.Actor, id uuid.UUID) (*LoanOffer, error) {
	s.logger.InfoContext(ctx, "Attempting to get loan offer", slog.String("offerID", id.String()))

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan offer not found by repository")
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding loan offer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get loan offer %s: %w", id, err)
	}

	decision := authz.AuthorizeRead(actor, o)
	monitoring.RecordAuthzDecision("offer.read", decision)
	if !decision.Allowed {
		// Ownership denials surface as not-found so record existence does
		// not leak across customers.
		s.logger.WarnContext(ctx, "Offer read denied", slog.String("reason", string(decision.Reason)))
		return nil, apperrors.ErrNotFound
	}

	return o, nil
}

func (s *offerService) ListOffers(ctx context.Context, actor authz.Actor, filter ListFilter) ([]*LoanOffer, error) {
	s.logger.InfoContext(ctx, "Attempting to list loan offers")

	scope := authz.ScopeList(actor)
	if scope.Empty() {
		s.logger.InfoContext(ctx, "Actor has no linked customer profile, returning empty list")
		return []*LoanOffer{}, nil
	}

	offers, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing loan offers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list loan offers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully listed loan offers", slog.Int("count", len(offers)))
	return offers, nil
}

func (s *offerService) UpdateOffer(ctx context.Context, actor authz.Actor, id uuid.UUID, input UpdateInput) (*LoanOffer, error) {
	s.logger.InfoContext(ctx, "Attempting to update loan offer", slog.String("offerID", id.String()))

	decision := authz.AuthorizeWrite(actor)
	monitoring.RecordAuthzDecision("offer.write", decision)
	if !decision.Allowed {
		s.logger.WarnContext(ctx, "Offer update denied", slog.String("reason", string(decision.Reason)))
		return nil, fmt.Errorf("%w: only installers can update loan offers", apperrors.ErrForbidden)
	}

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan offer not found by repository for update")
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding loan offer for update", slog.Any("error", err))
		return nil, fmt.Errorf("cannot find loan offer %s to update: %w", id, err)
	}

	termsChanged := false
	if input.LoanAmount != nil {
		o.LoanAmount = *input.LoanAmount
		termsChanged = true
	}
	if input.InterestRate != nil {
		o.InterestRate = *input.InterestRate
		termsChanged = true
	}
	if input.LoanTerm != nil {
		o.LoanTerm = *input.LoanTerm
		termsChanged = true
	}
	if input.Status != nil {
		o.Status = *input.Status
	}

	if termsChanged {
		// Any change to the three inputs invalidates the stored payment;
		// revalidate and recompute before anything is persisted.
		payment, calcErr := ValidateAndCompute(o.LoanAmount, o.InterestRate, o.LoanTerm)
		if calcErr != nil {
			s.logger.WarnContext(ctx, "Loan term validation failed on update", slog.Any("error", calcErr))
			return nil, calcErr
		}
		o.MonthlyPayment = payment
		monitoring.RecordPaymentRecomputation("update")
	}
	o.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, o); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save updated loan offer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update loan offer %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Loan offer updated successfully",
		slog.String("monthlyPayment", o.MonthlyPayment.StringFixed(2)))

	if pubErr := s.pub.PublishOfferUpdated(ctx, event.NewOfferUpdatedEvent(o.ID, o.CustomerID, string(o.Status), o.MonthlyPayment.StringFixed(2))); pubErr != nil {
		s.logger.ErrorContext(ctx, "Offer updated, but failed to publish update event", slog.Any("error", pubErr))
	}
	return o, nil
}

func (s *offerService) DeleteOffer(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	s.logger.InfoContext(ctx, "Attempting to delete loan offer", slog.String("offerID", id.String()))

	decision := authz.AuthorizeWrite(actor)
	monitoring.RecordAuthzDecision("offer.write", decision)
	if !decision.Allowed {
		s.logger.WarnContext(ctx, "Offer delete denied", slog.String("reason", string(decision.Reason)))
		return fmt.Errorf("%w: only installers can delete loan offers", apperrors.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan offer not found by repository for delete")
			return apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository failed to delete loan offer", slog.Any("error", err))
		return fmt.Errorf("failed to delete loan offer %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Successfully deleted loan offer")
	return nil
}
