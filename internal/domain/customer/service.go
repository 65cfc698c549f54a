package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"lending-engine/internal/domain/authz"
	"lending-engine/internal/event"
	"lending-engine/internal/infrastructure/monitoring"
	"lending-engine/internal/pkg/apperrors"

	"github.com/google/uuid"
)

type CustomerInput struct {
	FirstName    string
	LastName     string
	Email        string
	PhoneNumber  string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
	UserID       *uuid.UUID
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, actor authz.Actor, input CustomerInput) (*Customer, error)

	GetCustomer(ctx context.Context, actor authz.Actor, id uuid.UUID) (*Customer, error)

	ListCustomers(ctx context.Context, actor authz.Actor, limit, offset int) ([]*Customer, error)

	UpdateCustomer(ctx context.Context, actor authz.Actor, id uuid.UUID, input CustomerInput) (*Customer, error)

	DeleteCustomer(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   Repository
	pub    event.Publisher
	logger *slog.Logger
}

func NewCustomerService(repo Repository, pub event.Publisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if pub == nil {
		pub = event.NopPublisher{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}
	return &customerService{
		repo:   repo,
		pub:    pub,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (in *CustomerInput) normalize() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.AddressLine1 = strings.TrimSpace(in.AddressLine1)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	if in.Country == "" {
		in.Country = "US"
	}

	var violations apperrors.FieldViolations
	if in.FirstName == "" {
		violations.Add("firstName", "first name cannot be empty")
	}
	if in.LastName == "" {
		violations.Add("lastName", "last name cannot be empty")
	}
	if in.Email == "" {
		violations.Add("email", "email cannot be empty")
	}
	if in.AddressLine1 == "" {
		violations.Add("addressLine1", "address cannot be empty")
	}
	if in.PostalCode == "" {
		violations.Add("postalCode", "postal code cannot be empty")
	}
	return violations.AsError()
}

func (s *customerService) CreateCustomer(ctx context.Context, actor authz.Actor, input CustomerInput) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer", slog.String("actorID", actor.ID.String()))

	decision := authz.AuthorizeCreate(actor)
	monitoring.RecordAuthzDecision("customer.create", decision)
	if !decision.Allowed {
		s.logger.WarnContext(ctx, "Customer creation denied", slog.String("reason", string(decision.Reason)))
		return nil, fmt.Errorf("%w: only installers can create customers", apperrors.ErrForbidden)
	}

	if err := input.normalize(); err != nil {
		s.logger.WarnContext(ctx, "Customer input validation failed", slog.Any("error", err))
		return nil, err
	}

	if existing, err := s.repo.FindByEmail(ctx, input.Email); err == nil && existing != nil {
		s.logger.WarnContext(ctx, "Customer email already in use", slog.String("email", input.Email))
		return nil, fmt.Errorf("%w: a customer with this email already exists", apperrors.ErrAlreadyExists)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.ErrorContext(ctx, "Repository error checking email uniqueness", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	now := time.Now()
	createdBy := actor.ID
	cust := &Customer{
		ID:           uuid.New(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PhoneNumber:  input.PhoneNumber,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		PostalCode:   input.PostalCode,
		Country:      input.Country,
		UserID:       input.UserID,
		CreatedBy:    &createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully created new customer", slog.String("customerID", cust.ID.String()))
	if pubErr := s.pub.PublishCustomerCreated(ctx, event.NewCustomerCreatedEvent(cust.ID, cust.Email, createdBy)); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer created, but failed to publish creation event", slog.Any("error", pubErr))
	}
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, actor authz.Actor, id uuid.UUID) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by ID", slog.String("customerID", id.String()))

	cust, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository")
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %s: %w", id, err)
	}

	decision := authz.AuthorizeRead(actor, cust)
	monitoring.RecordAuthzDecision("customer.read", decision)
	if !decision.Allowed {
		// A not_owner denial is indistinguishable from a missing record so
		// that probing IDs leaks nothing about other customers.
		s.logger.WarnContext(ctx, "Customer read denied", slog.String("reason", string(decision.Reason)))
		return nil, apperrors.ErrNotFound
	}

	return cust, nil
}

func (s *customerService) ListCustomers(ctx context.Context, actor authz.Actor, limit, offset int) ([]*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to list customers")

	scope := authz.ScopeList(actor)
	if scope.Empty() {
		s.logger.InfoContext(ctx, "Actor has no linked customer profile, returning empty list")
		return []*Customer{}, nil
	}

	customers, err := s.repo.List(ctx, scope, limit, offset)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully listed customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, actor authz.Actor, id uuid.UUID, input CustomerInput) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to update customer", slog.String("customerID", id.String()))

	decision := authz.AuthorizeWrite(actor)
	monitoring.RecordAuthzDecision("customer.write", decision)
	if !decision.Allowed {
		s.logger.WarnContext(ctx, "Customer update denied", slog.String("reason", string(decision.Reason)))
		return nil, fmt.Errorf("%w: only installers can update customers", apperrors.ErrForbidden)
	}

	if err := input.normalize(); err != nil {
		s.logger.WarnContext(ctx, "Customer input validation failed", slog.Any("error", err))
		return nil, err
	}

	cust, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository for update")
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer for update", slog.Any("error", err))
		return nil, fmt.Errorf("cannot find customer %s to update: %w", id, err)
	}

	if input.Email != cust.Email {
		if existing, findErr := s.repo.FindByEmail(ctx, input.Email); findErr == nil && existing != nil {
			s.logger.WarnContext(ctx, "Customer email already in use", slog.String("email", input.Email))
			return nil, fmt.Errorf("%w: a customer with this email already exists", apperrors.ErrAlreadyExists)
		} else if findErr != nil && !errors.Is(findErr, apperrors.ErrNotFound) {
			s.logger.ErrorContext(ctx, "Repository error checking email uniqueness", slog.Any("error", findErr))
			return nil, fmt.Errorf("failed to check email uniqueness: %w", findErr)
		}
	}

	cust.FirstName = input.FirstName
	cust.LastName = input.LastName
	cust.Email = input.Email
	cust.PhoneNumber = input.PhoneNumber
	cust.AddressLine1 = input.AddressLine1
	cust.AddressLine2 = input.AddressLine2
	cust.City = input.City
	cust.State = input.State
	cust.PostalCode = input.PostalCode
	cust.Country = input.Country
	if input.UserID != nil {
		cust.UserID = input.UserID
	}
	cust.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save updated customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update customer %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Successfully updated customer")
	return cust, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	s.logger.InfoContext(ctx, "Attempting to delete customer", slog.String("customerID", id.String()))

	decision := authz.AuthorizeWrite(actor)
	monitoring.RecordAuthzDecision("customer.write", decision)
	if !decision.Allowed {
		s.logger.WarnContext(ctx, "Customer delete denied", slog.String("reason", string(decision.Reason)))
		return fmt.Errorf("%w: only installers can delete customers", apperrors.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository for delete")
			return apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository failed to delete customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Successfully deleted customer")
	return nil
}
