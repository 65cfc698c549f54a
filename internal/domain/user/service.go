package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"lending-engine/internal/domain/authz"
	"lending-engine/internal/infrastructure/monitoring"
	"lending-engine/internal/pkg/apperrors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type ProfileUpdate struct {
	Email *string
}

type UserService interface {
	// RegisterCustomer creates a CUSTOMER-role account. Self-service; the
	// customer profile is linked later by an installer.
	RegisterCustomer(ctx context.Context, input RegisterInput) (*User, error)

	// CreateInstaller creates an INSTALLER-role account. Installer-only:
	// the flat-trust model has no hierarchy above installers.
	CreateInstaller(ctx context.Context, actor authz.Actor, input RegisterInput) (*User, error)

	// Authenticate verifies login (username or email) and password.
	Authenticate(ctx context.Context, login, password string) (*User, error)

	GetUser(ctx context.Context, id uuid.UUID) (*User, error)

	UpdateProfile(ctx context.Context, actor authz.Actor, update ProfileUpdate) (*User, error)

	// LinkCustomerProfile attaches a customer record to a customer-role
	// account so ownership-based reads resolve.
	LinkCustomerProfile(ctx context.Context, userID, customerID uuid.UUID) error
}

var _ UserService = (*userService)(nil)

type userService struct {
	repo   Repository
	logger *slog.Logger
}

func NewUserService(repo Repository, logger *slog.Logger) UserService {
	if repo == nil {
		panic("user repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewUserService, using default stderr handler")
	}
	return &userService{
		repo:   repo,
		logger: logger.With(slog.String("component", "userService")),
	}
}

func (in *RegisterInput) normalize() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	var violations apperrors.FieldViolations
	if in.Username == "" {
		violations.Add("username", "username cannot be empty")
	}
	if in.Email == "" {
		violations.Add("email", "email cannot be empty")
	}
	if len(in.Password) < 8 {
		violations.Add("password", "password must be at least 8 characters")
	}
	return violations.AsError()
}

func (s *userService) createUser(ctx context.Context, input RegisterInput, role authz.Role) (*User, error) {
	if err := input.normalize(); err != nil {
		s.logger.WarnContext(ctx, "User input validation failed", slog.Any("error", err))
		return nil, err
	}

	if existing, err := s.repo.FindByLogin(ctx, input.Username); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: username already taken", apperrors.ErrAlreadyExists)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.ErrorContext(ctx, "Repository error checking username", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing, err := s.repo.FindByLogin(ctx, input.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrAlreadyExists)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.ErrorContext(ctx, "Repository error checking email", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to hash password: %v", apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	u := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new user: %w", err)
	}

	s.logger.InfoContext(ctx, "User created", slog.String("userID", u.ID.String()), slog.String("role", string(u.Role)))
	return u, nil
}

func (s *userService) RegisterCustomer(ctx context.Context, input RegisterInput) (*User, error) {
	s.logger.InfoContext(ctx, "Registering customer user")
	return s.createUser(ctx, input, authz.RoleCustomer)
}

func (s *userService) CreateInstaller(ctx context.Context, actor authz.Actor, input RegisterInput) (*User, error) {
	s.logger.InfoContext(ctx, "Attempting to create installer user", slog.String("actorID", actor.ID.String()))

	decision := authz.AuthorizeCreate(actor)
	monitoring.RecordAuthzDecision("user.create_installer", decision)
	if !decision.Allowed {
		s.logger.WarnContext(ctx, "Installer creation denied", slog.String("reason", string(decision.Reason)))
		return nil, fmt.Errorf("%w: only installers can create installer accounts", apperrors.ErrForbidden)
	}

	return s.createUser(ctx, input, authz.RoleInstaller)
}

func (s *userService) Authenticate(ctx context.Context, login, password string) (*User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	u, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Same error as a bad password: login probing learns nothing.
			return nil, apperrors.ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "Repository error finding user for login", slog.Any("error", err))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.logger.WarnContext(ctx, "Password mismatch", slog.String("userID", u.ID.String()))
		return nil, apperrors.ErrInvalidCredentials
	}

	return u, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding user", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor authz.Actor, update ProfileUpdate) (*User, error) {
	s.logger.InfoContext(ctx, "Attempting to update user profile", slog.String("userID", actor.ID.String()))

	u, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", actor.ID, err)
	}

	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if email == "" {
			return nil, apperrors.NewValidationError("email", "email cannot be empty")
		}
		u.Email = email
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save user profile", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update user %s: %w", actor.ID, err)
	}

	s.logger.InfoContext(ctx, "User profile updated")
	return u, nil
}

func (s *userService) LinkCustomerProfile(ctx context.Context, userID, customerID uuid.UUID) error {
	s.logger.InfoContext(ctx, "Linking customer profile to user",
		slog.String("userID", userID.String()), slog.String("customerID", customerID.String()))

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	if u.Role != authz.RoleCustomer {
		return fmt.Errorf("%w: only customer-role users can be linked to a customer profile", apperrors.ErrValidation)
	}

	u.CustomerID = &customerID
	u.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to link customer profile", slog.Any("error", err))
		return fmt.Errorf("failed to link customer profile: %w", err)
	}
	return nil
}
