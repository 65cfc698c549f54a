package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"lending-engine/internal/api/handler/dto"
	"lending-engine/internal/api/middleware"
	"lending-engine/internal/config"
	"lending-engine/internal/domain/user"
	"lending-engine/internal/pkg/apperrors"

	"github.com/golang-jwt/jwt/v5"
)

type AuthHandler struct {
	cfg     config.AuthConfig
	service user.UserService
	logger  *slog.Logger
}

func NewAuthHandler(cfg config.AuthConfig, s user.UserService, l *slog.Logger) *AuthHandler {
	if s == nil {
		panic("user service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &AuthHandler{
		cfg:     cfg,
		service: s,
		logger:  l.With("component", "AuthHandler"),
	}
}

func (h *AuthHandler) signToken(u *user.User, use string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := middleware.ActorClaims{
		Role:     string(u.Role),
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if u.CustomerID != nil {
		claims.CustomerID = u.CustomerID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// issueTokenPair signs an access and a refresh token off the current user
// record so a role or profile-link change takes effect at next refresh.
func (h *AuthHandler) issueTokenPair(u *user.User) (dto.TokenPairResponse, error) {
	accessToken, err := h.signToken(u, middleware.TokenUseAccess, h.cfg.AccessTokenTTL)
	if err != nil {
		return dto.TokenPairResponse{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	refreshToken, err := h.signToken(u, middleware.TokenUseRefresh, h.cfg.RefreshTokenTTL)
	if err != nil {
		return dto.TokenPairResponse{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return dto.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// Register handles POST /auth/register
// @Summary Register a customer account
// @Description Creates a self-service CUSTOMER-role account. An installer links the customer profile afterwards.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration payload"
// @Success 201 {object} dto.UserResponse "Account created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 403 {object} dto.ErrorResponse "Self-registration disabled"
// @Failure 409 {object} dto.ErrorResponse "Username or email already taken"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received register request")

	if !h.cfg.AllowRegistration {
		respondError(w, fmt.Errorf("%w: self-registration is disabled", apperrors.ErrForbidden))
		return
	}

	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Registration validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	u, err := h.service.RegisterCustomer(r.Context(), user.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "Service failed to register customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer account registered", slog.String("userID", u.ID.String()))
	respondJSON(w, http.StatusCreated, dto.NewUserResponse(u))
}

// Login handles POST /auth/login
// @Summary Authenticate and receive a token pair
// @Description Verifies username-or-email plus password and returns access and refresh tokens.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login payload"
// @Success 200 {object} dto.TokenPairResponse "Token pair issued"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received login request")

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	u, err := h.service.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Authentication failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	pair, err := h.issueTokenPair(u)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to issue token pair", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "User logged in", slog.String("userID", u.ID.String()))
	respondJSON(w, http.StatusOK, pair)
}

// Refresh handles POST /auth/refresh
// @Summary Exchange a refresh token for a new token pair
// @Description Verifies the refresh token and issues a fresh pair reflecting the current user record.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest true "Refresh payload"
// @Success 200 {object} dto.TokenPairResponse "Token pair issued"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired refresh token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received token refresh request")

	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	claims, err := middleware.ParseClaims(req.RefreshToken, h.cfg.JWTSecret)
	if err != nil || claims.TokenUse != middleware.TokenUseRefresh {
		h.logger.WarnContext(r.Context(), "Refresh token rejected", slog.Any("error", err))
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	actor, err := claims.Actor()
	if err != nil {
		h.logger.WarnContext(r.Context(), "Refresh token carries malformed claims", slog.Any("error", err))
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	u, err := h.service.GetUser(r.Context(), actor.ID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Refresh token subject no longer exists", slog.Any("error", err))
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	pair, err := h.issueTokenPair(u)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to issue token pair", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Token pair refreshed", slog.String("userID", u.ID.String()))
	respondJSON(w, http.StatusOK, pair)
}

// Me handles GET /auth/me
// @Summary Retrieve the authenticated user's profile
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.UserResponse "Profile retrieved"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/me [get]
// @Security BearerAuth
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	u, err := h.service.GetUser(r.Context(), actor.ID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Service failed to get user", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewUserResponse(u))
}

// UpdateMe handles PUT /auth/me
// @Summary Update the authenticated user's profile
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Profile update payload"
// @Success 200 {object} dto.UserResponse "Profile updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/me [put]
// @Security BearerAuth
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), actor, user.ProfileUpdate{Email: req.Email})
	if err != nil {
		h.logger.WarnContext(r.Context(), "Service failed to update profile", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "User profile updated", slog.String("userID", u.ID.String()))
	respondJSON(w, http.StatusOK, dto.NewUserResponse(u))
}

// CreateInstaller handles POST /auth/installers
// @Summary Create an installer account
// @Description Creates an INSTALLER-role account. Only installers may call this.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Installer account payload"
// @Success 201 {object} dto.UserResponse "Installer account created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an installer"
// @Failure 409 {object} dto.ErrorResponse "Username or email already taken"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/installers [post]
// @Security BearerAuth
func (h *AuthHandler) CreateInstaller(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	u, err := h.service.CreateInstaller(r.Context(), actor, user.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "Service failed to create installer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Installer account created", slog.String("userID", u.ID.String()))
	respondJSON(w, http.StatusCreated, dto.NewUserResponse(u))
}
