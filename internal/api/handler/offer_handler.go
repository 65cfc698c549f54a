package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"lending-engine/internal/api/handler/dto"
	"lending-engine/internal/api/middleware"
	"lending-engine/internal/domain/offer"
	"lending-engine/internal/pkg/apperrors"

	"github.com/google/uuid"
)

type OfferHandler struct {
	service offer.OfferService
	logger  *slog.Logger
}

func NewOfferHandler(s offer.OfferService, l *slog.Logger) *OfferHandler {
	if s == nil {
		panic("offer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &OfferHandler{
		service: s,
		logger:  l.With("component", "OfferHandler"),
	}
}

var validStatuses = map[offer.Status]bool{
	offer.StatusPending:   true,
	offer.StatusApproved:  true,
	offer.StatusRejected:  true,
	offer.StatusDisbursed: true,
}

func filterFromQuery(r *http.Request) (offer.ListFilter, error) {
	filter := offer.ListFilter{}
	filter.Limit, filter.Offset = getPagination(r)

	if v := r.URL.Query().Get("status"); v != "" {
		status := offer.Status(v)
		if !validStatuses[status] {
			return filter, fmt.Errorf("%w: invalid status filter: %s", apperrors.ErrInvalidArgument, v)
		}
		filter.Status = status
	}
	if v := r.URL.Query().Get("customer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid customer_id format: %s", apperrors.ErrInvalidArgument, v)
		}
		filter.CustomerID = id
	}
	return filter, nil
}

// CreateOffer handles POST /offers
// @Summary Create a loan offer
// @Description Creates an offer for a customer. The monthly payment is computed server-side from loanAmount, interestRate and loanTerm; the offer starts in PENDING. Installer-only.
// @Tags Offers
// @Accept json
// @Produce json
// @Param request body dto.CreateOfferRequest true "Offer creation request"
// @Success 201 {object} dto.OfferResponse "Offer successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload or loan terms out of bounds"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an installer"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /offers [post]
// @Security BearerAuth
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received create offer request")

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	var req dto.CreateOfferRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Offer payload validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		respondError(w, fmt.Errorf("%w: invalid customerId format", apperrors.ErrInvalidArgument))
		return
	}

	createdOffer, err := h.service.CreateOffer(r.Context(), actor, offer.Terms{
		CustomerID:   customerID,
		LoanAmount:   req.LoanAmount,
		InterestRate: req.InterestRate,
		LoanTerm:     req.LoanTerm,
	})
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrForbidden) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to create offer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewOfferResponse(createdOffer)
	h.logger.InfoContext(r.Context(), "Offer created successfully", slog.String("offerID", resp.ID))
	respondJSON(w, http.StatusCreated, resp)
}

// GetOffer handles GET /offers/{offerID}
// @Summary Retrieve a loan offer
// @Description Installers see any offer; customer accounts only offers on their own linked record.
// @Tags Offers
// @Produce json
// @Param offerID path string true "Offer ID" Format(uuid)
// @Success 200 {object} dto.OfferResponse "Offer details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid offer ID format"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Offer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /offers/{offerID} [get]
// @Security BearerAuth
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	offerID, err := getUUIDFromURL(r, "offerID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get offer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	domainOffer, err := h.service.GetOffer(r.Context(), actor, offerID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get offer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Offer retrieved successfully")
	respondJSON(w, http.StatusOK, dto.NewOfferResponse(domainOffer))
}

// ListOffers handles GET /offers
// @Summary List loan offers
// @Description Installers list every offer; customer accounts see only offers on their own linked record. Supports status and customer filters.
// @Tags Offers
// @Produce json
// @Param status query string false "Filter by status" Enums(PENDING, APPROVED, REJECTED, DISBURSED)
// @Param customer_id query string false "Filter by customer ID" Format(uuid)
// @Param limit query int false "Page size (max 200)" Example(50)
// @Param offset query int false "Page offset" Example(0)
// @Success 200 {array} dto.OfferResponse "List of offers"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter parameters"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /offers [get]
// @Security BearerAuth
func (h *OfferHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received list offers request")

	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid offer list filter", slog.Any("error", err))
		respondError(w, err)
		return
	}

	offers, err := h.service.ListOffers(r.Context(), actor, filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list offers", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := make([]dto.OfferResponse, len(offers))
	for i, o := range offers {
		resp[i] = dto.NewOfferResponse(o)
	}

	h.logger.InfoContext(r.Context(), "Offers listed successfully", slog.Int("count", len(resp)))
	respondJSON(w, http.StatusOK, resp)
}

// UpdateOffer handles PUT /offers/{offerID}
// @Summary Update a loan offer
// @Description Applies a partial update. Changing any of loanAmount, interestRate or loanTerm revalidates the terms and recomputes the monthly payment. Installer-only.
// @Tags Offers
// @Accept json
// @Produce json
// @Param offerID path string true "Offer ID" Format(uuid)
// @Param request body dto.UpdateOfferRequest true "Offer update request"
// @Success 200 {object} dto.OfferResponse "Offer updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload or loan terms out of bounds"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an installer"
// @Failure 404 {object} dto.ErrorResponse "Offer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /offers/{offerID} [put]
// @Security BearerAuth
func (h *OfferHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	offerID, err := getUUIDFromURL(r, "offerID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get offer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	var req dto.UpdateOfferRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Offer payload validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	updatedOffer, err := h.service.UpdateOffer(r.Context(), actor, offerID, req.ToInput())
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrForbidden) &&
			!errors.Is(err, apperrors.ErrValidation) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to update offer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Offer updated successfully",
		slog.String("monthlyPayment", updatedOffer.MonthlyPayment.StringFixed(2)))
	respondJSON(w, http.StatusOK, dto.NewOfferResponse(updatedOffer))
}

// DeleteOffer handles DELETE /offers/{offerID}
// @Summary Delete a loan offer
// @Description Removes the offer. Installer-only.
// @Tags Offers
// @Produce json
// @Param offerID path string true "Offer ID" Format(uuid)
// @Success 204 "Offer successfully deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid offer ID"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Caller is not an installer"
// @Failure 404 {object} dto.ErrorResponse "Offer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /offers/{offerID} [delete]
// @Security BearerAuth
func (h *OfferHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	offerID, err := getUUIDFromURL(r, "offerID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get offer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	if err := h.service.DeleteOffer(r.Context(), actor, offerID); err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrForbidden) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to delete offer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Offer deleted successfully")
	respondJSON(w, http.StatusNoContent, nil)
}
