package dto

import (
	"time"

	"lending-engine/internal/domain/offer"

	"github.com/shopspring/decimal"
)

// CreateOfferRequest intentionally has no monthlyPayment field: the payment
// is derived server-side from the three loan terms.
type CreateOfferRequest struct {
	CustomerID   string          `json:"customerId" validate:"required,uuid"`
	LoanAmount   decimal.Decimal `json:"loanAmount" validate:"required"`
	InterestRate decimal.Decimal `json:"interestRate"`
	LoanTerm     int             `json:"loanTerm" validate:"required"`
}

func (r *CreateOfferRequest) Validate() error {
	return validateStruct(r)
}

type UpdateOfferRequest struct {
	LoanAmount   *decimal.Decimal `json:"loanAmount,omitempty"`
	InterestRate *decimal.Decimal `json:"interestRate,omitempty"`
	LoanTerm     *int             `json:"loanTerm,omitempty"`
	Status       *string          `json:"status,omitempty" validate:"omitempty,oneof=PENDING APPROVED REJECTED DISBURSED"`
}

func (r *UpdateOfferRequest) Validate() error {
	return validateStruct(r)
}

// ToInput maps present fields into the partial update; absent fields keep
// their stored values.
func (r *UpdateOfferRequest) ToInput() offer.UpdateInput {
	input := offer.UpdateInput{
		LoanAmount:   r.LoanAmount,
		InterestRate: r.InterestRate,
		LoanTerm:     r.LoanTerm,
	}
	if r.Status != nil {
		status := offer.Status(*r.Status)
		input.Status = &status
	}
	return input
}

type OfferCustomerResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type OfferResponse struct {
	ID             string                `json:"id"`
	CustomerID     string                `json:"customerId"`
	Customer       OfferCustomerResponse `json:"customer"`
	LoanAmount     string                `json:"loanAmount"`
	InterestRate   string                `json:"interestRate"`
	LoanTerm       int                   `json:"loanTerm"`
	MonthlyPayment string                `json:"monthlyPayment"`
	TotalPayment   string                `json:"totalPayment"`
	TotalInterest  string                `json:"totalInterest"`
	Status         string                `json:"status"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

func NewOfferResponse(o *offer.LoanOffer) OfferResponse {
	if o == nil {
		return OfferResponse{}
	}

	return OfferResponse{
		ID:         o.ID.String(),
		CustomerID: o.CustomerID.String(),
		Customer: OfferCustomerResponse{
			ID:        o.Customer.ID.String(),
			FirstName: o.Customer.FirstName,
			LastName:  o.Customer.LastName,
			Email:     o.Customer.Email,
		},
		LoanAmount:     o.LoanAmount.StringFixed(2),
		InterestRate:   o.InterestRate.String(),
		LoanTerm:       o.LoanTerm,
		MonthlyPayment: o.MonthlyPayment.StringFixed(2),
		TotalPayment:   o.TotalPayment().StringFixed(2),
		TotalInterest:  o.TotalInterest().StringFixed(2),
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}
