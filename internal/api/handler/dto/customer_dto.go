package dto

import (
	"time"

	"lending-engine/internal/domain/customer"

	"github.com/google/uuid"
)

type CreateCustomerRequest struct {
	FirstName    string `json:"firstName" validate:"required,max=100"`
	LastName     string `json:"lastName" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	PhoneNumber  string `json:"phoneNumber,omitempty" validate:"omitempty,max=32"`
	AddressLine1 string `json:"addressLine1" validate:"required,max=255"`
	AddressLine2 string `json:"addressLine2,omitempty" validate:"omitempty,max=255"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"required,max=100"`
	PostalCode   string `json:"postalCode" validate:"required,max=20"`
	Country      string `json:"country,omitempty" validate:"omitempty,len=2"`
	UserID       string `json:"userId,omitempty" validate:"omitempty,uuid"`
}

func (r *CreateCustomerRequest) Validate() error {
	return validateStruct(r)
}

// ToInput converts the validated payload into the service input. The userId
// string is parsed after validation so a malformed value never reaches here.
func (r *CreateCustomerRequest) ToInput() customer.CustomerInput {
	input := customer.CustomerInput{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		PhoneNumber:  r.PhoneNumber,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		PostalCode:   r.PostalCode,
		Country:      r.Country,
	}
	if r.UserID != "" {
		if id, err := uuid.Parse(r.UserID); err == nil {
			input.UserID = &id
		}
	}
	return input
}

type UpdateCustomerRequest = CreateCustomerRequest

type CustomerResponse struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	AddressLine1 string    `json:"addressLine1"`
	AddressLine2 string    `json:"addressLine2,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postalCode"`
	Country      string    `json:"country"`
	UserID       *string   `json:"userId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}

	var userIDStr *string
	if cust.UserID != nil {
		s := cust.UserID.String()
		userIDStr = &s
	}

	return CustomerResponse{
		ID:           cust.ID.String(),
		FirstName:    cust.FirstName,
		LastName:     cust.LastName,
		Email:        cust.Email,
		PhoneNumber:  cust.PhoneNumber,
		AddressLine1: cust.AddressLine1,
		AddressLine2: cust.AddressLine2,
		City:         cust.City,
		State:        cust.State,
		PostalCode:   cust.PostalCode,
		Country:      cust.Country,
		UserID:       userIDStr,
		CreatedAt:    cust.CreatedAt,
		UpdatedAt:    cust.UpdatedAt,
	}
}
