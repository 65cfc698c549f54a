package customer

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer is a loan applicant record. UserID links the customer-role user
// account that may view this record; CreatedBy is the installer who created
// it and is kept for auditing only, it grants no exclusive rights.
type Customer struct {
	ID           uuid.UUID  `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	PhoneNumber  string     `json:"phoneNumber,omitempty"`
	AddressLine1 string     `json:"addressLine1"`
	AddressLine2 string     `json:"addressLine2,omitempty"`
	City         string     `json:"city"`
	State        string     `json:"state"`
	PostalCode   string     `json:"postalCode"`
	Country      string     `json:"country"`
	UserID       *uuid.UUID `json:"userId,omitempty"`
	CreatedBy    *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// OwnerUserID resolves the ownership chain for authorization: the linked
// customer-role user, or nil when no account is linked.
func (c *Customer) OwnerUserID() *uuid.UUID {
	return c.UserID
}

func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c *Customer) FullAddress() string {
	parts := []string{c.AddressLine1, c.AddressLine2, c.City, c.State, c.PostalCode, c.Country}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

func (c *Customer) LinkUser(userID uuid.UUID) {
	c.UserID = &userID
	c.UpdatedAt = time.Now()
}
