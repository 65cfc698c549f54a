package user

import (
	"time"

	"lending-engine/internal/domain/authz"

	"github.com/google/uuid"
)

// User is an account that can authenticate. CustomerID links a customer-role
// account to its customer profile; installer accounts never carry one.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         authz.Role  `json:"role"`
	CustomerID   *uuid.UUID  `json:"customerId,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Actor projects the account into the authorization engine's input.
func (u *User) Actor() authz.Actor {
	return authz.Actor{
		ID:         u.ID,
		Role:       u.Role,
		CustomerID: u.CustomerID,
	}
}
