// Package authz is the authorization decision engine. It is pure: every
// function is a side-effect-free computation over an explicit Actor and, for
// object-level checks, the target resource. There is no ambient notion of a
// "current user" anywhere in the codebase; handlers extract the Actor from
// the verified token and thread it through every call.
package authz

import (
	"github.com/google/uuid"
)

type Role string

const (
	RoleInstaller Role = "INSTALLER"
	RoleCustomer  Role = "CUSTOMER"
)

func (r Role) Valid() bool {
	return r == RoleInstaller || r == RoleCustomer
}

// Actor is an authenticated identity with exactly one role. CustomerID is
// the linked customer profile and is only meaningful for the CUSTOMER role;
// a customer-role actor without a linked profile owns nothing.
type Actor struct {
	ID         uuid.UUID
	Role       Role
	CustomerID *uuid.UUID
}

func (a Actor) IsInstaller() bool {
	return a.Role == RoleInstaller
}

func (a Actor) IsCustomer() bool {
	return a.Role == RoleCustomer
}

type Reason string

const (
	ReasonNone          Reason = ""
	ReasonForbiddenRole Reason = "forbidden_role"
	ReasonNotOwner      Reason = "not_owner"
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Owned is implemented by resources whose visibility is ownership-based.
// OwnerUserID resolves the full ownership chain: a Customer reports its
// directly linked user, a LoanOffer reports the linked user of its customer.
// It returns nil when no customer-role user is linked to the resource.
type Owned interface {
	OwnerUserID() *uuid.UUID
}

// AuthorizeCreate decides whether actor may create a Customer or LoanOffer
// record. Creation is installer-only for both resource kinds.
func AuthorizeCreate(actor Actor) Decision {
	switch actor.Role {
	case RoleInstaller:
		return Allow()
	case RoleCustomer:
		return Deny(ReasonForbiddenRole)
	default:
		return Deny(ReasonForbiddenRole)
	}
}

// AuthorizeRead decides whether actor may view resource. Installers see
// everything; customers see only resources whose ownership chain resolves to
// them. A not_owner denial must be surfaced to the caller exactly like a
// missing resource, so that probing IDs leaks nothing about other customers.
func AuthorizeRead(actor Actor, resource Owned) Decision {
	switch actor.Role {
	case RoleInstaller:
		return Allow()
	case RoleCustomer:
		owner := resource.OwnerUserID()
		if owner != nil && *owner == actor.ID {
			return Allow()
		}
		return Deny(ReasonNotOwner)
	default:
		return Deny(ReasonForbiddenRole)
	}
}

// AuthorizeWrite decides whether actor may update or delete a record.
// Writes are installer-only: customers never mutate records, including the
// ones they can read. The asymmetry with AuthorizeRead is deliberate.
func AuthorizeWrite(actor Actor) Decision {
	switch actor.Role {
	case RoleInstaller:
		return Allow()
	case RoleCustomer:
		return Deny(ReasonForbiddenRole)
	default:
		return Deny(ReasonForbiddenRole)
	}
}
