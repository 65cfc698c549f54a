package authz

import "github.com/google/uuid"

// Scope is the visibility filter list queries run under, computed once per
// request instead of authorizing every row of a result set. Repositories
// translate it into a WHERE clause.
type Scope struct {
	// All grants unconstrained visibility (installer scope).
	All bool
	// CustomerID restricts rows to one customer's ownership chain. Only
	// meaningful when All is false.
	CustomerID uuid.UUID
}

// Empty reports a scope that matches no rows at all: a customer-role actor
// with no linked customer profile.
func (s Scope) Empty() bool {
	return !s.All && s.CustomerID == uuid.Nil
}

// ScopeList computes the visibility filter for actor. Installers get the
// unconstrained scope; customers are restricted to records whose ownership
// chain resolves to their linked customer profile.
func ScopeList(actor Actor) Scope {
	switch actor.Role {
	case RoleInstaller:
		return Scope{All: true}
	case RoleCustomer:
		if actor.CustomerID == nil {
			return Scope{}
		}
		return Scope{CustomerID: *actor.CustomerID}
	default:
		return Scope{}
	}
}
