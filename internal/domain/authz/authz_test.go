package authz_test

import (
	"testing"

	"lending-engine/internal/domain/authz"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type ownedResource struct {
	owner *uuid.UUID
}

func (r ownedResource) OwnerUserID() *uuid.UUID {
	return r.owner
}

func installer() authz.Actor {
	return authz.Actor{ID: uuid.New(), Role: authz.RoleInstaller}
}

func customerActor() authz.Actor {
	return authz.Actor{ID: uuid.New(), Role: authz.RoleCustomer}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, authz.RoleInstaller.Valid())
	assert.True(t, authz.RoleCustomer.Valid())
	assert.False(t, authz.Role("ADMIN").Valid())
	assert.False(t, authz.Role("").Valid())
	assert.False(t, authz.Role("installer").Valid())
}

func TestAuthorizeCreate(t *testing.T) {
	t.Run("installer may create", func(t *testing.T) {
		d := authz.AuthorizeCreate(installer())
		assert.True(t, d.Allowed)
		assert.Equal(t, authz.ReasonNone, d.Reason)
	})

	t.Run("customer may not create", func(t *testing.T) {
		d := authz.AuthorizeCreate(customerActor())
		assert.False(t, d.Allowed)
		assert.Equal(t, authz.ReasonForbiddenRole, d.Reason)
	})

	t.Run("unknown role is denied", func(t *testing.T) {
		d := authz.AuthorizeCreate(authz.Actor{ID: uuid.New(), Role: "SUPERUSER"})
		assert.False(t, d.Allowed)
		assert.Equal(t, authz.ReasonForbiddenRole, d.Reason)
	})
}

func TestAuthorizeRead(t *testing.T) {
	t.Run("installer sees any resource", func(t *testing.T) {
		other := uuid.New()
		d := authz.AuthorizeRead(installer(), ownedResource{owner: &other})
		assert.True(t, d.Allowed)
	})

	t.Run("installer sees unowned resource", func(t *testing.T) {
		d := authz.AuthorizeRead(installer(), ownedResource{})
		assert.True(t, d.Allowed)
	})

	t.Run("customer sees own resource", func(t *testing.T) {
		actor := customerActor()
		d := authz.AuthorizeRead(actor, ownedResource{owner: &actor.ID})
		assert.True(t, d.Allowed)
		assert.Equal(t, authz.ReasonNone, d.Reason)
	})

	t.Run("customer denied on another user's resource", func(t *testing.T) {
		other := uuid.New()
		d := authz.AuthorizeRead(customerActor(), ownedResource{owner: &other})
		assert.False(t, d.Allowed)
		assert.Equal(t, authz.ReasonNotOwner, d.Reason)
	})

	t.Run("customer denied on unowned resource", func(t *testing.T) {
		d := authz.AuthorizeRead(customerActor(), ownedResource{})
		assert.False(t, d.Allowed)
		assert.Equal(t, authz.ReasonNotOwner, d.Reason)
	})

	t.Run("ownership resolves through the linked user, not the actor's profile", func(t *testing.T) {
		// The owner pointer must match the actor's user ID exactly; having a
		// linked customer profile is not enough.
		actor := customerActor()
		profileID := uuid.New()
		actor.CustomerID = &profileID

		other := uuid.New()
		d := authz.AuthorizeRead(actor, ownedResource{owner: &other})
		assert.False(t, d.Allowed)
	})
}

func TestAuthorizeWrite(t *testing.T) {
	t.Run("installer may write", func(t *testing.T) {
		assert.True(t, authz.AuthorizeWrite(installer()).Allowed)
	})

	t.Run("customer may never write", func(t *testing.T) {
		// Writes are denied even though the same actor can read its own
		// records. Read and write are decided independently.
		actor := customerActor()
		d := authz.AuthorizeWrite(actor)
		assert.False(t, d.Allowed)
		assert.Equal(t, authz.ReasonForbiddenRole, d.Reason)

		assert.True(t, authz.AuthorizeRead(actor, ownedResource{owner: &actor.ID}).Allowed)
	})

	t.Run("unknown role is denied", func(t *testing.T) {
		d := authz.AuthorizeWrite(authz.Actor{ID: uuid.New(), Role: ""})
		assert.False(t, d.Allowed)
	})
}

func TestScopeList(t *testing.T) {
	t.Run("installer gets the unconstrained scope", func(t *testing.T) {
		scope := authz.ScopeList(installer())
		assert.True(t, scope.All)
		assert.False(t, scope.Empty())
	})

	t.Run("customer with linked profile is restricted to it", func(t *testing.T) {
		actor := customerActor()
		profileID := uuid.New()
		actor.CustomerID = &profileID

		scope := authz.ScopeList(actor)
		assert.False(t, scope.All)
		assert.Equal(t, profileID, scope.CustomerID)
		assert.False(t, scope.Empty())
	})

	t.Run("customer without linked profile matches nothing", func(t *testing.T) {
		scope := authz.ScopeList(customerActor())
		assert.False(t, scope.All)
		assert.True(t, scope.Empty())
	})

	t.Run("unknown role matches nothing", func(t *testing.T) {
		scope := authz.ScopeList(authz.Actor{ID: uuid.New(), Role: "SUPERUSER"})
		assert.True(t, scope.Empty())
	})
}
