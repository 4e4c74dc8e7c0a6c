package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/hash"
)

func TestUserService(t *testing.T) {
	t.Parallel()

	db := testutil.NewDB(t)
	svc := &UserService{Repo: &repo.GormRepo{DB: db}}
	ctx := context.Background()

	boss := testutil.SeedUser(t, db, "boss@example.com", models.RoleAdmin)
	asAdmin := Caller{UserID: boss.ID, Role: models.RoleAdmin}

	_, err := svc.Create(ctx, Caller{UserID: 5, Role: models.RoleCustomer}, transport.CreateUserRequest{Name: "x", Email: "x@x", Password: "p"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(ctx, asAdmin, transport.CreateUserRequest{Name: "Bob", Email: "bob@example.com"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, asAdmin, transport.CreateUserRequest{Name: "Bob", Email: "bob@example.com", Password: "p", Role: "root"})
	assert.ErrorIs(t, err, ErrValidation)

	bob, err := svc.Create(ctx, asAdmin, transport.CreateUserRequest{Name: "Bob", Email: "bob@example.com", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, bob.Role)
	asBob := Caller{UserID: bob.ID, Role: models.RoleCustomer}

	_, err = svc.Create(ctx, asAdmin, transport.CreateUserRequest{Name: "Bob2", Email: "BOB@example.com", Password: "p"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.List(ctx, asBob)
	assert.ErrorIs(t, err, ErrForbidden)
	all, err := svc.List(ctx, asAdmin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.Get(ctx, asBob, boss.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	self, err := svc.Get(ctx, asBob, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", self.Name)

	_, err = svc.Update(ctx, asBob, bob.ID, transport.PatchUserRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	role := models.RoleAdmin
	_, err = svc.Update(ctx, asBob, bob.ID, transport.PatchUserRequest{Role: &role})
	assert.ErrorIs(t, err, ErrForbidden)

	taken := "boss@example.com"
	_, err = svc.Update(ctx, asBob, bob.ID, transport.PatchUserRequest{Email: &taken})
	assert.ErrorIs(t, err, ErrConflict)

	newPass := "n3w"
	newName := "Robert"
	updated, err := svc.Update(ctx, asBob, bob.ID, transport.PatchUserRequest{Name: &newName, Password: &newPass})
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)
	assert.True(t, hash.CheckPassword(updated.PasswordHash, "n3w"))

	promoted, err := svc.Update(ctx, asAdmin, bob.ID, transport.PatchUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	_, err = svc.Update(ctx, asAdmin, 999, transport.PatchUserRequest{Name: &newName})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, asBob, bob.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, asAdmin, bob.ID))
	assert.ErrorIs(t, svc.Delete(ctx, asAdmin, bob.ID), ErrNotFound)
}
