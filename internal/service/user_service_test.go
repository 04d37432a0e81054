package service

import (
	"testing"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func privilegeCodes(privileges []model.Privilege) []string {
	codes := make([]string, len(privileges))
	for i, p := range privileges {
		codes[i] = p.Code
	}
	return codes
}

func TestUserRoleChangeResetsPrivileges(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, NewSeeder(f.db).Seed("admin@example.com", "admin123"))
	roles := repository.NewRoleRepo(f.db)
	users := NewUserService(repository.NewUserRepo(f.db), repository.NewPrivilegeRepo(f.db), roles)

	vendor, err := roles.FindByCode(model.RoleVendor)
	require.NoError(t, err)
	customer, err := roles.FindByCode(model.RoleCustomer)
	require.NoError(t, err)

	created, err := users.CreateUser(&CreateUserRequest{
		Email: " Shop@Example.com ", Password: "secret123", FullName: "Shop Keeper",
		BirthDate: strPtr("1990-04-01"), RoleID: vendor.ID,
	}, "system")
	require.NoError(t, err)
	assert.Equal(t, "shop@example.com", created.Email)
	assert.ElementsMatch(t, model.VendorPrivileges, privilegeCodes(created.Privileges))
	require.NotNil(t, created.BirthDate)

	_, err = users.CreateUser(&CreateUserRequest{
		Email: "shop@example.com", Password: "secret123", FullName: "Copy", RoleID: vendor.ID,
	}, "system")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = users.CreateUser(&CreateUserRequest{
		Email: "ghost@example.com", Password: "secret123", FullName: "Ghost", RoleID: 999,
	}, "system")
	assert.ErrorIs(t, err, ErrRoleNotFound)

	extra, err := users.UpdateUserPrivileges(created.ID, []string{model.PrivUserView}, "system")
	require.NoError(t, err)
	assert.Equal(t, []string{model.PrivUserView}, privilegeCodes(extra.Privileges))

	_, err = users.UpdateUserPrivileges(created.ID, []string{"NOT_A_PRIVILEGE"}, "system")
	assert.Error(t, err)

	inactive := false
	updated, err := users.UpdateUser(created.ID, &UpdateUserRequest{
		Email: "shop@example.com", FullName: "Shop Keeper", RoleID: customer.ID, IsActive: &inactive,
	}, "system")
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.ElementsMatch(t, privilegeCodes(customer.Privileges), privilegeCodes(updated.Privileges))

	page, err := users.GetAllUsers(defaultPage(), "shop")
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	require.NoError(t, users.DeleteUser(created.ID, "system"))
	_, err = users.GetUserByID(created.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, users.DeleteUser(uuid.New(), "system"), ErrUserNotFound)
}

func strPtr(s string) *string { return &s }
