package service

import (
	"context"
	"testing"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newAdminFixture(t *testing.T) (*fakeAccountRepo, AdminService, *domain.Account, *domain.Account) {
	t.Helper()
	accounts := newFakeAccountRepo()
	admin := accounts.mustAdd(domain.Account{
		Username: "clinic_admin", Role: domain.RoleAdmin, NHSNumber: "000-000-0000",
	})
	illness := "tennis elbow"
	patient := accounts.mustAdd(domain.Account{
		Username: "sandro_verrone", Role: domain.RolePatient, NHSNumber: "943-476-5919",
		Name: "Sandro", Surname: "Verrone", Illness: &illness,
	})
	return accounts, NewAdminService(accounts), admin, patient
}

func TestListAccountsExcludesDeactivated(t *testing.T) {
	accounts, svc, _, patient := newAdminFixture(t)
	gone := accounts.mustAdd(domain.Account{
		Username: "former_patient", Role: domain.RoleDeactivated, NHSNumber: "111-111-1111",
	})

	listed, err := svc.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 2)
	for _, account := range listed {
		assert.NotEqual(t, gone.ID, account.ID)
		assert.Empty(t, account.PasswordHash)
	}
	assert.Equal(t, patient.Username, listed[1].Username)
}

func TestEditAccount(t *testing.T) {
	accounts, svc, _, patient := newAdminFixture(t)

	changed, err := svc.EditAccount(context.Background(), patient.ID, repository.ProfileUpdate{
		Name:  strPtr("Alessandro"),
		Email: strPtr("alessandro@example.org"),
	})
	require.NoError(t, err)
	assert.True(t, changed)

	account, _ := accounts.GetByID(context.Background(), patient.ID)
	assert.Equal(t, "Alessandro", account.Name)
	assert.Equal(t, "alessandro@example.org", account.Email)
	assert.Equal(t, "Verrone", account.Surname)
}

func TestEditAccountNoChanges(t *testing.T) {
	_, svc, _, patient := newAdminFixture(t)

	changed, err := svc.EditAccount(context.Background(), patient.ID, repository.ProfileUpdate{})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestEditAccountClearsIllness(t *testing.T) {
	accounts, svc, _, patient := newAdminFixture(t)

	changed, err := svc.EditAccount(context.Background(), patient.ID, repository.ProfileUpdate{ClearIllness: true})
	require.NoError(t, err)
	assert.True(t, changed)

	account, _ := accounts.GetByID(context.Background(), patient.ID)
	assert.Nil(t, account.Illness)
}

func TestEditAccountNotFound(t *testing.T) {
	_, svc, _, _ := newAdminFixture(t)

	_, err := svc.EditAccount(context.Background(), 9999, repository.ProfileUpdate{Name: strPtr("Nobody")})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestDeactivateAccount(t *testing.T) {
	accounts, svc, admin, patient := newAdminFixture(t)

	require.NoError(t, svc.DeactivateAccount(context.Background(), patient.ID, admin.ID))

	account, _ := accounts.GetByID(context.Background(), patient.ID)
	assert.Equal(t, domain.RoleDeactivated, account.Role)

	// Already deactivated reads as missing, same as a bogus id.
	assert.ErrorIs(t, svc.DeactivateAccount(context.Background(), patient.ID, admin.ID), ErrAccountNotFound)
	assert.ErrorIs(t, svc.DeactivateAccount(context.Background(), 9999, admin.ID), ErrAccountNotFound)
}

func TestDeactivateAccountSelfForbidden(t *testing.T) {
	accounts, svc, admin, _ := newAdminFixture(t)

	err := svc.DeactivateAccount(context.Background(), admin.ID, admin.ID)
	assert.ErrorIs(t, err, ErrSelfDeactivation)

	account, _ := accounts.GetByID(context.Background(), admin.ID)
	assert.Equal(t, domain.RoleAdmin, account.Role)
}
