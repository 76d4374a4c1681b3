package service

import (
	"context"
	"errors"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrSelfDeactivation = errors.New("you cannot deactivate your own account")
)

// --- Service Interface ---
type AdminService interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, id uint) (*domain.Account, error)

	// EditAccount applies a partial profile update and reports whether any
	// row actually changed.
	EditAccount(ctx context.Context, id uint, update repository.ProfileUpdate) (bool, error)

	// DeactivateAccount soft-deletes the account. Admins cannot deactivate
	// themselves.
	DeactivateAccount(ctx context.Context, id, actingAdminID uint) error
}

// --- Service Implementation ---

// adminService implements the AdminService interface.
type adminService struct {
	accountRepo repository.AccountRepository
}

// NewAdminService creates a new instance of adminService.
func NewAdminService(accountRepo repository.AccountRepository) AdminService {
	return &adminService{accountRepo: accountRepo}
}

// ListAccounts returns every non-deactivated account.
func (s *adminService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		accounts[i].PasswordHash = ""
	}
	return accounts, nil
}

// GetAccount fetches one account for the edit page.
func (s *adminService) GetAccount(ctx context.Context, id uint) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	account.PasswordHash = ""
	return account, nil
}

// EditAccount applies the partial update.
func (s *adminService) EditAccount(ctx context.Context, id uint, update repository.ProfileUpdate) (bool, error) {
	// Confirm the target exists so a missing account is reported as such
	// rather than as a silent no-op.
	if _, err := s.accountRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrAccountNotFound
		}
		return false, err
	}
	return s.accountRepo.UpdateProfile(ctx, id, update)
}

// DeactivateAccount demotes the role to deactivated (soft delete).
func (s *adminService) DeactivateAccount(ctx context.Context, id, actingAdminID uint) error {
	if id == actingAdminID {
		return ErrSelfDeactivation
	}
	changed, err := s.accountRepo.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if !changed {
		return ErrAccountNotFound
	}
	return nil
}
