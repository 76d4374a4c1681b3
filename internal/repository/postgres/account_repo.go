package postgres

import (
	"context"
	"errors"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/repository"

	"gorm.io/gorm"
)

// gormAccountRepository implements repository.AccountRepository on Postgres.
type gormAccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new instance of gormAccountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &gormAccountRepository{db: db}
}

// Create inserts a new account. Unique violations on username or nhs_number
// surface as repository.ErrDuplicate.
func (r *gormAccountRepository) Create(ctx context.Context, account *domain.Account) (uint, error) {
	if account.Username == "" || account.PasswordHash == "" || account.Role == "" {
		return 0, errors.New("account username, password hash, and role are required")
	}

	err := r.db.WithContext(ctx).Create(account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, repository.ErrDuplicate
		}
		return 0, err
	}
	return account.ID, nil
}

// GetByID retrieves an account by its row id.
func (r *gormAccountRepository) GetByID(ctx context.Context, id uint) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetByUsername retrieves an account by its unique username.
func (r *gormAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// SetIllness stores the illness text and resets attended, reopening the case.
func (r *gormAccountRepository) SetIllness(ctx context.Context, id uint, illness string) error {
	res := r.db.WithContext(ctx).Model(&domain.Account{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"illness":  illness,
			"attended": false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateProfile applies a partial edit and reports whether any row changed.
func (r *gormAccountRepository) UpdateProfile(ctx context.Context, id uint, update repository.ProfileUpdate) (bool, error) {
	fields := map[string]interface{}{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Surname != nil {
		fields["surname"] = *update.Surname
	}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.ClearIllness {
		fields["illness"] = gorm.Expr("NULL")
	} else if update.Illness != nil {
		fields["illness"] = *update.Illness
	}
	if len(fields) == 0 {
		return false, nil
	}

	res := r.db.WithContext(ctx).Model(&domain.Account{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Deactivate demotes the role to deactivated. The row is kept: hard deletion
// would orphan the nhs_number-keyed treatment history.
func (r *gormAccountRepository) Deactivate(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ? AND role <> ?", id, domain.RoleDeactivated).
		Update("role", domain.RoleDeactivated)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SearchPatients filters active patients by name/surname/illness substring or
// exact nhs_number, mirroring the therapist dashboard search.
func (r *gormAccountRepository) SearchPatients(ctx context.Context, query string) ([]domain.Account, error) {
	var accounts []domain.Account
	like := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("role = ?", domain.RolePatient).
		Where("name ILIKE ? OR surname ILIKE ? OR nhs_number = ? OR illness ILIKE ?", like, like, query, like).
		Order("surname, name").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// ListActive returns every account that has not been deactivated.
func (r *gormAccountRepository) ListActive(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	err := r.db.WithContext(ctx).
		Where("role <> ?", domain.RoleDeactivated).
		Order("id").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
