package repository

import (
	"context"

	"physiohub/clinic-app/internal/domain"
)

// Error constants for repository layer (optional but good practice)
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
	// Add more specific errors as needed
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ProfileUpdate carries a partial profile edit. Nil pointers leave the field
// untouched; ClearIllness sets illness to NULL explicitly.
type ProfileUpdate struct {
	Name         *string
	Surname      *string
	Email        *string
	Illness      *string
	ClearIllness bool
}

// AccountRepository defines the interface for interacting with account data.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (uint, error)
	GetByID(ctx context.Context, id uint) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)

	// SetIllness records the illness text and forces attended back to false,
	// reopening the case regardless of prior state.
	SetIllness(ctx context.Context, id uint, illness string) error

	// UpdateProfile applies a partial edit and reports whether a row changed.
	UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (bool, error)

	// Deactivate soft-deletes: role becomes deactivated, the row stays so
	// nhs_number-keyed history is never orphaned.
	Deactivate(ctx context.Context, id uint) (bool, error)

	// SearchPatients returns active patient accounts matching the query by
	// name/surname/illness substring or exact nhs_number.
	SearchPatients(ctx context.Context, query string) ([]domain.Account, error)

	// ListActive returns every account that is not deactivated.
	ListActive(ctx context.Context) ([]domain.Account, error)
}

// TreatmentRepository defines the interface for interacting with treatment data.
type TreatmentRepository interface {
	// AssignTreatment performs the whole assignment write as one transaction:
	// insert the treatment, insert every link, flip the account to attended.
	// Partial failure must leave no rows behind.
	AssignTreatment(ctx context.Context, accountID uint, treatment *domain.Treatment, links []domain.TreatmentExercise) (uint, error)

	// GetLatestByNHS resolves the current treatment: highest id wins, never
	// a timestamp comparison.
	GetLatestByNHS(ctx context.Context, nhsNumber string) (*domain.Treatment, error)

	// ListByNHS returns the full treatment history, newest first.
	ListByNHS(ctx context.Context, nhsNumber string) ([]domain.Treatment, error)

	// GetAssignedExercises returns the treatment's exercise links joined to
	// the catalog, ordered by order_num.
	GetAssignedExercises(ctx context.Context, treatmentID uint) ([]domain.AssignedExercise, error)
}

// ExerciseRepository defines the interface for interacting with the exercise catalog.
type ExerciseRepository interface {
	GetByID(ctx context.Context, id uint) (*domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
	Count(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, exercises []domain.Exercise) error
}
