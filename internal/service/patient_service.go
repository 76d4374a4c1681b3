package service

import (
	"context"
	"errors"
	"strings"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrEmptyIllness     = errors.New("illness description cannot be empty")
)

// Dashboard is the patient read model: the account plus, when attended, the
// current treatment and its ordered exercises.
type Dashboard struct {
	Account   *domain.Account
	Treatment *domain.Treatment
	Exercises []domain.AssignedExercise
}

// --- Service Interface ---
type PatientService interface {
	// SubmitIllness records the illness text and reopens the case: attended
	// goes back to false no matter what state the account was in.
	SubmitIllness(ctx context.Context, accountID uint, illness string) error

	// GetDashboard resolves the current treatment (highest id) and its
	// ordered exercise links; accounts awaiting assignment get an empty list.
	GetDashboard(ctx context.Context, accountID uint) (*Dashboard, error)

	// GetExercise returns one catalog exercise for the illustration page.
	GetExercise(ctx context.Context, exerciseID uint) (*domain.Exercise, error)
}

// --- Service Implementation ---

// patientService implements the PatientService interface.
type patientService struct {
	accountRepo   repository.AccountRepository
	treatmentRepo repository.TreatmentRepository
	exerciseRepo  repository.ExerciseRepository
}

// NewPatientService creates a new instance of patientService.
func NewPatientService(
	accountRepo repository.AccountRepository,
	treatmentRepo repository.TreatmentRepository,
	exerciseRepo repository.ExerciseRepository,
) PatientService {
	return &patientService{
		accountRepo:   accountRepo,
		treatmentRepo: treatmentRepo,
		exerciseRepo:  exerciseRepo,
	}
}

// SubmitIllness stores the illness description and forces the awaiting state.
// Re-submission after a completed treatment deliberately reopens the case;
// old treatment rows stay in history.
func (s *patientService) SubmitIllness(ctx context.Context, accountID uint, illness string) error {
	illness = strings.TrimSpace(illness)
	if illness == "" {
		return ErrEmptyIllness
	}
	err := s.accountRepo.SetIllness(ctx, accountID, illness)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountNotFound
	}
	return err
}

// GetDashboard builds the patient dashboard read model.
func (s *patientService) GetDashboard(ctx context.Context, accountID uint) (*Dashboard, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	account.PasswordHash = ""

	dashboard := &Dashboard{Account: account}
	if !account.Attended {
		return dashboard, nil
	}

	treatment, err := s.treatmentRepo.GetLatestByNHS(ctx, account.NHSNumber)
	if err != nil {
		// Attended with no treatment row should not happen (the flag only
		// flips inside the assignment transaction) but is rendered as an
		// empty dashboard rather than an error.
		if errors.Is(err, repository.ErrNotFound) {
			return dashboard, nil
		}
		return nil, err
	}
	exercises, err := s.treatmentRepo.GetAssignedExercises(ctx, treatment.ID)
	if err != nil {
		return nil, err
	}

	dashboard.Treatment = treatment
	dashboard.Exercises = exercises
	return dashboard, nil
}

// GetExercise retrieves a single catalog exercise.
func (s *patientService) GetExercise(ctx context.Context, exerciseID uint) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}
