package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/notify"
	"physiohub/clinic-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrNotAPatient         = errors.New("account is not an active patient")
	ErrEmptySelection      = errors.New("please select at least one exercise to assign")
	ErrInvalidPrescription = errors.New("invalid prescription value")
)

// PrescriptionInput is one submitted exercise prescription, in submission order.
type PrescriptionInput struct {
	ExerciseID uint
	Duration   int
	Reps       int
	PerWeek    int
}

// PatientDetail is the therapist's per-patient view: profile, the exercise
// catalog to assign from, and the full treatment history.
type PatientDetail struct {
	Patient *domain.Account
	Catalog []domain.Exercise
	History []domain.Treatment
}

// --- Service Interface ---
type TherapistService interface {
	SearchPatients(ctx context.Context, query string) ([]domain.Account, error)
	GetPatientDetail(ctx context.Context, patientID uint) (*PatientDetail, error)

	// AssignExercises is the core transition: validate the whole batch, then
	// write treatment + links + attended flip in one transaction, then fire
	// the confirmation notification without blocking on it.
	AssignExercises(ctx context.Context, patientID uint, prescriptions []PrescriptionInput) (*domain.Treatment, error)
}

// --- Service Implementation ---

// therapistService implements the TherapistService interface.
type therapistService struct {
	accountRepo   repository.AccountRepository
	treatmentRepo repository.TreatmentRepository
	exerciseRepo  repository.ExerciseRepository
	notifier      notify.Notifier
	logger        *slog.Logger
}

// NewTherapistService creates a new instance of therapistService.
func NewTherapistService(
	accountRepo repository.AccountRepository,
	treatmentRepo repository.TreatmentRepository,
	exerciseRepo repository.ExerciseRepository,
	notifier notify.Notifier,
	logger *slog.Logger,
) TherapistService {
	return &therapistService{
		accountRepo:   accountRepo,
		treatmentRepo: treatmentRepo,
		exerciseRepo:  exerciseRepo,
		notifier:      notifier,
		logger:        logger,
	}
}

// SearchPatients filters the active patient roster.
func (s *therapistService) SearchPatients(ctx context.Context, query string) ([]domain.Account, error) {
	patients, err := s.accountRepo.SearchPatients(ctx, query)
	if err != nil {
		return nil, err
	}
	for i := range patients {
		patients[i].PasswordHash = ""
	}
	return patients, nil
}

// GetPatientDetail loads the assignment page data for one patient.
func (s *therapistService) GetPatientDetail(ctx context.Context, patientID uint) (*PatientDetail, error) {
	patient, err := s.loadActivePatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.exerciseRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.treatmentRepo.ListByNHS(ctx, patient.NHSNumber)
	if err != nil {
		return nil, err
	}

	return &PatientDetail{
		Patient: patient,
		Catalog: catalog,
		History: history,
	}, nil
}

// AssignExercises creates one assignment episode.
//
// The entire batch is validated before anything is written, so a prescription
// that turns out invalid halfway through can never leave an orphaned
// treatment row behind.
func (s *therapistService) AssignExercises(ctx context.Context, patientID uint, prescriptions []PrescriptionInput) (*domain.Treatment, error) {
	// 1. Non-empty selection
	if len(prescriptions) == 0 {
		return nil, ErrEmptySelection
	}

	// 2. Target must be an active patient
	patient, err := s.loadActivePatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	// 3. Validate every prescription and resolve every exercise up front
	links := make([]domain.TreatmentExercise, 0, len(prescriptions))
	for i, p := range prescriptions {
		exercise, err := s.exerciseRepo.GetByID(ctx, p.ExerciseID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w for exercise #%d: no such exercise", ErrInvalidPrescription, p.ExerciseID)
			}
			return nil, err
		}
		if p.Duration <= 0 || p.Reps <= 0 || p.PerWeek <= 0 {
			return nil, fmt.Errorf("%w for exercise: %s", ErrInvalidPrescription, exercise.Name)
		}

		link, err := domain.NewTreatmentExercise(0, exercise.ID, i+1, domain.Prescription{
			Duration: p.Duration,
			Reps:     p.Reps,
			PerWeek:  p.PerWeek,
		})
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	// 4. One atomic write: treatment, links, attended flip
	treatment := &domain.Treatment{
		NHSNumber:   patient.NHSNumber,
		Timing:      "Custom assigned",
		Progression: "Individual progression",
	}
	if _, err := s.treatmentRepo.AssignTreatment(ctx, patient.ID, treatment, links); err != nil {
		return nil, err
	}

	// 5. Fire-and-forget confirmation. A failed notification is logged and
	// never rolls back or fails the assignment.
	go func(accountID uint) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.notifier.SendConfirmation(ctx, accountID); err != nil {
			s.logger.Error("assignment confirmation failed", "accountId", accountID, "error", err)
		}
	}(patient.ID)

	return treatment, nil
}

// loadActivePatient fetches the account and checks it is an active patient.
func (s *therapistService) loadActivePatient(ctx context.Context, patientID uint) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	if !account.IsPatient() {
		return nil, ErrNotAPatient
	}
	account.PasswordHash = ""
	return account, nil
}
