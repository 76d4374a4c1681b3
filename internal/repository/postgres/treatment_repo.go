package postgres

import (
	"context"
	"errors"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/repository"

	"gorm.io/gorm"
)

// gormTreatmentRepository implements repository.TreatmentRepository on Postgres.
type gormTreatmentRepository struct {
	db *gorm.DB
}

// NewTreatmentRepository creates a new instance of gormTreatmentRepository.
func NewTreatmentRepository(db *gorm.DB) repository.TreatmentRepository {
	return &gormTreatmentRepository{db: db}
}

// AssignTreatment writes one assignment episode atomically: the treatment row,
// every exercise link in submitted order, and the attended flip on the account.
// Any failure rolls the whole episode back, leaving no orphaned treatment rows.
func (r *gormTreatmentRepository) AssignTreatment(ctx context.Context, accountID uint, treatment *domain.Treatment, links []domain.TreatmentExercise) (uint, error) {
	if len(links) == 0 {
		return 0, errors.New("assignment requires at least one exercise link")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(treatment).Error; err != nil {
			return err
		}
		for i := range links {
			links[i].TreatmentID = treatment.ID
		}
		if err := tx.Create(&links).Error; err != nil {
			return err
		}

		res := tx.Model(&domain.Account{}).Where("id = ?", accountID).Update("attended", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return treatment.ID, nil
}

// GetLatestByNHS resolves the current treatment for a health identifier.
// Tie-break is strictly id DESC (creation order), never a timestamp.
func (r *gormTreatmentRepository) GetLatestByNHS(ctx context.Context, nhsNumber string) (*domain.Treatment, error) {
	var treatment domain.Treatment
	err := r.db.WithContext(ctx).
		Where("nhs_number = ?", nhsNumber).
		Order("id DESC").
		First(&treatment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &treatment, nil
}

// ListByNHS returns the append-only treatment history, newest first.
func (r *gormTreatmentRepository) ListByNHS(ctx context.Context, nhsNumber string) ([]domain.Treatment, error) {
	var treatments []domain.Treatment
	err := r.db.WithContext(ctx).
		Where("nhs_number = ?", nhsNumber).
		Order("id DESC").
		Find(&treatments).Error
	if err != nil {
		return nil, err
	}
	return treatments, nil
}

// GetAssignedExercises joins the link rows to the catalog, ordered by the
// 1-based order_num recorded at assignment time.
func (r *gormTreatmentRepository) GetAssignedExercises(ctx context.Context, treatmentID uint) ([]domain.AssignedExercise, error) {
	var rows []domain.TreatmentExercise
	err := r.db.WithContext(ctx).
		Where("treatment_id = ?", treatmentID).
		Order("order_num").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ExerciseID)
	}
	var exercises []domain.Exercise
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&exercises).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]domain.Exercise, len(exercises))
	for _, ex := range exercises {
		byID[ex.ID] = ex
	}

	assigned := make([]domain.AssignedExercise, 0, len(rows))
	for _, row := range rows {
		p, err := row.DecodePrescription()
		if err != nil {
			return nil, err
		}
		assigned = append(assigned, domain.AssignedExercise{
			Exercise:     byID[row.ExerciseID],
			OrderNum:     row.OrderNum,
			Prescription: p,
		})
	}
	return assigned, nil
}
