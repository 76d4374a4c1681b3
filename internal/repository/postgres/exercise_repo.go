package postgres

import (
	"context"
	"errors"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/repository"

	"gorm.io/gorm"
)

// gormExerciseRepository implements repository.ExerciseRepository on Postgres.
type gormExerciseRepository struct {
	db *gorm.DB
}

// NewExerciseRepository creates a new instance of gormExerciseRepository.
func NewExerciseRepository(db *gorm.DB) repository.ExerciseRepository {
	return &gormExerciseRepository{db: db}
}

// GetByID retrieves a single catalog exercise.
func (r *gormExerciseRepository) GetByID(ctx context.Context, id uint) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.db.WithContext(ctx).First(&exercise, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// List returns the whole catalog ordered by name, as shown on the therapist
// assignment page.
func (r *gormExerciseRepository) List(ctx context.Context) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	err := r.db.WithContext(ctx).Order("name").Find(&exercises).Error
	if err != nil {
		return nil, err
	}
	return exercises, nil
}

// Count returns the number of catalog rows (used to decide whether to seed).
func (r *gormExerciseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Exercise{}).Count(&count).Error
	return count, err
}

// CreateBatch inserts a set of catalog exercises in one statement.
func (r *gormExerciseRepository) CreateBatch(ctx context.Context, exercises []domain.Exercise) error {
	if len(exercises) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&exercises).Error
}
