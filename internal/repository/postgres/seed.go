package postgres

import (
	"context"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/repository"
)

// defaultCatalog is the starter exercise library: each entry names an
// illustration template and whether the exercise runs against a timer.
var defaultCatalog = []domain.Exercise{
	{Name: "Ankle Pumps", Description: "Lie on your back and flex both feet up and down from the ankle.", IllustrationRef: "ankle_pumps", Timer: true},
	{Name: "Heel Slides", Description: "Slide your heel towards your buttocks, bending the knee, then straighten.", IllustrationRef: "heel_slides"},
	{Name: "Quad Sets", Description: "Tighten the muscle on top of the thigh, pressing the knee down.", IllustrationRef: "quad_sets", Timer: true},
	{Name: "Straight Leg Raise", Description: "Keeping the knee straight, lift the leg to the height of the opposite bent knee.", IllustrationRef: "straight_leg_raise"},
	{Name: "Shoulder Pendulum", Description: "Lean forward, let the arm hang, and swing it in small circles.", IllustrationRef: "shoulder_pendulum", Timer: true},
	{Name: "Wall Slides", Description: "Stand with your back to a wall and slide the arms upward, keeping contact.", IllustrationRef: "wall_slides"},
	{Name: "Bridging", Description: "Lie on your back with knees bent and lift the hips off the floor.", IllustrationRef: "bridging"},
	{Name: "Neck Rotations", Description: "Slowly turn the head to each side, holding briefly at the end of range.", IllustrationRef: "neck_rotations", Timer: true},
}

// SeedExercises populates the catalog on first run. An already-populated
// catalog is left untouched.
func SeedExercises(ctx context.Context, repo repository.ExerciseRepository) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return repo.CreateBatch(ctx, defaultCatalog)
}
