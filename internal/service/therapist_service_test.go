package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"physiohub/clinic-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type therapistFixture struct {
	accounts   *fakeAccountRepo
	treatments *fakeTreatmentRepo
	exercises  *fakeExerciseRepo
	notifier   *fakeNotifier
	svc        TherapistService
	patient    *domain.Account
}

func newTherapistFixture(t *testing.T, notifierErr error) *therapistFixture {
	t.Helper()
	accounts := newFakeAccountRepo()
	exercises := newFakeExerciseRepo()
	treatments := newFakeTreatmentRepo(accounts, exercises)
	notifier := newFakeNotifier(notifierErr)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	illness := "lower back pain"
	patient := accounts.mustAdd(domain.Account{
		Username:  "sandro_verrone",
		Role:      domain.RolePatient,
		NHSNumber: "943-476-5919",
		Name:      "Sandro",
		Surname:   "Verrone",
		Illness:   &illness,
	})
	exercises.mustAdd(domain.Exercise{ID: 1, Name: "Ankle Pumps"})
	exercises.mustAdd(domain.Exercise{ID: 2, Name: "Heel Slides"})
	exercises.mustAdd(domain.Exercise{ID: 3, Name: "Bridging"})

	return &therapistFixture{
		accounts:   accounts,
		treatments: treatments,
		exercises:  exercises,
		notifier:   notifier,
		svc:        NewTherapistService(accounts, treatments, exercises, notifier, logger),
		patient:    patient,
	}
}

func (f *therapistFixture) awaitNotification(t *testing.T) uint {
	t.Helper()
	select {
	case accountID := <-f.notifier.calls:
		return accountID
	case <-time.After(2 * time.Second):
		t.Fatal("expected a confirmation notification")
		return 0
	}
}

func TestAssignExercisesEmptySelection(t *testing.T) {
	f := newTherapistFixture(t, nil)

	_, err := f.svc.AssignExercises(context.Background(), f.patient.ID, nil)
	assert.ErrorIs(t, err, ErrEmptySelection)

	// No treatment row and the attended flag untouched.
	assert.Empty(t, f.treatments.treatments)
	account, _ := f.accounts.GetByID(context.Background(), f.patient.ID)
	assert.False(t, account.Attended)
}

func TestAssignExercisesInvalidPrescriptionWritesNothing(t *testing.T) {
	f := newTherapistFixture(t, nil)

	_, err := f.svc.AssignExercises(context.Background(), f.patient.ID, []PrescriptionInput{
		{ExerciseID: 1, Duration: 10, Reps: 3, PerWeek: 2},
		{ExerciseID: 2, Duration: -1, Reps: 3, PerWeek: 2},
	})
	require.ErrorIs(t, err, ErrInvalidPrescription)
	// The failing exercise is named so the therapist can fix the form.
	assert.Contains(t, err.Error(), "Heel Slides")

	// The batch is validated before any write: zero treatments, zero links,
	// no orphaned rows.
	assert.Empty(t, f.treatments.treatments)
	assert.Empty(t, f.treatments.links)
	account, _ := f.accounts.GetByID(context.Background(), f.patient.ID)
	assert.False(t, account.Attended)
}

func TestAssignExercisesUnknownExercise(t *testing.T) {
	f := newTherapistFixture(t, nil)

	_, err := f.svc.AssignExercises(context.Background(), f.patient.ID, []PrescriptionInput{
		{ExerciseID: 99, Duration: 10, Reps: 3, PerWeek: 2},
	})
	assert.ErrorIs(t, err, ErrInvalidPrescription)
	assert.Empty(t, f.treatments.treatments)
}

func TestAssignExercisesSuccess(t *testing.T) {
	f := newTherapistFixture(t, nil)

	treatment, err := f.svc.AssignExercises(context.Background(), f.patient.ID, []PrescriptionInput{
		{ExerciseID: 3, Duration: 10, Reps: 3, PerWeek: 2},
		{ExerciseID: 1, Duration: 20, Reps: 5, PerWeek: 3},
		{ExerciseID: 2, Duration: 15, Reps: 4, PerWeek: 1},
	})
	require.NoError(t, err)
	require.NotZero(t, treatment.ID)
	assert.Equal(t, f.patient.NHSNumber, treatment.NHSNumber)

	// Attended flipped inside the same write.
	account, _ := f.accounts.GetByID(context.Background(), f.patient.ID)
	assert.True(t, account.Attended)

	// Links keep 1-based submission order, not catalog order.
	assigned, err := f.treatments.GetAssignedExercises(context.Background(), treatment.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 3)
	assert.Equal(t, []uint{3, 1, 2}, []uint{assigned[0].Exercise.ID, assigned[1].Exercise.ID, assigned[2].Exercise.ID})
	for i, ex := range assigned {
		assert.Equal(t, i+1, ex.OrderNum)
	}
	assert.Equal(t, domain.Prescription{Duration: 20, Reps: 5, PerWeek: 3}, assigned[1].Prescription)

	// Confirmation fired for the patient.
	assert.Equal(t, f.patient.ID, f.awaitNotification(t))
}

func TestAssignExercisesSameExerciseTwice(t *testing.T) {
	f := newTherapistFixture(t, nil)

	// One exercise at two positions with different dosages is a valid batch.
	treatment, err := f.svc.AssignExercises(context.Background(), f.patient.ID, []PrescriptionInput{
		{ExerciseID: 1, Duration: 10, Reps: 3, PerWeek: 2},
		{ExerciseID: 2, Duration: 15, Reps: 4, PerWeek: 1},
		{ExerciseID: 1, Duration: 20, Reps: 5, PerWeek: 3},
	})
	require.NoError(t, err)

	assigned, err := f.treatments.GetAssignedExercises(context.Background(), treatment.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 3)
	assert.Equal(t, []uint{1, 2, 1}, []uint{assigned[0].Exercise.ID, assigned[1].Exercise.ID, assigned[2].Exercise.ID})
	assert.Equal(t, domain.Prescription{Duration: 10, Reps: 3, PerWeek: 2}, assigned[0].Prescription)
	assert.Equal(t, domain.Prescription{Duration: 20, Reps: 5, PerWeek: 3}, assigned[2].Prescription)
	f.awaitNotification(t)
}

func TestAssignExercisesEpisodesRestartNumbering(t *testing.T) {
	f := newTherapistFixture(t, nil)

	// Every episode numbers its links from 1; a later episode reusing the
	// same positions must not collide with an earlier one.
	first, err := f.svc.AssignExercises(context.Background(), f.patient.ID, []PrescriptionInput{
		{ExerciseID: 1, Duration: 10, Reps: 3, PerWeek: 2},
		{ExerciseID: 2, Duration: 15, Reps: 4, PerWeek: 1},
	})
	require.NoError(t, err)
	second, err := f.svc.AssignExercises(context.Background(), f.patient.ID, []PrescriptionInput{
		{ExerciseID: 3, Duration: 12, Reps: 2, PerWeek: 2},
		{ExerciseID: 1, Duration: 8, Reps: 6, PerWeek: 4},
	})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	for _, treatmentID := range []uint{first.ID, second.ID} {
		assigned, err := f.treatments.GetAssignedExercises(context.Background(), treatmentID)
		require.NoError(t, err)
		require.Len(t, assigned, 2)
		assert.Equal(t, 1, assigned[0].OrderNum)
		assert.Equal(t, 2, assigned[1].OrderNum)
	}
}

func TestAssignExercisesNotificationFailureDoesNotFailAssignment(t *testing.T) {
	f := newTherapistFixture(t, errors.New("smtp unreachable"))

	treatment, err := f.svc.AssignExercises(context.Background(), f.patient.ID, []PrescriptionInput{
		{ExerciseID: 1, Duration: 10, Reps: 3, PerWeek: 2},
	})
	require.NoError(t, err)
	assert.NotZero(t, treatment.ID)
	f.awaitNotification(t)

	account, _ := f.accounts.GetByID(context.Background(), f.patient.ID)
	assert.True(t, account.Attended)
}

func TestAssignExercisesRejectsNonPatients(t *testing.T) {
	f := newTherapistFixture(t, nil)
	therapist := f.accounts.mustAdd(domain.Account{
		Username:  "dave_rowland",
		Role:      domain.RoleTherapist,
		NHSNumber: "000-000-0001",
	})

	_, err := f.svc.AssignExercises(context.Background(), therapist.ID, []PrescriptionInput{
		{ExerciseID: 1, Duration: 10, Reps: 3, PerWeek: 2},
	})
	assert.ErrorIs(t, err, ErrNotAPatient)

	_, err = f.svc.AssignExercises(context.Background(), 9999, []PrescriptionInput{
		{ExerciseID: 1, Duration: 10, Reps: 3, PerWeek: 2},
	})
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestSearchPatients(t *testing.T) {
	f := newTherapistFixture(t, nil)
	back := "back pain"
	f.accounts.mustAdd(domain.Account{
		Username: "jane_doe", Role: domain.RolePatient, NHSNumber: "111-111-1111",
		Name: "Jane", Surname: "Doe", Illness: &back,
	})
	f.accounts.mustAdd(domain.Account{
		Username: "dave_rowland", Role: domain.RoleTherapist, NHSNumber: "222-222-2222",
		Name: "Dave", Surname: "Rowland",
	})

	results, err := f.svc.SearchPatients(context.Background(), "doe")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "jane_doe", results[0].Username)
	assert.Empty(t, results[0].PasswordHash)

	// Therapists never appear in patient search, even on a match.
	results, err = f.svc.SearchPatients(context.Background(), "rowland")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetPatientDetail(t *testing.T) {
	f := newTherapistFixture(t, nil)

	_, err := f.svc.AssignExercises(context.Background(), f.patient.ID, []PrescriptionInput{
		{ExerciseID: 1, Duration: 10, Reps: 3, PerWeek: 2},
	})
	require.NoError(t, err)
	_, err = f.svc.AssignExercises(context.Background(), f.patient.ID, []PrescriptionInput{
		{ExerciseID: 2, Duration: 12, Reps: 2, PerWeek: 2},
	})
	require.NoError(t, err)

	detail, err := f.svc.GetPatientDetail(context.Background(), f.patient.ID)
	require.NoError(t, err)
	assert.Equal(t, f.patient.ID, detail.Patient.ID)
	assert.Len(t, detail.Catalog, 3)
	// History newest first.
	require.Len(t, detail.History, 2)
	assert.Greater(t, detail.History[0].ID, detail.History[1].ID)
}
