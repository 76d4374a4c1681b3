package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"physiohub/clinic-app/internal/domain"
	"physiohub/clinic-app/internal/repository"
)

// --- Fake AccountRepository ---

type fakeAccountRepo struct {
	mu       sync.Mutex
	nextID   uint
	accounts map[uint]*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uint]*domain.Account)}
}

func (r *fakeAccountRepo) Create(_ context.Context, account *domain.Account) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Username == account.Username || existing.NHSNumber == account.NHSNumber {
			return 0, repository.ErrDuplicate
		}
	}
	r.nextID++
	account.ID = r.nextID
	clone := *account
	r.accounts[account.ID] = &clone
	return account.ID, nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id uint) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *account
	return &clone, nil
}

func (r *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Username == username {
			clone := *account
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepo) SetIllness(_ context.Context, id uint, illness string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.Illness = &illness
	account.Attended = false
	return nil
}

func (r *fakeAccountRepo) UpdateProfile(_ context.Context, id uint, update repository.ProfileUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return false, nil
	}
	changed := false
	if update.Name != nil {
		account.Name = *update.Name
		changed = true
	}
	if update.Surname != nil {
		account.Surname = *update.Surname
		changed = true
	}
	if update.Email != nil {
		account.Email = *update.Email
		changed = true
	}
	if update.ClearIllness {
		account.Illness = nil
		changed = true
	} else if update.Illness != nil {
		account.Illness = update.Illness
		changed = true
	}
	return changed, nil
}

func (r *fakeAccountRepo) Deactivate(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok || account.Role == domain.RoleDeactivated {
		return false, nil
	}
	account.Role = domain.RoleDeactivated
	return true, nil
}

func (r *fakeAccountRepo) SearchPatients(_ context.Context, query string) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Account
	q := strings.ToLower(query)
	for _, account := range r.accounts {
		if account.Role != domain.RolePatient {
			continue
		}
		illness := ""
		if account.Illness != nil {
			illness = *account.Illness
		}
		if q == "" ||
			strings.Contains(strings.ToLower(account.Name), q) ||
			strings.Contains(strings.ToLower(account.Surname), q) ||
			account.NHSNumber == query ||
			strings.Contains(strings.ToLower(illness), q) {
			out = append(out, *account)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAccountRepo) ListActive(_ context.Context) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Account
	for _, account := range r.accounts {
		if account.Role != domain.RoleDeactivated {
			out = append(out, *account)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// mustAdd seeds an account directly, bypassing Create's duplicate checks.
func (r *fakeAccountRepo) mustAdd(account domain.Account) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID == 0 {
		r.nextID++
		account.ID = r.nextID
	} else if account.ID > r.nextID {
		r.nextID = account.ID
	}
	r.accounts[account.ID] = &account
	return &account
}

// --- Fake ExerciseRepository ---

type fakeExerciseRepo struct {
	mu        sync.Mutex
	nextID    uint
	exercises map[uint]domain.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: make(map[uint]domain.Exercise)}
}

func (r *fakeExerciseRepo) GetByID(_ context.Context, id uint) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exercise, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &exercise, nil
}

func (r *fakeExerciseRepo) List(_ context.Context) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Exercise, 0, len(r.exercises))
	for _, exercise := range r.exercises {
		out = append(out, exercise)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeExerciseRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.exercises)), nil
}

func (r *fakeExerciseRepo) CreateBatch(_ context.Context, exercises []domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, exercise := range exercises {
		r.nextID++
		exercise.ID = r.nextID
		r.exercises[exercise.ID] = exercise
	}
	return nil
}

func (r *fakeExerciseRepo) mustAdd(exercise domain.Exercise) domain.Exercise {
	r.mu.Lock()
	defer r.mu.Unlock()
	if exercise.ID == 0 {
		r.nextID++
		exercise.ID = r.nextID
	} else if exercise.ID > r.nextID {
		r.nextID = exercise.ID
	}
	r.exercises[exercise.ID] = exercise
	return exercise
}

// --- Fake TreatmentRepository ---

type fakeTreatmentRepo struct {
	mu         sync.Mutex
	nextID     uint
	treatments []domain.Treatment
	links      map[uint][]domain.TreatmentExercise

	accounts  *fakeAccountRepo
	exercises *fakeExerciseRepo

	failAssign error // when set, AssignTreatment fails without writing
}

func newFakeTreatmentRepo(accounts *fakeAccountRepo, exercises *fakeExerciseRepo) *fakeTreatmentRepo {
	return &fakeTreatmentRepo{
		links:     make(map[uint][]domain.TreatmentExercise),
		accounts:  accounts,
		exercises: exercises,
	}
}

func (r *fakeTreatmentRepo) AssignTreatment(ctx context.Context, accountID uint, treatment *domain.Treatment, links []domain.TreatmentExercise) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAssign != nil {
		return 0, r.failAssign
	}
	if len(links) == 0 {
		return 0, errors.New("assignment requires at least one exercise link")
	}
	// Same key constraint as the real table: order_num unique per treatment,
	// repeated exercise ids allowed.
	seen := make(map[int]bool, len(links))
	for _, link := range links {
		if seen[link.OrderNum] {
			return 0, repository.ErrDuplicate
		}
		seen[link.OrderNum] = true
	}
	r.nextID++
	treatment.ID = r.nextID
	r.treatments = append(r.treatments, *treatment)
	stored := make([]domain.TreatmentExercise, len(links))
	copy(stored, links)
	for i := range stored {
		stored[i].TreatmentID = treatment.ID
	}
	r.links[treatment.ID] = stored

	r.accounts.mu.Lock()
	defer r.accounts.mu.Unlock()
	account, ok := r.accounts.accounts[accountID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	account.Attended = true
	return treatment.ID, nil
}

func (r *fakeTreatmentRepo) GetLatestByNHS(_ context.Context, nhsNumber string) (*domain.Treatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.Treatment
	for i := range r.treatments {
		t := r.treatments[i]
		if t.NHSNumber != nhsNumber {
			continue
		}
		if latest == nil || t.ID > latest.ID {
			latest = &r.treatments[i]
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	clone := *latest
	return &clone, nil
}

func (r *fakeTreatmentRepo) ListByNHS(_ context.Context, nhsNumber string) ([]domain.Treatment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Treatment
	for _, t := range r.treatments {
		if t.NHSNumber == nhsNumber {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeTreatmentRepo) GetAssignedExercises(_ context.Context, treatmentID uint) ([]domain.AssignedExercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.links[treatmentID]
	out := make([]domain.AssignedExercise, 0, len(rows))
	for _, row := range rows {
		p, err := row.DecodePrescription()
		if err != nil {
			return nil, err
		}
		r.exercises.mu.Lock()
		exercise := r.exercises.exercises[row.ExerciseID]
		r.exercises.mu.Unlock()
		out = append(out, domain.AssignedExercise{
			Exercise:     exercise,
			OrderNum:     row.OrderNum,
			Prescription: p,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNum < out[j].OrderNum })
	return out, nil
}

// --- Fake Notifier ---

type fakeNotifier struct {
	err   error
	calls chan uint
}

func newFakeNotifier(err error) *fakeNotifier {
	return &fakeNotifier{err: err, calls: make(chan uint, 8)}
}

func (n *fakeNotifier) SendConfirmation(_ context.Context, accountID uint) error {
	n.calls <- accountID
	return n.err
}
