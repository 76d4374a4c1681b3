package notice

import (
	"context"
	"sync"

	"physiohub/clinic-app/internal/domain"
)

// memoryStore is an in-process notice queue for single-instance deployments
// without redis, and for tests.
type memoryStore struct {
	mu     sync.Mutex
	queues map[uint][]domain.Notice
}

// NewMemoryStore creates an in-memory notice store.
func NewMemoryStore() Store {
	return &memoryStore{queues: make(map[uint][]domain.Notice)}
}

func (s *memoryStore) Push(_ context.Context, accountID uint, notice domain.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[accountID] = append(s.queues[accountID], notice)
	return nil
}

func (s *memoryStore) Take(_ context.Context, accountID uint) ([]domain.Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notices := s.queues[accountID]
	delete(s.queues, accountID)
	return notices, nil
}
