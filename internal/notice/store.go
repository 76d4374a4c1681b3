package notice

import (
	"context"

	"physiohub/clinic-app/internal/domain"
)

// Store is the one-shot flash notice queue. Push appends for an account; Take
// returns everything queued and clears it in one step, so every notice is
// seen exactly once.
type Store interface {
	Push(ctx context.Context, accountID uint, notice domain.Notice) error
	Take(ctx context.Context, accountID uint) ([]domain.Notice, error)
}
