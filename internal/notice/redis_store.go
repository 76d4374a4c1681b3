package notice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"physiohub/clinic-app/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Unread notices that are never taken expire eventually.
const noticeTTL = 24 * time.Hour

// redisStore keeps per-account notice queues in redis lists, surviving
// process restarts and shared across replicas.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a redis-backed notice store and verifies the
// connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &redisStore{client: client}, nil
}

func noticeKey(accountID uint) string {
	return fmt.Sprintf("notices:%d", accountID)
}

func (s *redisStore) Push(ctx context.Context, accountID uint, notice domain.Notice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	key := noticeKey(accountID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, noticeTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// Take reads and deletes the queue atomically so concurrent takers cannot
// both observe the same notice.
func (s *redisStore) Take(ctx context.Context, accountID uint) ([]domain.Notice, error) {
	key := noticeKey(accountID)

	pipe := s.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	raw := rangeCmd.Val()
	if len(raw) == 0 {
		return nil, nil
	}
	notices := make([]domain.Notice, 0, len(raw))
	for _, item := range raw {
		var n domain.Notice
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, nil
}
