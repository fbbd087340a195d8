package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"agriqcert/internal/verification/models"
)

const defaultActivityKey = "agriqcert:verification:activity"

// RedisStore keeps the activity log in a capped Redis list, newest at the head.
type RedisStore struct {
	client   redis.Cmdable
	key      string
	capacity int64
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, key: defaultActivityKey, capacity: models.ActivityCapacity}
}

// Append pushes a and trims the list in one MULTI/EXEC.
func (s *RedisStore) Append(ctx context.Context, a models.Activity) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key, payload)
		pipe.LTrim(ctx, s.key, 0, s.capacity-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		return []models.Activity{}, nil
	}
	rows, err := s.client.LRange(ctx, s.key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read activity: %w", err)
	}
	out := make([]models.Activity, 0, len(rows))
	for _, row := range rows {
		var a models.Activity
		if err := json.Unmarshal([]byte(row), &a); err != nil {
			return nil, fmt.Errorf("decode activity: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}
