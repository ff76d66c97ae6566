package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"shoplike-service/internal/repository"
)

// RedisConfirmationStore keeps checkout confirmations in redis with a TTL,
// replacing the original same-device handoff with a server-issued record.
type RedisConfirmationStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisConfirmationStore(rdb *redis.Client) *RedisConfirmationStore {
	return &RedisConfirmationStore{rdb: rdb, ttl: 24 * time.Hour}
}

func confirmationKey(orderID int) string {
	return fmt.Sprintf("order-confirmation:%d", orderID)
}

func (s *RedisConfirmationStore) SaveConfirmation(ctx context.Context, confirmation *Confirmation) error {
	confirmationJSON, err := json.Marshal(confirmation)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, confirmationKey(confirmation.OrderID), confirmationJSON, s.ttl).Err()
}

func (s *RedisConfirmationStore) GetConfirmation(ctx context.Context, orderID int) (*Confirmation, error) {
	confirmationJSON, err := s.rdb.Get(ctx, confirmationKey(orderID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var confirmation Confirmation
	if err := json.Unmarshal([]byte(confirmationJSON), &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}
