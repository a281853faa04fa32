package cart

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore holds an authenticated account's cart in the hash
// cart_<user_id>, field = sku id, value = quantity. Durable across
// devices and sessions.
type RedisStore struct {
	client *redis.Client
	userID int64
}

func NewRedisStore(client *redis.Client, userID int64) *RedisStore {
	return &RedisStore{client: client, userID: userID}
}

func (s *RedisStore) key() string {
	return fmt.Sprintf("cart_%d", s.userID)
}

func (s *RedisStore) Get(ctx context.Context, skuID int64) (int64, bool, error) {

	val, err := s.client.HGet(ctx, s.key(), strconv.FormatInt(skuID, 10)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, fmt.Errorf("failed to read cart entry: %w", err)
	}

	quantity, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("quantity for sku %d: %w", skuID, ErrCorruptEntry)
	}

	return quantity, true, nil
}

func (s *RedisStore) Set(ctx context.Context, skuID int64, quantity int64) error {

	if err := s.client.HSet(ctx, s.key(), strconv.FormatInt(skuID, 10), quantity).Err(); err != nil {
		return fmt.Errorf("failed to store cart entry: %w", err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, skuID int64) error {

	// HDEL on a missing field is a no-op, which matches the contract.
	if err := s.client.HDel(ctx, s.key(), strconv.FormatInt(skuID, 10)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart entry: %w", err)
	}

	return nil
}

func (s *RedisStore) Snapshot(ctx context.Context) (map[int64]int64, error) {

	raw, err := s.client.HGetAll(ctx, s.key()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot cart: %w", err)
	}

	entries := make(map[int64]int64, len(raw))

	for field, val := range raw {
		skuID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, ErrCorruptEntry)
		}

		quantity, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("quantity for sku %d: %w", skuID, ErrCorruptEntry)
		}

		entries[skuID] = quantity
	}

	return entries, nil
}

func (s *RedisStore) Clear(ctx context.Context, skuIDs []int64) error {

	if len(skuIDs) == 0 {
		return nil
	}

	fields := make([]string, 0, len(skuIDs))
	for _, skuID := range skuIDs {
		fields = append(fields, strconv.FormatInt(skuID, 10))
	}

	if err := s.client.HDel(ctx, s.key(), fields...).Err(); err != nil {
		return fmt.Errorf("failed to clear cart entries: %w", err)
	}

	return nil
}

func (s *RedisStore) TotalCount(ctx context.Context) (int64, error) {

	entries, err := s.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, quantity := range entries {
		total += quantity
	}

	return total, nil
}
