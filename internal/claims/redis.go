// ABOUTME: Redis-backed claim store with per-key TTL.
// ABOUTME: Claims are stored as JSON under claim:<operator_id> and expire server-side.

package claims

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const claimKeyPrefix = "claim:"

// RedisStore implements Store on a Redis backend. Redis expires entries
// server-side, which lets multiple bot processes share the routing table.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a claim store on the given Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func claimKey(operatorID int64) string {
	return claimKeyPrefix + strconv.FormatInt(operatorID, 10)
}

// Put writes the claim with the given TTL, overwriting any prior claim for
// the same operator.
func (s *RedisStore) Put(ctx context.Context, claim *Claim, ttl time.Duration) error {
	data, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("marshaling claim: %w", err)
	}

	if err := s.rdb.Set(ctx, claimKey(claim.OperatorID), data, ttl).Err(); err != nil {
		return fmt.Errorf("storing claim: %w", err)
	}
	return nil
}

// Take reads and deletes the operator's claim. Returns nil without error
// when no claim exists. The delete is issued on every path that found a
// value, so a claim never routes twice.
func (s *RedisStore) Take(ctx context.Context, operatorID int64) (*Claim, error) {
	key := claimKey(operatorID)

	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading claim: %w", err)
	}

	// Delete before unmarshal: even a corrupt entry must not be consumable twice.
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("deleting claim: %w", err)
	}

	var claim Claim
	if err := json.Unmarshal(data, &claim); err != nil {
		return nil, fmt.Errorf("unmarshaling claim: %w", err)
	}
	return &claim, nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
