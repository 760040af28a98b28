// Package pending stages the single not-yet-confirmed mutation of a
// conversation in Redis. Keeping it out of process memory means a restart
// between staging and confirmation cannot resurrect or corrupt a stale
// intent, and the key TTL retires forgotten mutations on its own.
package pending

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/familychurch/eventbot/types"
)

const (
	pendingKeyPrefix = "pending:"
	updateKeyPrefix  = "update:"

	// How long a processed webhook update id is remembered for dedup.
	updateMarkTTL = 10 * time.Minute
)

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Stage replaces the conversation's pending action wholesale and restarts
// the expiry clock. There is never more than one staged action per chat.
func (s *Store) Stage(ctx context.Context, chatID int64, action types.PendingAction) error {
	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshal pending action: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(chatID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("stage pending action: %w", err)
	}
	return nil
}

// Get returns the staged action for a chat, or nil when none exists or it
// has expired.
func (s *Store) Get(ctx context.Context, chatID int64) (*types.PendingAction, error) {
	val, err := s.rdb.Get(ctx, s.key(chatID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending action: %w", err)
	}

	var action types.PendingAction
	if err := json.Unmarshal([]byte(val), &action); err != nil {
		return nil, fmt.Errorf("unmarshal pending action: %w", err)
	}
	return &action, nil
}

// Clear discards the staged action, if any.
func (s *Store) Clear(ctx context.Context, chatID int64) error {
	if err := s.rdb.Del(ctx, s.key(chatID)).Err(); err != nil {
		return fmt.Errorf("clear pending action: %w", err)
	}
	return nil
}

// MarkUpdate records a webhook update id and reports whether it was seen
// for the first time. Transport redeliveries of an already-processed update
// are acknowledged without being re-run.
func (s *Store) MarkUpdate(ctx context.Context, updateID int64) (bool, error) {
	first, err := s.rdb.SetNX(ctx, fmt.Sprintf("%s%d", updateKeyPrefix, updateID), 1, updateMarkTTL).Result()
	if err != nil {
		return false, fmt.Errorf("mark update: %w", err)
	}
	return first, nil
}

func (s *Store) key(chatID int64) string {
	return fmt.Sprintf("%s%d", pendingKeyPrefix, chatID)
}
