package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ishemalink/internal/auth/models"
	"ishemalink/pkg/platform/sentinel"
)

const sessionKeyPrefix = "session:"

// RedisStore stores each session as JSON under session:<key> with a TTL equal
// to its remaining lifetime, so Redis expires it without a sweeper.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired: %w", sentinel.ErrInvalidState)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	created, err := s.client.SetNX(ctx, sessionKeyPrefix+session.Key, payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !created {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *RedisStore) FindByKey(ctx context.Context, key string, now time.Time) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.IsExpired(now) {
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Touch updates LastSeenAt under WATCH so a concurrent logout is not undone.
// The remaining TTL is preserved. Returns redis.TxFailedErr on conflict.
func (s *RedisStore) Touch(ctx context.Context, key string, seenAt time.Time) error {
	redisKey := sessionKeyPrefix + key
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, redisKey).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return err
		}
		var session models.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			return fmt.Errorf("decode session: %w", err)
		}
		if !seenAt.After(session.LastSeenAt) {
			return nil
		}
		session.LastSeenAt = seenAt
		payload, err := json.Marshal(&session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKey, payload, redis.KeepTTL)
			return nil
		})
		return err
	}, redisKey)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, sessionKeyPrefix+key).Err()
}
