package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ishemalink/internal/otp/models"
)

// verifyScript compares and deletes in one step so a code verifies exactly
// once under concurrent requests.
//
// KEYS[1] challenge, KEYS[2] failure counter; ARGV[1] code, ARGV[2] max attempts.
// Returns 1 matched, 0 mismatch, -1 locked.
var verifyScript = redis.NewScript(`
local stored = redis.call("GET", KEYS[1])
if not stored then
  return 0
end
local max = tonumber(ARGV[2])
if max > 0 then
  local failures = tonumber(redis.call("GET", KEYS[2]) or "0")
  if failures >= max then
    return -1
  end
end
if stored == ARGV[1] then
  redis.call("DEL", KEYS[1], KEYS[2])
  return 1
end
if max > 0 then
  redis.call("INCR", KEYS[2])
  local ttl = redis.call("PTTL", KEYS[1])
  if ttl > 0 then
    redis.call("PEXPIRE", KEYS[2], ttl)
  end
end
return 0
`)

// Redis stores challenges with a TTL so expiry needs no sweeper.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Put(ctx context.Context, key, code string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, code, ttl)
		pipe.Del(ctx, failuresKey(key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("store otp challenge: %w", err)
	}
	return nil
}

func (s *Redis) Verify(ctx context.Context, key, code string, maxAttempts int) (models.Outcome, error) {
	res, err := verifyScript.Run(ctx, s.client, []string{key, failuresKey(key)}, code, maxAttempts).Int()
	if err != nil {
		return models.Mismatch, fmt.Errorf("verify otp challenge: %w", err)
	}
	switch res {
	case 1:
		return models.Matched, nil
	case -1:
		return models.Locked, nil
	default:
		return models.Mismatch, nil
	}
}

func failuresKey(challengeKey string) string {
	return challengeKey + ":failures"
}
