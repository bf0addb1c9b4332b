package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
	"github.com/ambikamber/ambikamber.com/internal/port"
)

const (
	sessionKeyPrefix  = "session:"
	defaultSessionTTL = 7 * 24 * time.Hour
	defaultLockTTL    = 30 * time.Second
)

var ErrNoSessionID = errors.New("no session id in context")

// releaseLockScript deletes the lock only while it still holds our token,
// so an expired lock taken over by another commit is left alone.
var releaseLockScript = redis.NewScript(`
local key = KEYS[1]
local token = ARGV[1]

if redis.call('GET', key) == token then
	return redis.call('DEL', key)
end

return 0
`)

// RedisAdapter serves gateway sessions, keyed by the session id carried in
// the request context, and per-entity commit locks.
type RedisAdapter struct {
	client     *redis.Client
	sessionTTL time.Duration
	lockTTL    time.Duration
}

func NewRedisAdapter(client *redis.Client, sessionTTL, lockTTL time.Duration) *RedisAdapter {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &RedisAdapter{
		client:     client,
		sessionTTL: sessionTTL,
		lockTTL:    lockTTL,
	}
}

func (r *RedisAdapter) Load(ctx context.Context) (*domain.Session, error) {
	id := port.SessionIDFrom(ctx)
	if id == "" {
		return nil, nil
	}

	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (r *RedisAdapter) Save(ctx context.Context, s domain.Session) error {
	id := port.SessionIDFrom(ctx)
	if id == "" {
		return ErrNoSessionID
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.client.Set(ctx, sessionKeyPrefix+id, data, r.sessionTTL).Err()
}

func (r *RedisAdapter) Clear(ctx context.Context) error {
	id := port.SessionIDFrom(ctx)
	if id == "" {
		return nil
	}
	return r.client.Del(ctx, sessionKeyPrefix+id).Err()
}

func (r *RedisAdapter) AcquireCommitLock(ctx context.Context, key string) (string, bool, error) {
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, r.lockTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *RedisAdapter) ReleaseCommitLock(ctx context.Context, key, token string) error {
	if err := releaseLockScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}

var (
	_ port.SessionStore   = (*RedisAdapter)(nil)
	_ port.LockRepository = (*RedisAdapter)(nil)
)
