package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-console/internal/domain"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// lockLease bounds how long a crashed holder can block a draft.
	lockLease     = 10 * time.Second
	lockRetryWait = 25 * time.Millisecond
)

// releaseLock deletes the lease only if it still carries our token.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// redisDraftStore shares drafts between console instances.
type redisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		DB:              db,
		PoolSize:        10,
		MinIdleConns:    2,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
	})
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) domain.DraftRepository {
	return &redisDraftStore{client: client, ttl: ttl}
}

func (s *redisDraftStore) Get(ctx context.Context, id string) (*domain.ProductDraft, error) {
	raw, err := s.client.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get draft: %w", err)
	}

	var d domain.ProductDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return &d, nil
}

func (s *redisDraftStore) Save(ctx context.Context, draft *domain.ProductDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", draft.ID, err)
	}
	if err := s.client.Set(ctx, draftKey(draft.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft: %w", err)
	}
	return nil
}

func (s *redisDraftStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del draft: %w", err)
	}
	return nil
}

func draftLockKey(id string) string {
	return "draft-lock:" + id
}

// Lock takes a SetNX lease on the draft, polling until it is free or ctx ends.
func (s *redisDraftStore) Lock(ctx context.Context, id string) (func(), error) {
	key := draftLockKey(id)
	token := uuid.NewString()

	for {
		ok, err := s.client.SetNX(ctx, key, token, lockLease).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock draft: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock draft %s: %w", id, ctx.Err())
		case <-time.After(lockRetryWait):
		}
	}

	return func() {
		// Release even when the caller's context is already cancelled.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()
		_ = releaseLock.Run(rctx, s.client, []string{key}, token).Err()
	}, nil
}
