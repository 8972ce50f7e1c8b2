package cache

import (
	"context"
	"sync"
	"time"

	"storefront-console/internal/domain"
	"storefront-console/pkg/cache"

	gocache "github.com/patrickmn/go-cache"
)

// memoryCache backs catalog lookups and cached users.
type memoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a new in-memory cache service
// defaultExpiration: default TTL for items
// cleanupInterval: how often to scan for expired items
func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration) cache.CacheService {
	return &memoryCache{
		store: gocache.New(defaultExpiration, cleanupInterval),
	}
}

func (c *memoryCache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *memoryCache) Set(key string, value interface{}, duration time.Duration) {
	c.store.Set(key, value, duration)
}

func (c *memoryCache) Delete(key string) {
	c.store.Delete(key)
}

func (c *memoryCache) Flush() {
	c.store.Flush()
}

// memoryDraftStore keeps drafts in process. Entries expire ttl after their
// last save. Stored values are private clones so callers never share state.
type memoryDraftStore struct {
	cache memoryCache
	ttl   time.Duration

	mu    sync.Mutex
	locks map[string]*draftLock
}

type draftLock struct {
	mu   sync.Mutex
	refs int
}

func NewMemoryDraftStore(ttl time.Duration) domain.DraftRepository {
	return &memoryDraftStore{
		cache: memoryCache{store: gocache.New(ttl, ttl/2+time.Minute)},
		ttl:   ttl,
		locks: make(map[string]*draftLock),
	}
}

func draftKey(id string) string {
	return "draft:" + id
}

func (s *memoryDraftStore) Get(ctx context.Context, id string) (*domain.ProductDraft, error) {
	v, ok := s.cache.Get(draftKey(id))
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v.(*domain.ProductDraft).Clone(), nil
}

func (s *memoryDraftStore) Save(ctx context.Context, draft *domain.ProductDraft) error {
	s.cache.Set(draftKey(draft.ID), draft.Clone(), s.ttl)
	return nil
}

func (s *memoryDraftStore) Delete(ctx context.Context, id string) error {
	s.cache.Delete(draftKey(id))
	return nil
}

// Lock holds a per-draft mutex. Entries are dropped once nobody waits on them.
func (s *memoryDraftStore) Lock(ctx context.Context, id string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &draftLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}, nil
}
