package carts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"marketplace-delivery/internal/models"

	"github.com/redis/go-redis/v9"
)

// StoreInterface is the durable keyed session store for in-flight carts.
type StoreInterface interface {
	Save(ctx context.Context, cart *models.CartSession) error
	Find(ctx context.Context, sessionID string) (*models.CartSession, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore keeps cart sessions as JSON blobs under cart:{sessionID}
// with a TTL, replacing the ad-hoc client-side session blobs the
// workflow state used to live in.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a store over the given client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func cartKey(sessionID string) string { return "cart:" + sessionID }

func (s *RedisStore) Save(ctx context.Context, cart *models.CartSession) error {
	b, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("store.Save marshal: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(cart.SessionID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("store.Save: %w", err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, sessionID string) (*models.CartSession, error) {
	b, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("store.Find: %w", err)
	}
	cart := &models.CartSession{}
	if err := json.Unmarshal(b, cart); err != nil {
		return nil, fmt.Errorf("store.Find unmarshal: %w", err)
	}
	return cart, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	n, err := s.client.Del(ctx, cartKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("store.Delete: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// MemoryStore is an in-process StoreInterface used in tests and local
// runs without Redis.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]*models.CartSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]*models.CartSession)}
}

func (m *MemoryStore) Save(_ context.Context, cart *models.CartSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cart
	m.carts[cart.SessionID] = &cp
	return nil
}

func (m *MemoryStore) Find(_ context.Context, sessionID string) (*models.CartSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *cart
	return &cp, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[sessionID]; !ok {
		return models.ErrNotFound
	}
	delete(m.carts, sessionID)
	return nil
}
