package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// Session is the server-side record behind a session cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore persists sessions. Lookup returns core.ErrNotAuthenticated
// for unknown or expired sessions.
type SessionStore interface {
	Create(ctx context.Context, s Session) error
	Lookup(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// MemorySessions keeps sessions in a process-local LRU cache.
type MemorySessions struct {
	cache *cache.LRUCache[Session]
}

// NewMemorySessions creates a store holding at most maxSessions entries.
func NewMemorySessions(maxSessions int, ttl time.Duration) *MemorySessions {
	return &MemorySessions{cache: cache.NewLRUCache[Session](maxSessions, ttl)}
}

// Cache exposes the backing cache so it can be registered for cleanup.
func (m *MemorySessions) Cache() *cache.LRUCache[Session] {
	return m.cache
}

func (m *MemorySessions) Create(_ context.Context, s Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", s.ID)
	}
	m.cache.SetWithTTL(s.ID, s, ttl)
	return nil
}

func (m *MemorySessions) Lookup(_ context.Context, id string) (Session, error) {
	s, ok := m.cache.Get(id)
	if !ok {
		return Session{}, core.ErrNotAuthenticated
	}
	return s, nil
}

func (m *MemorySessions) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}

const redisKeyPrefix = "fintrack:session:"

// RedisSessions stores sessions as JSON values with a Redis TTL so they are
// shared between instances.
type RedisSessions struct {
	client *redis.Client
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

// NewRedisClient builds a client from connection settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (r *RedisSessions) Create(ctx context.Context, s Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", s.ID)
	}
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+s.ID, body, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Lookup treats Redis outages like a miss, so users are asked to log in
// again instead of seeing errors.
func (r *RedisSessions) Lookup(ctx context.Context, id string) (Session, error) {
	body, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, core.ErrNotAuthenticated
	}
	if err != nil {
		slog.WarnContext(ctx, "Session lookup failed", "component", "sessions", "error", err)
		return Session{}, core.ErrNotAuthenticated
	}

	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		slog.WarnContext(ctx, "Discarding malformed session", "component", "sessions", "error", err)
		return Session{}, core.ErrNotAuthenticated
	}
	return s, nil
}

func (r *RedisSessions) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (r *RedisSessions) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisSessions) Close() error {
	return r.client.Close()
}
