package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avaluos-co/service-quote/internal/common/domain"
	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "quote:session:"
	maxMutateRetries = 10
)

// RedisSessionRepository stores sessions as JSON snapshots in Redis so that
// every API replica and route worker sees the same state.
type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionRepository creates a Redis-backed session store.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, ttl: ttl}
}

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

// Create stores a new session.
func (r *RedisSessionRepository) Create(ctx context.Context, s *quoteDomain.Session) error {
	payload, err := json.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ok, err := r.client.SetNX(ctx, sessionKey(s.ID()), payload, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if !ok {
		return domain.NewConflictError("session already exists")
	}
	return nil
}

// FindByID retrieves a session by ID.
func (r *RedisSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*quoteDomain.Session, error) {
	return r.load(ctx, r.client, id)
}

// Mutate runs fn inside an optimistic WATCH/MULTI transaction, retrying when
// another writer changed the session in between.
func (r *RedisSessionRepository) Mutate(ctx context.Context, id uuid.UUID, fn func(*quoteDomain.Session) error) (*quoteDomain.Session, error) {
	key := sessionKey(id)
	var result *quoteDomain.Session

	txf := func(tx *redis.Tx) error {
		s, err := r.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		s.IncrementVersion()

		payload, err := json.Marshal(s.Snapshot())
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = s
		return nil
	}

	for i := 0; i < maxMutateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, domain.NewConflictError("session is being modified concurrently")
}

func (r *RedisSessionRepository) load(ctx context.Context, c stringGetter, id uuid.UUID) (*quoteDomain.Session, error) {
	raw, err := c.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.NewNotFoundError("Session", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var snap quoteDomain.SessionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return quoteDomain.ReconstructSession(snap), nil
}
