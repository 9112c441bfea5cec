package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"conquest/game"
)

const (
	gameKeyPrefix = "conquest:game:"
	// Finished games linger for a week, then expire.
	defaultTTL = 7 * 24 * time.Hour
)

// Redis is a Store backed by a single Redis instance. Optimistic locking
// runs through WATCH/MULTI/EXEC so a concurrent writer aborts the
// transaction instead of clobbering it.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps an existing Redis client.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (s *Redis) Create(ctx context.Context, g *game.Game) error {
	g.Version = 1
	val, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(g.ID), val, s.ttl).Err()
}

func (s *Redis) Get(ctx context.Context, id string) (*game.Game, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var g game.Game
	if err := json.Unmarshal([]byte(val), &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Redis) Update(ctx context.Context, g *game.Game) error {
	key := s.key(g.ID)

	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var stored game.Game
		if err := json.Unmarshal([]byte(val), &stored); err != nil {
			return err
		}
		if stored.Version != g.Version {
			return ErrVersionConflict
		}

		g.Version++
		newVal, err := json.Marshal(g)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newVal, s.ttl)
			return nil
		})
		return err
	}, key)
}

func (s *Redis) Close() error {
	return s.client.Close()
}

func (s *Redis) key(id string) string {
	return gameKeyPrefix + id
}
