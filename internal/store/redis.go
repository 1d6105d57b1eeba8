package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agenthands/concord/internal/config"
	"github.com/agenthands/concord/internal/core/model"
	"github.com/redis/go-redis/v9"
)

// latestKey sits outside the result: namespace so no comparison id can
// collide with it.
const latestKey = "latest"

// Redis stores documents and JSON-encoded results under a key prefix. Values
// expire after ttl; a zero ttl keeps them forever.
type Redis struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedis(rdb redis.Cmdable, prefix string, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

// NewRedisClient connects to cfg.Addr and pings it.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

func (r *Redis) key(parts ...string) string {
	k := r.prefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}

func (r *Redis) PutDocument(ctx context.Context, slot string, doc []byte) error {
	if err := r.rdb.Set(ctx, r.key("doc", slot), doc, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store document %s: %w", slot, err)
	}
	return nil
}

func (r *Redis) GetDocument(ctx context.Context, slot string) ([]byte, error) {
	doc, err := r.rdb.Get(ctx, r.key("doc", slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", slot, err)
	}
	return doc, nil
}

func (r *Redis) Save(ctx context.Context, c *model.Comparison) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode comparison: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key("result", c.ID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store comparison %s: %w", c.ID, err)
	}
	if err := r.rdb.Set(ctx, r.key(latestKey), c.ID, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark comparison %s as latest: %w", c.ID, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, id string) (*model.Comparison, error) {
	payload, err := r.rdb.Get(ctx, r.key("result", id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load comparison %s: %w", id, err)
	}

	var c model.Comparison
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("failed to decode comparison %s: %w", id, err)
	}
	return &c, nil
}

func (r *Redis) Latest(ctx context.Context) (*model.Comparison, error) {
	id, err := r.rdb.Get(ctx, r.key(latestKey)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest comparison id: %w", err)
	}
	return r.Get(ctx, id)
}
