package rediskv

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/session"
)

// Storage persists session state in Redis, for gateway deployments where the
// process has no stable local disk.
type Storage struct {
	rdb *redis.Client
}

var _ session.Storage = (*Storage)(nil) // interface compliance check

func Open(ctx context.Context, conf *core.Config) (*Storage, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &Storage{rdb: rdb}, nil
}

func (s *Storage) Close() error { return s.rdb.Close() }

func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "reading item")
	}
	return val, nil
}

func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	return errors.Wrap(s.rdb.Set(ctx, key, value, 0).Err(), "writing item")
}

func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	return errors.Wrap(s.rdb.Del(ctx, key).Err(), "removing item")
}
