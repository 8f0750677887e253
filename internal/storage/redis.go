package storage

import (
	"context"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
)

// RedisStore keeps entries as plain Redis strings under a key prefix.
type RedisStore struct {
	pool   *redis.Pool
	prefix string
}

// NewRedisPool dials addr lazily; connections are checked with PING when idle
// for more than a minute.
func NewRedisPool(addr, password string) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 240 * time.Second,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			opts := []redis.DialOption{}
			if password != "" {
				opts = append(opts, redis.DialPassword(password))
			}
			return redis.DialContext(ctx, "tcp", addr, opts...)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

func NewRedisStore(pool *redis.Pool, prefix string) *RedisStore {
	return &RedisStore{pool: pool, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return "", false, unavailable("get", key, err)
	}
	defer conn.Close()

	value, err := redis.String(conn.Do("GET", s.prefix+key))
	if errors.Is(err, redis.ErrNil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get", key, err)
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return unavailable("set", key, err)
	}
	defer conn.Close()

	if _, err := conn.Do("SET", s.prefix+key, value); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return unavailable("delete", key, err)
	}
	defer conn.Close()

	if _, err := conn.Do("DEL", s.prefix+key); err != nil {
		return unavailable("delete", key, err)
	}
	return nil
}

// Close releases the pool.
func (s *RedisStore) Close() error {
	return s.pool.Close()
}
