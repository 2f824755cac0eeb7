package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/roach88/looper/internal/fault"
)

// Redis is a Backend that keeps each namespace in one Redis hash.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a backend for the server at addr. Keys are written as
// hashes named "<prefix>:<namespace>".
func NewRedis(addr, password string, db int, prefix string) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisFromClient(rdb, prefix)
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "looper"
	}
	return &Redis{client: client, prefix: prefix}
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fault.Storage("redis ping", err)
	}
	return nil
}

// Namespace returns the namespace called name.
func (r *Redis) Namespace(name string) Namespace {
	return &redisNamespace{client: r.client, name: name, hash: fmt.Sprintf("%s:%s", r.prefix, name)}
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

type redisNamespace struct {
	client *redis.Client
	name   string
	hash   string
}

func (n *redisNamespace) op(verb string) string {
	return fmt.Sprintf("%s %s", verb, n.name)
}

func (n *redisNamespace) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := n.client.HGet(ctx, n.hash, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fault.Storage(n.op("get"), err)
	}
	return v, true, nil
}

func (n *redisNamespace) Set(ctx context.Context, key string, value []byte) error {
	if err := n.client.HSet(ctx, n.hash, key, value).Err(); err != nil {
		return fault.Storage(n.op("set"), err)
	}
	return nil
}

func (n *redisNamespace) Remove(ctx context.Context, key string) error {
	if err := n.client.HDel(ctx, n.hash, key).Err(); err != nil {
		return fault.Storage(n.op("remove"), err)
	}
	return nil
}

func (n *redisNamespace) Keys(ctx context.Context) ([]string, error) {
	keys, err := n.client.HKeys(ctx, n.hash).Result()
	if err != nil {
		return nil, fault.Storage(n.op("keys"), err)
	}
	slices.Sort(keys)
	return keys, nil
}

func (n *redisNamespace) Clear(ctx context.Context) error {
	if err := n.client.Del(ctx, n.hash).Err(); err != nil {
		return fault.Storage(n.op("clear"), err)
	}
	return nil
}
