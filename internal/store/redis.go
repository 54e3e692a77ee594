package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key this package writes.
const DefaultRedisPrefix = "learncore:"

// RedisStore implements KV on Redis. Values are stored as plain strings
// under <prefix><ns>:<key>.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the Redis server at url (redis:// URL or host:port)
// and verifies the connection.
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opt.Addr, err)
	}
	return NewRedisStoreFromClient(client, prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) nsPrefix(ns string) string {
	return r.prefix + ns + ":"
}

func (r *RedisStore) Get(ctx context.Context, ns, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.nsPrefix(ns)+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, ns, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", ns, key, err)
	}
	return b, nil
}

func (r *RedisStore) Set(ctx context.Context, ns, key string, value []byte) error {
	if err := r.client.Set(ctx, r.nsPrefix(ns)+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s/%s: %w", ns, key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, ns, key string) error {
	n, err := r.client.Del(ctx, r.nsPrefix(ns)+key).Result()
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", ns, key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, ns, key)
	}
	return nil
}

func (r *RedisStore) Keys(ctx context.Context, ns string) ([]string, error) {
	prefix := r.nsPrefix(ns)
	var keys []string
	iter := r.client.Scan(ctx, 0, escapeGlob(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", ns, err)
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
