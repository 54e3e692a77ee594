package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const nsSep = "\x00"

// MemoryStore implements KV in process memory. Values vanish with the process.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates an in-memory store. A zero ttl keeps entries forever;
// otherwise entries expire ttl after their last write.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		return &MemoryStore{cache: cache.New(cache.NoExpiration, 0)}
	}
	return &MemoryStore{cache: cache.New(ttl, ttl/2)}
}

func memKey(ns, key string) string {
	return ns + nsSep + key
}

func (m *MemoryStore) Get(_ context.Context, ns, key string) ([]byte, error) {
	x, found := m.cache.Get(memKey(ns, key))
	if !found {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, ns, key)
	}
	return slices.Clone(x.([]byte)), nil
}

func (m *MemoryStore) Set(_ context.Context, ns, key string, value []byte) error {
	m.cache.Set(memKey(ns, key), slices.Clone(value), cache.DefaultExpiration)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, ns, key string) error {
	k := memKey(ns, key)
	if _, found := m.cache.Get(k); !found {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, ns, key)
	}
	m.cache.Delete(k)
	return nil
}

func (m *MemoryStore) Keys(_ context.Context, ns string) ([]string, error) {
	prefix := ns + nsSep
	var keys []string
	for k := range m.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, strings.TrimPrefix(k, prefix))
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (m *MemoryStore) Close() error {
	m.cache.Flush()
	return nil
}
