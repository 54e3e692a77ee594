// Package store provides keyed persistence for learning state.
//
// KV is the only abstraction the core depends on; SQLite, in-memory and
// Redis backends implement it, and typed repositories layer JSON records on top.
package store

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Namespaces used by the typed repositories.
const (
	NSDocuments = "documents"
	NSCards     = "cards"
	NSSessions  = "sessions"
)

// KnownNamespaces lists the namespaces reported by Stats and Export.
var KnownNamespaces = []string{NSDocuments, NSCards, NSSessions}

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("store: not found")

// KV is a durable map from (namespace, key) to an opaque value.
type KV interface {
	// Get returns the value stored under ns/key, or ErrNotFound.
	Get(ctx context.Context, ns, key string) ([]byte, error)

	// Set stores value under ns/key, replacing any previous value.
	Set(ctx context.Context, ns, key string, value []byte) error

	// Delete removes ns/key. Deleting a missing key returns ErrNotFound.
	Delete(ctx context.Context, ns, key string) error

	// Keys lists the keys in ns, sorted.
	Keys(ctx context.Context, ns string) ([]string, error)

	// Close releases the backend.
	Close() error
}

var (
	entropyMu sync.Mutex
	entropy   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NewID returns a new time-ordered identifier.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
