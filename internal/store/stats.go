package store

import (
	"context"
	"os"
	"time"

	"github.com/rcliao/learncore/internal/scheduler"
)

// Stats holds store statistics.
type Stats struct {
	Backend     string           `json:"backend"`
	DBPath      string           `json:"db_path,omitempty"`
	DBSizeBytes int64            `json:"db_size_bytes,omitempty"`
	DueCards    int              `json:"due_cards"`
	Namespaces  []NamespaceStats `json:"namespaces"`
}

// NamespaceStats holds per-namespace counts.
type NamespaceStats struct {
	NS   string `json:"ns"`
	Keys int    `json:"keys"`
}

// CollectStats counts entries per known namespace and due cards at now.
func CollectStats(ctx context.Context, kv KV, backend string, now time.Time) (*Stats, error) {
	st := &Stats{Backend: backend}

	if s, ok := kv.(*SQLiteStore); ok {
		st.DBPath = s.Path()
		if info, err := os.Stat(s.Path()); err == nil {
			st.DBSizeBytes = info.Size()
		}
	}

	for _, ns := range KnownNamespaces {
		keys, err := kv.Keys(ctx, ns)
		if err != nil {
			return st, err
		}
		st.Namespaces = append(st.Namespaces, NamespaceStats{NS: ns, Keys: len(keys)})
	}

	cards, err := NewCards(kv).All(ctx)
	if err != nil {
		return st, err
	}
	st.DueCards = len(scheduler.Due(cards, now))

	return st, nil
}
