package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/rcliao/learncore/internal/model"
)

// Entry is one exported key/value pair. Values are kept as raw JSON.
type Entry struct {
	NS    string          `json:"ns"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// ExportAll returns every entry in the given namespaces, or in all known
// namespaces when none are given.
func ExportAll(ctx context.Context, kv KV, namespaces ...string) ([]Entry, error) {
	if len(namespaces) == 0 {
		namespaces = KnownNamespaces
	}
	var entries []Entry
	for _, ns := range namespaces {
		keys, err := kv.Keys(ctx, ns)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			v, err := kv.Get(ctx, ns, k)
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{NS: ns, Key: k, Value: json.RawMessage(v)})
		}
	}
	return entries, nil
}

// ErrInvalidEntry is returned by Import for entries that do not belong to a
// known namespace or do not decode as that namespace's record.
var ErrInvalidEntry = errors.New("store: invalid import entry")

func validateEntry(e Entry) error {
	var err error
	switch e.NS {
	case NSDocuments:
		var doc model.Document
		err = sonic.Unmarshal(e.Value, &doc)
	case NSCards:
		var st model.RetentionState
		if err = sonic.Unmarshal(e.Value, &st); err == nil && st.CardID != e.Key {
			err = fmt.Errorf("card_id %q does not match key", st.CardID)
		}
	case NSSessions:
		var sess model.Session
		err = sonic.Unmarshal(e.Value, &sess)
	default:
		return fmt.Errorf("%w: unknown namespace %q", ErrInvalidEntry, e.NS)
	}
	if err != nil {
		return fmt.Errorf("%w: %s/%s: %v", ErrInvalidEntry, e.NS, e.Key, err)
	}
	return nil
}

// Import writes entries, overwriting existing keys. Every entry is validated
// before anything is written. It returns the number written.
func Import(ctx context.Context, kv KV, entries []Entry) (int, error) {
	for _, e := range entries {
		if err := validateEntry(e); err != nil {
			return 0, err
		}
	}
	imported := 0
	for _, e := range entries {
		if err := kv.Set(ctx, e.NS, e.Key, []byte(e.Value)); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
