package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/rcliao/learncore/internal/model"
)

func getJSON[T any](ctx context.Context, kv KV, ns, key string) (T, error) {
	var v T
	b, err := kv.Get(ctx, ns, key)
	if err != nil {
		return v, err
	}
	if err := sonic.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", ns, key, err)
	}
	return v, nil
}

func putJSON(ctx context.Context, kv KV, ns, key string, v any) error {
	b, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", ns, key, err)
	}
	return kv.Set(ctx, ns, key, b)
}

// Documents stores uploaded source documents by id.
type Documents struct {
	kv KV
}

func NewDocuments(kv KV) *Documents {
	return &Documents{kv: kv}
}

func (d *Documents) Put(ctx context.Context, doc model.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}
	return putJSON(ctx, d.kv, NSDocuments, doc.ID, doc)
}

func (d *Documents) Get(ctx context.Context, id string) (model.Document, error) {
	return getJSON[model.Document](ctx, d.kv, NSDocuments, id)
}

func (d *Documents) Delete(ctx context.Context, id string) error {
	return d.kv.Delete(ctx, NSDocuments, id)
}

func (d *Documents) IDs(ctx context.Context) ([]string, error) {
	return d.kv.Keys(ctx, NSDocuments)
}

// Cards stores one RetentionState per flashcard id.
type Cards struct {
	kv KV
}

func NewCards(kv KV) *Cards {
	return &Cards{kv: kv}
}

func (c *Cards) Put(ctx context.Context, state model.RetentionState) error {
	if state.CardID == "" {
		return fmt.Errorf("card id is required")
	}
	return putJSON(ctx, c.kv, NSCards, state.CardID, state)
}

func (c *Cards) Get(ctx context.Context, id string) (model.RetentionState, error) {
	return getJSON[model.RetentionState](ctx, c.kv, NSCards, id)
}

func (c *Cards) Delete(ctx context.Context, id string) error {
	return c.kv.Delete(ctx, NSCards, id)
}

// All loads every card keyed by id.
func (c *Cards) All(ctx context.Context) (map[string]model.RetentionState, error) {
	ids, err := c.kv.Keys(ctx, NSCards)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.RetentionState, len(ids))
	for _, id := range ids {
		st, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = st
	}
	return out, nil
}

// Sessions stores mastery loop sessions under the learner/topic pair.
type Sessions struct {
	kv KV
}

func NewSessions(kv KV) *Sessions {
	return &Sessions{kv: kv}
}

// SessionKey builds the storage key for a learner and topic.
func SessionKey(learner, topic string) string {
	return strings.TrimSpace(learner) + "/" + strings.ToLower(strings.TrimSpace(topic))
}

func (s *Sessions) Put(ctx context.Context, learner string, sess model.Session) error {
	if strings.TrimSpace(learner) == "" {
		return fmt.Errorf("learner is required")
	}
	return putJSON(ctx, s.kv, NSSessions, SessionKey(learner, sess.Topic), sess)
}

func (s *Sessions) Get(ctx context.Context, learner, topic string) (model.Session, error) {
	return getJSON[model.Session](ctx, s.kv, NSSessions, SessionKey(learner, topic))
}

func (s *Sessions) Delete(ctx context.Context, learner, topic string) error {
	return s.kv.Delete(ctx, NSSessions, SessionKey(learner, topic))
}

// Keys lists stored learner/topic keys.
func (s *Sessions) Keys(ctx context.Context) ([]string, error) {
	return s.kv.Keys(ctx, NSSessions)
}
