// Package mastery drives the remediation loop for one learner and topic:
// diagnostic assessment, two rounds of instruction, re-assessment, and either
// mastery or another round of instruction.
package mastery

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/rcliao/learncore/internal/model"
)

// MasteryThreshold is the minimum re-assessment score that exits the loop.
const MasteryThreshold = 80

const (
	MinScore = 0
	MaxScore = 100
)

var (
	ErrPhaseMismatch = errors.New("mastery: phase mismatch")
	ErrSessionClosed = errors.New("mastery: session closed")
	ErrInvalidInput  = errors.New("mastery: invalid input")
)

// Data is the payload of one Advance call. Assessment phases require Score.
type Data struct {
	Score      *int
	WeakPoints []string
}

// Scored is shorthand for assessment data.
func Scored(score int, weakPoints ...string) Data {
	return Data{Score: &score, WeakPoints: weakPoints}
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger used for transition events.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine is the loop state machine. It holds no session state itself;
// sessions are values owned by the caller, one in flight per learner and topic.
type Engine struct {
	now func() time.Time
	log *zap.Logger
}

// NewEngine returns an engine with the given options applied.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now: time.Now,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start opens a session at the diagnostic assessment.
func (e *Engine) Start(topic string) (model.Session, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return model.Session{}, fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}
	now := e.now()
	s := model.Session{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Topic:     topic,
		Phase:     model.PhaseAssessInitial,
		Attempt:   1,
		StartedAt: now,
	}
	e.log.Info("mastery loop started", zap.String("session", s.ID), zap.String("topic", topic))
	return s, nil
}

// Advance completes phase and moves the session to the next one. phase must equal
// the session's current phase, which rejects stale or duplicated calls. The input
// session is never modified; on error it is returned unchanged.
func (e *Engine) Advance(s model.Session, phase model.Phase, data Data) (model.Session, error) {
	if s.Closed {
		return s, fmt.Errorf("%w: %s", ErrSessionClosed, s.ID)
	}
	if phase != s.Phase {
		return s, fmt.Errorf("%w: session is at %s, got %s", ErrPhaseMismatch, s.Phase, phase)
	}
	if err := validate(phase, data); err != nil {
		return s, err
	}

	out := s.Clone()
	entry := model.HistoryEntry{Phase: phase, Attempt: s.Attempt, Timestamp: e.now()}

	switch phase {
	case model.PhaseAssessInitial:
		score := *data.Score
		entry.Score = &score
		out.InitialScore = score
		out.WeakPoints = weakPointSet(data.WeakPoints)
		out.Phase = model.PhaseContentPrimary
	case model.PhaseContentPrimary:
		out.Phase = model.PhaseContentSecondary
	case model.PhaseContentSecondary:
		out.Phase = model.PhaseAssessFinal
	case model.PhaseAssessFinal:
		score := *data.Score
		entry.Score = &score
		out.CurrentScore = score
		if score >= MasteryThreshold {
			out.Phase = model.PhaseMastery
		} else {
			out.Phase = model.PhaseContentPrimary
			out.Attempt++
		}
	case model.PhaseMastery:
		out.Closed = true
	default:
		return s, fmt.Errorf("%w: unknown phase %q", ErrInvalidInput, phase)
	}

	out.History = append(out.History, entry)

	e.log.Debug("mastery loop advanced",
		zap.String("session", s.ID),
		zap.String("from", string(phase)),
		zap.String("to", string(out.Phase)),
		zap.Int("attempt", out.Attempt),
		zap.Bool("closed", out.Closed),
	)
	if phase == model.PhaseAssessFinal && out.Phase == model.PhaseContentPrimary {
		e.log.Info("re-assessment below threshold, repeating instruction",
			zap.String("session", s.ID), zap.Int("score", out.CurrentScore), zap.Int("attempt", out.Attempt))
	}

	return out, nil
}

// Exit abandons the session. It is legal from any phase and has no side effects
// beyond logging; the caller discards the stored record.
func (e *Engine) Exit(s model.Session) {
	e.log.Info("mastery loop exited",
		zap.String("session", s.ID), zap.String("phase", string(s.Phase)), zap.Int("attempt", s.Attempt))
}

func validate(phase model.Phase, data Data) error {
	if !phase.IsAssessment() {
		return nil
	}
	if data.Score == nil {
		return fmt.Errorf("%w: %s requires a score", ErrInvalidInput, phase)
	}
	if *data.Score < MinScore || *data.Score > MaxScore {
		return fmt.Errorf("%w: score %d out of range %d-%d", ErrInvalidInput, *data.Score, MinScore, MaxScore)
	}
	return nil
}

// weakPointSet trims and deduplicates, keeping first-seen order.
func weakPointSet(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range in {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
