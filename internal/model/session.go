package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Phase is a step of the mastery loop.
type Phase string

const (
	PhaseAssessInitial    Phase = "assess_initial"
	PhaseContentPrimary   Phase = "content_primary"
	PhaseContentSecondary Phase = "content_secondary"
	PhaseAssessFinal      Phase = "assess_final"
	PhaseMastery          Phase = "mastery"
)

// ValidPhases are the allowed loop phases.
var ValidPhases = map[Phase]bool{
	PhaseAssessInitial:    true,
	PhaseContentPrimary:   true,
	PhaseContentSecondary: true,
	PhaseAssessFinal:      true,
	PhaseMastery:          true,
}

// ParsePhase parses a phase name.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !ValidPhases[p] {
		return "", fmt.Errorf("model: invalid phase: %q", s)
	}
	return p, nil
}

// UnmarshalJSON rejects unknown phases.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("model: invalid phase: %s", data)
	}
	v, err := ParsePhase(str)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// IsAssessment reports whether the phase consumes a score.
func (p Phase) IsAssessment() bool {
	return p == PhaseAssessInitial || p == PhaseAssessFinal
}

// HistoryEntry records one completed phase.
type HistoryEntry struct {
	Phase     Phase     `json:"phase"`
	Score     *int      `json:"score,omitempty"`
	Attempt   int       `json:"attempt"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one learner's remediation loop for a topic.
type Session struct {
	ID           string         `json:"id"`
	Topic        string         `json:"topic"`
	Phase        Phase          `json:"phase"`
	Attempt      int            `json:"attempt"`
	InitialScore int            `json:"initial_score"`
	CurrentScore int            `json:"current_score"`
	WeakPoints   []string       `json:"weak_points,omitempty"`
	History      []HistoryEntry `json:"history,omitempty"`
	Closed       bool           `json:"closed,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	out := s
	out.WeakPoints = slices.Clone(s.WeakPoints)
	out.History = make([]HistoryEntry, len(s.History))
	for i, h := range s.History {
		out.History[i] = h
		if h.Score != nil {
			v := *h.Score
			out.History[i].Score = &v
		}
	}
	if s.History == nil {
		out.History = nil
	}
	return out
}
