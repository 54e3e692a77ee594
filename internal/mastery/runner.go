package mastery

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rcliao/learncore/internal/extract"
	"github.com/rcliao/learncore/internal/model"
)

// AssessmentRequest describes the assessment a session needs next.
type AssessmentRequest struct {
	SessionID  string
	Topic      string
	Phase      model.Phase
	Attempt    int
	WeakPoints []string
}

// Assessment is a graded result.
type Assessment struct {
	Score      int      `json:"score"`
	WeakPoints []string `json:"weakPoints"`
}

// ContentRequest describes the instruction a session needs next.
type ContentRequest struct {
	SessionID  string
	Topic      string
	Phase      model.Phase
	Attempt    int
	WeakPoints []string
}

// AssessmentProvider produces graded assessments, typically via an LLM-graded quiz.
type AssessmentProvider interface {
	Assess(ctx context.Context, req AssessmentRequest) (Assessment, error)
}

// ContentProvider produces instructional content for a content phase.
type ContentProvider interface {
	Content(ctx context.Context, req ContentRequest) (string, error)
}

// Generator turns a prompt into free-form text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ParseAssessment extracts an Assessment from generated text. A result without
// a score is malformed output, never a zero score.
func ParseAssessment(text string) (Assessment, error) {
	var raw struct {
		Score      *int     `json:"score"`
		WeakPoints []string `json:"weakPoints"`
	}
	if err := extract.Into(text, &raw); err != nil {
		return Assessment{}, err
	}
	if raw.Score == nil {
		return Assessment{}, &extract.MalformedOutputError{Raw: text, Cause: errors.New("assessment has no score")}
	}
	if *raw.Score < MinScore || *raw.Score > MaxScore {
		return Assessment{}, fmt.Errorf("%w: generated score %d out of range", ErrInvalidInput, *raw.Score)
	}
	return Assessment{Score: *raw.Score, WeakPoints: raw.WeakPoints}, nil
}

// GeneratedAssessments adapts a Generator into an AssessmentProvider.
// Malformed output is returned as an extract.ErrMalformedOutput error so the
// caller can regenerate.
type GeneratedAssessments struct {
	Generator Generator
	Prompt    func(AssessmentRequest) string
}

func (g GeneratedAssessments) Assess(ctx context.Context, req AssessmentRequest) (Assessment, error) {
	text, err := g.Generator.Generate(ctx, g.Prompt(req))
	if err != nil {
		return Assessment{}, fmt.Errorf("generate assessment: %w", err)
	}
	return ParseAssessment(text)
}

// StepResult is the outcome of executing one phase.
type StepResult struct {
	Session    model.Session `json:"session"`
	Content    string        `json:"content,omitempty"`
	Assessment *Assessment   `json:"assessment,omitempty"`
}

// Runner executes the current phase of a session using its collaborators and
// advances the engine with the result.
type Runner struct {
	Engine      *Engine
	Assessments AssessmentProvider
	Contents    ContentProvider
	Logger      *zap.Logger
}

// Step runs one phase. On error the session is returned unchanged.
func (r *Runner) Step(ctx context.Context, s model.Session) (StepResult, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}

	switch s.Phase {
	case model.PhaseAssessInitial, model.PhaseAssessFinal:
		a, err := r.Assessments.Assess(ctx, AssessmentRequest{
			SessionID:  s.ID,
			Topic:      s.Topic,
			Phase:      s.Phase,
			Attempt:    s.Attempt,
			WeakPoints: s.WeakPoints,
		})
		if err != nil {
			log.Warn("assessment failed", zap.String("session", s.ID), zap.Error(err))
			return StepResult{Session: s}, err
		}
		next, err := r.Engine.Advance(s, s.Phase, Scored(a.Score, a.WeakPoints...))
		if err != nil {
			return StepResult{Session: s}, err
		}
		return StepResult{Session: next, Assessment: &a}, nil

	case model.PhaseContentPrimary, model.PhaseContentSecondary:
		content, err := r.Contents.Content(ctx, ContentRequest{
			SessionID:  s.ID,
			Topic:      s.Topic,
			Phase:      s.Phase,
			Attempt:    s.Attempt,
			WeakPoints: s.WeakPoints,
		})
		if err != nil {
			log.Warn("content generation failed", zap.String("session", s.ID), zap.Error(err))
			return StepResult{Session: s}, err
		}
		next, err := r.Engine.Advance(s, s.Phase, Data{})
		if err != nil {
			return StepResult{Session: s}, err
		}
		return StepResult{Session: next, Content: content}, nil

	default:
		next, err := r.Engine.Advance(s, s.Phase, Data{})
		if err != nil {
			return StepResult{Session: s}, err
		}
		return StepResult{Session: next}, nil
	}
}
