package mastery

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/learncore/internal/extract"
	"github.com/rcliao/learncore/internal/model"
)

type scriptedGenerator struct {
	outputs []string
	prompts []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if len(g.outputs) == 0 {
		return "", errors.New("script exhausted")
	}
	out := g.outputs[0]
	g.outputs = g.outputs[1:]
	return out, nil
}

type staticContent struct{ calls []ContentRequest }

func (c *staticContent) Content(_ context.Context, req ContentRequest) (string, error) {
	c.calls = append(c.calls, req)
	return fmt.Sprintf("lesson %s attempt %d on %v", req.Phase, req.Attempt, req.WeakPoints), nil
}

func prompt(req AssessmentRequest) string {
	return fmt.Sprintf("quiz %s %s", req.Topic, req.Phase)
}

func TestRunnerDrivesLoop(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{
		"Here is the grade:\n```json\n{\"score\": 55, \"weakPoints\": [\"inertia\"]}\n```",
		`{"score": 65, "weakPoints": ["inertia"]}`,
		`Great job! {"score": 90, "weakPoints": []}`,
	}}
	content := &staticContent{}
	r := &Runner{
		Engine:      newTestEngine(),
		Assessments: GeneratedAssessments{Generator: gen, Prompt: prompt},
		Contents:    content,
	}

	s, err := r.Engine.Start("Newton's Laws")
	require.NoError(t, err)

	ctx := context.Background()
	for !s.Closed {
		res, err := r.Step(ctx, s)
		require.NoError(t, err)
		s = res.Session
	}

	assert.Equal(t, model.PhaseMastery, s.Phase)
	assert.Equal(t, 2, s.Attempt)
	assert.Equal(t, 55, s.InitialScore)
	assert.Equal(t, 90, s.CurrentScore)
	assert.Len(t, content.calls, 4)
	assert.Equal(t, []string{"inertia"}, content.calls[0].WeakPoints)
	assert.Equal(t, "quiz Newton's Laws assess_initial", gen.prompts[0])
}

func TestRunnerMalformedAssessment(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{"Sorry, I can't grade that."}}
	r := &Runner{
		Engine:      newTestEngine(),
		Assessments: GeneratedAssessments{Generator: gen, Prompt: prompt},
		Contents:    &staticContent{},
	}
	s, err := r.Engine.Start("Optics")
	require.NoError(t, err)

	res, err := r.Step(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrMalformedOutput)

	var mErr *extract.MalformedOutputError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, "Sorry, I can't grade that.", mErr.Raw)
	assert.Equal(t, s, res.Session)
}

func TestParseAssessmentRejectsOutOfRange(t *testing.T) {
	_, err := ParseAssessment(`{"score": 140}`)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseAssessmentRequiresScore(t *testing.T) {
	text := `Here you go: {"weakPoints":["inertia"]}`
	_, err := ParseAssessment(text)
	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrMalformedOutput)

	var mErr *extract.MalformedOutputError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, text, mErr.Raw)

	a, err := ParseAssessment(`{"score": 0, "weakPoints": ["inertia"]}`)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Score)
}

func TestRunnerMissingScoreLeavesSessionUnchanged(t *testing.T) {
	gen := &scriptedGenerator{outputs: []string{`{"weakPoints": ["lenses"]}`}}
	r := &Runner{
		Engine:      newTestEngine(),
		Assessments: GeneratedAssessments{Generator: gen, Prompt: prompt},
		Contents:    &staticContent{},
	}
	s, err := r.Engine.Start("Optics")
	require.NoError(t, err)

	res, err := r.Step(context.Background(), s)
	assert.ErrorIs(t, err, extract.ErrMalformedOutput)
	assert.Equal(t, model.PhaseAssessInitial, res.Session.Phase)
	assert.Empty(t, res.Session.History)
}
