package mastery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/learncore/internal/model"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	tick := t0
	return NewEngine(WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}))
}

func advance(t *testing.T, e *Engine, s model.Session, phase model.Phase, data Data) model.Session {
	t.Helper()
	out, err := e.Advance(s, phase, data)
	require.NoError(t, err)
	return out
}

func TestStart(t *testing.T) {
	e := newTestEngine()
	s, err := e.Start("Newton's Laws")
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "Newton's Laws", s.Topic)
	assert.Equal(t, model.PhaseAssessInitial, s.Phase)
	assert.Equal(t, 1, s.Attempt)
	assert.Empty(t, s.History)
	assert.False(t, s.Closed)

	_, err = e.Start("   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEndToEnd(t *testing.T) {
	e := newTestEngine()
	s, err := e.Start("Newton's Laws")
	require.NoError(t, err)

	s = advance(t, e, s, model.PhaseAssessInitial, Scored(55, "inertia"))
	assert.Equal(t, model.PhaseContentPrimary, s.Phase)
	assert.Equal(t, 55, s.InitialScore)
	assert.Equal(t, []string{"inertia"}, s.WeakPoints)

	s = advance(t, e, s, model.PhaseContentPrimary, Data{})
	assert.Equal(t, model.PhaseContentSecondary, s.Phase)

	s = advance(t, e, s, model.PhaseContentSecondary, Data{})
	assert.Equal(t, model.PhaseAssessFinal, s.Phase)

	s = advance(t, e, s, model.PhaseAssessFinal, Scored(65))
	assert.Equal(t, model.PhaseContentPrimary, s.Phase)
	assert.Equal(t, 2, s.Attempt)
	assert.Equal(t, 65, s.CurrentScore)

	s = advance(t, e, s, model.PhaseContentPrimary, Data{})
	s = advance(t, e, s, model.PhaseContentSecondary, Data{})
	s = advance(t, e, s, model.PhaseAssessFinal, Scored(85))
	assert.Equal(t, model.PhaseMastery, s.Phase)
	assert.Equal(t, 85, s.CurrentScore)
	assert.Equal(t, 2, s.Attempt)
	assert.False(t, s.Closed)

	s = advance(t, e, s, model.PhaseMastery, Data{})
	assert.True(t, s.Closed)

	require.Len(t, s.History, 8)
	assert.Equal(t, model.PhaseAssessInitial, s.History[0].Phase)
	require.NotNil(t, s.History[0].Score)
	assert.Equal(t, 55, *s.History[0].Score)
	assert.Nil(t, s.History[1].Score)
	assert.Equal(t, model.PhaseMastery, s.History[7].Phase)
	assert.Equal(t, 2, s.History[7].Attempt)
	for i := 1; i < len(s.History); i++ {
		assert.True(t, s.History[i].Timestamp.After(s.History[i-1].Timestamp))
	}

	_, err = e.Advance(s, model.PhaseMastery, Data{})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestThresholdBoundary(t *testing.T) {
	e := newTestEngine()
	for _, tc := range []struct {
		score int
		want  model.Phase
	}{
		{MasteryThreshold - 1, model.PhaseContentPrimary},
		{MasteryThreshold, model.PhaseMastery},
		{MaxScore, model.PhaseMastery},
	} {
		s := model.Session{ID: "s", Topic: "t", Phase: model.PhaseAssessFinal, Attempt: 1}
		out := advance(t, e, s, model.PhaseAssessFinal, Scored(tc.score))
		assert.Equal(t, tc.want, out.Phase, "score %d", tc.score)
	}
}

func TestStalePhaseRejected(t *testing.T) {
	e := newTestEngine()
	s := model.Session{
		ID: "s", Topic: "Optics", Phase: model.PhaseAssessFinal, Attempt: 3,
		InitialScore: 40, WeakPoints: []string{"refraction"},
		History: []model.HistoryEntry{{Phase: model.PhaseAssessInitial, Attempt: 1, Timestamp: t0}},
	}
	before := s.Clone()

	out, err := e.Advance(s, model.PhaseContentPrimary, Data{})
	assert.ErrorIs(t, err, ErrPhaseMismatch)
	assert.Equal(t, before, out)
	assert.Equal(t, before, s)
}

func TestDoubleAdvanceRejected(t *testing.T) {
	e := newTestEngine()
	s, err := e.Start("Optics")
	require.NoError(t, err)

	next := advance(t, e, s, model.PhaseAssessInitial, Scored(30))
	_, err = e.Advance(next, model.PhaseAssessInitial, Scored(30))
	assert.ErrorIs(t, err, ErrPhaseMismatch)
}

func TestAssessmentRequiresValidScore(t *testing.T) {
	e := newTestEngine()
	s, err := e.Start("Optics")
	require.NoError(t, err)

	_, err = e.Advance(s, model.PhaseAssessInitial, Data{WeakPoints: []string{"lenses"}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.Advance(s, model.PhaseAssessInitial, Scored(101))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.Advance(s, model.PhaseAssessInitial, Scored(-1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNoAttemptCap(t *testing.T) {
	e := newTestEngine()
	s, err := e.Start("Thermodynamics")
	require.NoError(t, err)
	s = advance(t, e, s, model.PhaseAssessInitial, Scored(10))

	for i := 0; i < 50; i++ {
		s = advance(t, e, s, model.PhaseContentPrimary, Data{})
		s = advance(t, e, s, model.PhaseContentSecondary, Data{})
		s = advance(t, e, s, model.PhaseAssessFinal, Scored(20))
	}
	assert.Equal(t, 51, s.Attempt)
	assert.Equal(t, model.PhaseContentPrimary, s.Phase)
	assert.False(t, s.Closed)
}

func TestAdvanceDoesNotAliasInput(t *testing.T) {
	e := newTestEngine()
	s, err := e.Start("Optics")
	require.NoError(t, err)
	s = advance(t, e, s, model.PhaseAssessInitial, Scored(30, "lenses", "mirrors", "lenses", " "))
	assert.Equal(t, []string{"lenses", "mirrors"}, s.WeakPoints)

	next := advance(t, e, s, model.PhaseContentPrimary, Data{})
	next.WeakPoints[0] = "changed"
	next.History[0].Phase = model.PhaseMastery

	assert.Equal(t, "lenses", s.WeakPoints[0])
	assert.Equal(t, model.PhaseAssessInitial, s.History[0].Phase)
	assert.Len(t, s.History, 1)
}
