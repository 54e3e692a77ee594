// Package scheduler implements SM-2 style spaced-repetition scheduling.
//
// Schedule is a pure function: it returns a new RetentionState and never
// mutates its input. Callers persist the result under the card's id.
package scheduler

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rcliao/learncore/internal/model"
)

const (
	InitialEase         = 2.5
	MinEase             = 1.3
	FirstInterval       = 1
	SecondInterval      = 6
	PassingQuality      = 3
	MaxQuality          = 5
	MasteredRepetitions = 5
)

// ErrInvalidQuality is returned for recall qualities outside [0,5].
var ErrInvalidQuality = errors.New("scheduler: invalid quality")

// NewState returns the state of a freshly generated card. It is due immediately.
func NewState(cardID string, now time.Time) model.RetentionState {
	return model.RetentionState{
		CardID:         cardID,
		EaseFactor:     InitialEase,
		IntervalDays:   0,
		Repetitions:    0,
		NextReviewDate: now,
		Status:         model.StatusNew,
	}
}

// Schedule applies one review with the given recall quality.
func Schedule(card model.RetentionState, quality int, reviewedAt time.Time) (model.RetentionState, error) {
	if quality < 0 || quality > MaxQuality {
		return card, fmt.Errorf("%w: %d (want 0-%d)", ErrInvalidQuality, quality, MaxQuality)
	}

	c := card.Clone()

	if quality >= PassingQuality {
		switch c.Repetitions {
		case 0:
			c.IntervalDays = FirstInterval
		case 1:
			c.IntervalDays = SecondInterval
		default:
			c.IntervalDays = max(FirstInterval, int(math.Round(float64(card.IntervalDays)*card.EaseFactor)))
		}
		c.Repetitions++
	} else {
		c.Repetitions = 0
		c.IntervalDays = FirstInterval
	}

	c.EaseFactor = nextEase(card.EaseFactor, quality)
	c.NextReviewDate = reviewedAt.AddDate(0, 0, c.IntervalDays)
	c.LastReviewDate = &reviewedAt
	c.Status = statusFor(c.Repetitions)

	return c, nil
}

func nextEase(ease float64, quality int) float64 {
	q := float64(MaxQuality - quality)
	return math.Max(MinEase, ease+(0.1-q*(0.08+q*0.02)))
}

func statusFor(repetitions int) model.Status {
	switch {
	case repetitions >= MasteredRepetitions:
		return model.StatusMastered
	case repetitions >= 1:
		return model.StatusReview
	default:
		return model.StatusLearning
	}
}

// IsDue reports whether the card should be presented at now.
func IsDue(card model.RetentionState, now time.Time) bool {
	return card.Status == model.StatusNew || !card.NextReviewDate.After(now)
}

// Due returns the ids of due cards, sorted.
func Due(cards map[string]model.RetentionState, now time.Time) []string {
	var ids []string
	for id, c := range cards {
		if IsDue(c, now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Preview returns the state each quality would produce, without persisting anything.
func Preview(card model.RetentionState, reviewedAt time.Time) map[int]model.RetentionState {
	out := make(map[int]model.RetentionState, MaxQuality+1)
	for q := 0; q <= MaxQuality; q++ {
		c, _ := Schedule(card, q, reviewedAt)
		out[q] = c
	}
	return out
}
