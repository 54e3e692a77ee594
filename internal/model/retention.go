package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the informational stage of a flashcard.
type Status string

const (
	StatusNew      Status = "new"
	StatusLearning Status = "learning"
	StatusReview   Status = "review"
	StatusMastered Status = "mastered"
)

// ValidStatuses are the allowed card statuses.
var ValidStatuses = map[Status]bool{
	StatusNew:      true,
	StatusLearning: true,
	StatusReview:   true,
	StatusMastered: true,
}

// UnmarshalJSON rejects unknown statuses.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("model: invalid status: %s", data)
	}
	if !ValidStatuses[Status(str)] {
		return fmt.Errorf("model: invalid status: %q", str)
	}
	*s = Status(str)
	return nil
}

// RetentionState is the spaced-repetition state of one flashcard.
type RetentionState struct {
	CardID         string     `json:"card_id"`
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	NextReviewDate time.Time  `json:"next_review_date"`
	LastReviewDate *time.Time `json:"last_review_date"`
	Status         Status     `json:"status"`
}

// Clone returns a deep copy of the state.
func (r RetentionState) Clone() RetentionState {
	out := r
	if r.LastReviewDate != nil {
		v := *r.LastReviewDate
		out.LastReviewDate = &v
	}
	return out
}
