// Package model defines the core learning data types.
package model

import "time"

// Document is an uploaded source text. It is immutable once indexed.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
