// Package extract recovers a JSON value embedded in free-form generated text.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedOutput is matched by every extraction failure.
var ErrMalformedOutput = errors.New("extract: malformed generated output")

// MalformedOutputError carries the raw text so callers can log it or regenerate.
type MalformedOutputError struct {
	Raw   string
	Cause error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", ErrMalformedOutput, e.Cause)
	}
	return ErrMalformedOutput.Error()
}

func (e *MalformedOutputError) Is(target error) bool {
	return target == ErrMalformedOutput
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

type span struct{ start, end int }

func locate(text, open, close string) (span, bool) {
	start := strings.Index(text, open)
	end := strings.LastIndex(text, close)
	if start == -1 || end == -1 || end < start {
		return span{}, false
	}
	return span{start, end + 1}, true
}

// candidates returns the object span first and the array span second, when present.
// An array that encloses the object span is tried first so top-level arrays of objects
// come back whole.
func candidates(text string) []string {
	obj, hasObj := locate(text, "{", "}")
	arr, hasArr := locate(text, "[", "]")

	var out []string
	if hasArr && hasObj && arr.start < obj.start && arr.end > obj.end {
		return []string{text[arr.start:arr.end], text[obj.start:obj.end]}
	}
	if hasObj {
		out = append(out, text[obj.start:obj.end])
	}
	if hasArr {
		out = append(out, text[arr.start:arr.end])
	}
	return out
}

// Structured returns the JSON value embedded in text: the span from the first
// '{' to the last '}', then the span from the first '[' to the last ']'.
// When the array span encloses the object span, as in [{"a":1}], the array is
// tried first so the whole array is returned rather than its first element.
// Nothing is repaired: invalid JSON is a *MalformedOutputError.
func Structured(text string) (any, error) {
	var v any
	if err := Into(text, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Into decodes the embedded JSON value into v using the same location rules as Structured.
func Into(text string, v any) error {
	var lastErr error
	for _, c := range candidates(text) {
		if err := json.Unmarshal([]byte(c), v); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("no JSON object or array found")
	}
	return &MalformedOutputError{Raw: text, Cause: lastErr}
}
