package extract

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestStructured_RoundTrip(t *testing.T) {
	values := []any{
		map[string]any{"score": 55.0, "weakPoints": []any{"inertia", "friction"}},
		[]any{map[string]any{"q": "What is F?", "a": "ma"}, 3.5, true, nil},
		map[string]any{},
		[]any{},
		map[string]any{"nested": map[string]any{"braces": "{ not } real", "list": []any{"[", "]"}}},
	}
	for _, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		got, err := Structured(string(b))
		if err != nil {
			t.Fatalf("extract %s: %v", b, err)
		}
		if !reflect.DeepEqual(got, v) {
			t.Errorf("round trip mismatch: got %#v, want %#v", got, v)
		}

		wrapped := "Sure! Here is the quiz you asked for:\n```json\n" + string(b) + "\n```\nGood luck."
		got, err = Structured(wrapped)
		if err != nil {
			t.Fatalf("extract wrapped %s: %v", b, err)
		}
		if !reflect.DeepEqual(got, v) {
			t.Errorf("wrapped mismatch: got %#v, want %#v", got, v)
		}
	}
}

func TestStructured_ArrayFallback(t *testing.T) {
	// The outer braces span is invalid, the bracket span is a valid array.
	text := `Questions {see below}: [{"q":"one"}] and that is all`
	got, err := Structured(text)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	arr, ok := got.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("expected one-element array, got %#v", got)
	}
}

func TestStructured_EnclosingArrayWins(t *testing.T) {
	got, err := Structured(`Result: [{"a":1}]`)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := []any{map[string]any{"a": 1.0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestStructured_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no json", "I could not generate a quiz today."},
		{"trailing comma", `{"score": 80,}`},
		{"single quotes", `{'score': 80}`},
		{"two objects", `{"a":1} and {"b":2}`},
		{"extra closing brace", `{"a":1}}`},
		{"reversed braces", `} nothing {`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Structured(tt.text)
			if got != nil {
				t.Errorf("expected nil value, got %#v", got)
			}
			if !errors.Is(err, ErrMalformedOutput) {
				t.Fatalf("expected ErrMalformedOutput, got %v", err)
			}
			var mErr *MalformedOutputError
			if !errors.As(err, &mErr) {
				t.Fatalf("expected *MalformedOutputError, got %T", err)
			}
			if mErr.Raw != tt.text {
				t.Errorf("expected raw text %q, got %q", tt.text, mErr.Raw)
			}
		})
	}
}

func TestInto_Typed(t *testing.T) {
	var result struct {
		Score      int      `json:"score"`
		WeakPoints []string `json:"weakPoints"`
	}
	err := Into("Assessment complete.\n{\"score\": 55, \"weakPoints\": [\"inertia\"]}\n", &result)
	if err != nil {
		t.Fatalf("into: %v", err)
	}
	if result.Score != 55 || len(result.WeakPoints) != 1 || result.WeakPoints[0] != "inertia" {
		t.Errorf("unexpected result %+v", result)
	}
}
