package retriever

import (
	"strings"
	"testing"

	"github.com/rcliao/learncore/internal/chunker"
	"github.com/rcliao/learncore/internal/model"
)

func build(t *testing.T, text string, opts chunker.Options) *chunker.Index {
	t.Helper()
	idx, err := chunker.Build(model.Document{ID: "d", Text: text}, opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return idx
}

// wholeParents makes every child equal to its parent so tests can reason in parents.
var wholeParents = chunker.Options{ParentSize: 20, ParentOverlap: 0, ChildSize: 20, ChildOverlap: 0}

func TestTerms(t *testing.T) {
	got := Terms("a an The Photosynthesis of  CO2")
	want := []string{"the", "photosynthesis", "co2"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRetrieve_Relevance(t *testing.T) {
	text := strings.Repeat("x", 3500) + " photosynthesis " + strings.Repeat("y", 3000)
	idx := build(t, text, chunker.DefaultOptions())
	if len(idx.Parents) < 4 {
		t.Fatalf("expected at least 4 parents, got %d", len(idx.Parents))
	}
	if !strings.Contains(idx.Parents[2].Text, "photosynthesis") {
		t.Fatal("test setup: term should be in the third parent")
	}

	got := Retrieve(idx, "photosynthesis", DefaultOptions())
	if !strings.Contains(got, idx.Parents[2].Text) {
		t.Error("expected context to include the third parent span")
	}
}

func TestRetrieve_RankedOrderNotDocumentOrder(t *testing.T) {
	text := "cat sits on the mat." + "dog and cat run far." + "nothing to see here."
	idx := build(t, text, wholeParents)

	got := Retrieve(idx, "dog cat", DefaultOptions())
	want := "dog and cat run far." + DefaultSeparator + "cat sits on the mat."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRetrieve_PresenceNotFrequency(t *testing.T) {
	text := "cat cat cat cat cat." + "a dog with a cat!!!!"
	idx := build(t, text, wholeParents)

	hits := Rank(idx, "cat dog", DefaultOptions())
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Parent != 1 || hits[0].Score != 2 {
		t.Errorf("expected parent 1 with score 2 first, got %+v", hits[0])
	}
	if hits[1].Score != 1 {
		t.Errorf("expected repeated term to score 1, got %d", hits[1].Score)
	}
}

func TestRetrieve_ParentCap(t *testing.T) {
	text := "cat one cat one cat." + "cat two cat two cat." + "cat three cat three."
	idx := build(t, text, wholeParents)

	got := Retrieve(idx, "cat", DefaultOptions())
	if strings.Count(got, DefaultSeparator) != 1 {
		t.Errorf("expected exactly two parents, got %q", got)
	}

	one := Retrieve(idx, "cat", Options{TopParents: 1})
	if one != "cat one cat one cat." {
		t.Errorf("expected first parent only, got %q", one)
	}
}

func TestParents_DedupPreservesRank(t *testing.T) {
	hits := []Hit{{Child: 4, Parent: 1, Score: 3}, {Child: 3, Parent: 1, Score: 2}, {Child: 0, Parent: 0, Score: 2}, {Child: 7, Parent: 2, Score: 1}}
	got := Parents(hits, DefaultOptions())
	if len(got) != 2 || got[0] != 1 || got[1] != 0 {
		t.Errorf("expected [1 0], got %v", got)
	}
}

func TestRetrieve_FallbackNonEmpty(t *testing.T) {
	text := strings.Repeat("Inertia keeps bodies moving. ", 200)
	idx := build(t, text, chunker.DefaultOptions())

	for _, q := range []string{"quantum chromodynamics", "a an of", ""} {
		got := Retrieve(idx, q, DefaultOptions())
		if got == "" {
			t.Fatalf("query %q: expected non-empty context", q)
		}
		if got != string([]rune(text)[:DefaultFallbackChars]) {
			t.Errorf("query %q: expected first %d characters as fallback", q, DefaultFallbackChars)
		}
	}
}

func TestRetrieve_FallbackShortDocument(t *testing.T) {
	idx := build(t, "tiny", chunker.DefaultOptions())
	if got := Retrieve(idx, "unrelated", DefaultOptions()); got != "tiny" {
		t.Errorf("expected whole document, got %q", got)
	}
}
