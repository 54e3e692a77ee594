// Package retriever selects grounding context from a chunk index.
//
// Matching happens on small child spans; the text handed back is the coarser
// parent span that owns each hit, capped at a few parents to bound prompt size.
package retriever

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rcliao/learncore/internal/chunker"
)

const (
	DefaultTopChildren   = 5
	DefaultTopParents    = 2
	DefaultFallbackChars = 2000
	DefaultSeparator     = "\n\n---\n\n"

	minTermLen = 3
)

// Options configures retrieval.
type Options struct {
	TopChildren   int
	TopParents    int
	FallbackChars int
	Separator     string
}

// DefaultOptions returns default retrieval options.
func DefaultOptions() Options {
	return Options{
		TopChildren:   DefaultTopChildren,
		TopParents:    DefaultTopParents,
		FallbackChars: DefaultFallbackChars,
		Separator:     DefaultSeparator,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TopChildren <= 0 {
		o.TopChildren = d.TopChildren
	}
	if o.TopParents <= 0 {
		o.TopParents = d.TopParents
	}
	if o.FallbackChars <= 0 {
		o.FallbackChars = d.FallbackChars
	}
	if o.Separator == "" {
		o.Separator = d.Separator
	}
	return o
}

// Hit is a scored child span.
type Hit struct {
	Child  int `json:"child"`
	Parent int `json:"parent"`
	Score  int `json:"score"`
}

// Terms lowercases the query and keeps whitespace-separated terms longer than two characters.
func Terms(query string) []string {
	var terms []string
	for _, f := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(f) >= minTermLen {
			terms = append(terms, f)
		}
	}
	return terms
}

// score counts the terms present in text. Repeated occurrences count once.
func score(text string, terms []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, t := range terms {
		if strings.Contains(lower, t) {
			n++
		}
	}
	return n
}

// Rank scores every child span and returns the top non-zero hits, best first.
// Ties keep document order.
func Rank(idx *chunker.Index, query string, opts Options) []Hit {
	opts = opts.withDefaults()
	terms := Terms(query)
	if len(terms) == 0 {
		return nil
	}

	hits := make([]Hit, 0, len(idx.Children))
	for i, c := range idx.Children {
		hits = append(hits, Hit{Child: i, Parent: c.ParentIndex, Score: score(c.Text, terms)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > opts.TopChildren {
		hits = hits[:opts.TopChildren]
	}

	out := hits[:0]
	for _, h := range hits {
		if h.Score > 0 {
			out = append(out, h)
		}
	}
	return out
}

// Parents maps ranked hits to distinct parent indices in first-seen order, capped at TopParents.
func Parents(hits []Hit, opts Options) []int {
	opts = opts.withDefaults()
	seen := map[int]bool{}
	var parents []int
	for _, h := range hits {
		if seen[h.Parent] {
			continue
		}
		seen[h.Parent] = true
		parents = append(parents, h.Parent)
		if len(parents) == opts.TopParents {
			break
		}
	}
	return parents
}

// Retrieve returns the grounding context for query. When nothing matches it falls
// back to the head of the document, so a non-empty document never yields empty context.
func Retrieve(idx *chunker.Index, query string, opts Options) string {
	opts = opts.withDefaults()

	parents := Parents(Rank(idx, query, opts), opts)
	if len(parents) == 0 {
		return fallback(idx.Source, opts.FallbackChars)
	}

	parts := make([]string, 0, len(parents))
	for _, p := range parents {
		parts = append(parts, idx.Parents[p].Text)
	}
	return strings.Join(parts, opts.Separator)
}

func fallback(source string, n int) string {
	if utf8.RuneCountInString(source) <= n {
		return source
	}
	return string([]rune(source)[:n])
}
