// Package chunker splits a document into overlapping parent and child spans for retrieval.
package chunker

import (
	"errors"
	"fmt"

	"github.com/rcliao/learncore/internal/model"
)

const (
	DefaultParentSize    = 1500
	DefaultParentOverlap = 50
	DefaultChildSize     = 300
	DefaultChildOverlap  = 50
)

// ErrInvalidConfiguration is returned when window sizes and overlaps are inconsistent.
var ErrInvalidConfiguration = errors.New("chunker: invalid configuration")

// Options configures chunking behavior. Sizes are in characters (runes).
type Options struct {
	ParentSize    int
	ParentOverlap int
	ChildSize     int
	ChildOverlap  int
}

// DefaultOptions returns default chunking options.
func DefaultOptions() Options {
	return Options{
		ParentSize:    DefaultParentSize,
		ParentOverlap: DefaultParentOverlap,
		ChildSize:     DefaultChildSize,
		ChildOverlap:  DefaultChildOverlap,
	}
}

// Validate checks the window constraints.
func (o Options) Validate() error {
	switch {
	case o.ParentOverlap < 0 || o.ParentSize <= o.ParentOverlap:
		return fmt.Errorf("%w: parent size %d must exceed overlap %d >= 0", ErrInvalidConfiguration, o.ParentSize, o.ParentOverlap)
	case o.ChildOverlap < 0 || o.ChildSize <= o.ChildOverlap:
		return fmt.Errorf("%w: child size %d must exceed overlap %d >= 0", ErrInvalidConfiguration, o.ChildSize, o.ChildOverlap)
	case o.ChildSize > o.ParentSize:
		return fmt.Errorf("%w: child size %d exceeds parent size %d", ErrInvalidConfiguration, o.ChildSize, o.ParentSize)
	}
	return nil
}

// Span is a window of the source text. Start and End are rune offsets, End exclusive.
type Span struct {
	Text  string `json:"text,omitempty"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// ChildSpan is a matching window tagged with its owning parent.
type ChildSpan struct {
	Span
	ParentIndex int `json:"parent_index"`
}

// Index is the immutable parent/child decomposition of one document.
type Index struct {
	DocumentID string      `json:"document_id"`
	Source     string      `json:"-"`
	Options    Options     `json:"options"`
	Parents    []Span      `json:"parents"`
	Children   []ChildSpan `json:"children"`
}

// Build splits doc into parent spans and, within each parent, child spans.
func Build(doc model.Document, opts Options) (*Index, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(doc.Text)
	idx := &Index{
		DocumentID: doc.ID,
		Source:     doc.Text,
		Options:    opts,
	}

	for _, p := range windows(0, len(runes), opts.ParentSize, opts.ParentOverlap) {
		parent := Span{Text: string(runes[p[0]:p[1]]), Start: p[0], End: p[1]}
		idx.Parents = append(idx.Parents, parent)
		pi := len(idx.Parents) - 1

		for _, c := range windows(p[0], p[1], opts.ChildSize, opts.ChildOverlap) {
			idx.Children = append(idx.Children, ChildSpan{
				Span:        Span{Text: string(runes[c[0]:c[1]]), Start: c[0], End: c[1]},
				ParentIndex: pi,
			})
		}
	}

	return idx, nil
}

// windows returns [start,end) pairs covering [from,to) with the given size and overlap.
// The last window is truncated at to.
func windows(from, to, size, overlap int) [][2]int {
	var out [][2]int
	step := size - overlap
	for i := from; i < to; i += step {
		end := min(i+size, to)
		out = append(out, [2]int{i, end})
		if end == to {
			break
		}
	}
	return out
}

// Parent returns the parent span owning the given child.
func (idx *Index) Parent(c ChildSpan) Span {
	return idx.Parents[c.ParentIndex]
}

// Reconstruct concatenates the parent spans with overlaps stripped.
func (idx *Index) Reconstruct() string {
	var out []rune
	covered := 0
	for _, p := range idx.Parents {
		r := []rune(p.Text)
		if skip := covered - p.Start; skip > 0 {
			r = r[skip:]
		}
		out = append(out, r...)
		covered = p.End
	}
	return string(out)
}
