// Package rewrite implements the Link Resolver & Rewriter (C9,
// spec.md §4.9): reference resolution, the byte-offset splice list that
// patches a page's markup in place, and the wrapper/contents/resolution
// pages the rewritten site is built from.
package rewrite

import (
	"fmt"
	"sort"
)

// Splice replaces OriginalLength bytes at ByteOffset with Replacement.
// Splices are applied in increasing ByteOffset order with a running
// offset adjustment (spec.md §4.9); they must never overlap.
type Splice struct {
	ByteOffset     int
	OriginalLength int
	Replacement    []byte
}

// ApplySplices returns src with every splice in splices applied. Splices
// need not arrive pre-sorted. It panics (an assertion, per spec.md §4.9:
// "an assertion is raised otherwise") if two splices overlap or a splice
// falls outside src's bounds — both indicate a bug in the code that
// built the splice list, not a recoverable per-page condition.
func ApplySplices(src []byte, splices []Splice) []byte {
	if len(splices) == 0 {
		return src
	}
	ordered := append([]Splice{}, splices...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ByteOffset < ordered[j].ByteOffset })

	var out []byte
	cursor := 0
	for _, sp := range ordered {
		if sp.ByteOffset < cursor {
			panic(fmt.Sprintf("rewrite: overlapping splice at offset %d (cursor at %d)", sp.ByteOffset, cursor))
		}
		if sp.ByteOffset+sp.OriginalLength > len(src) {
			panic(fmt.Sprintf("rewrite: splice at %d+%d exceeds source length %d", sp.ByteOffset, sp.OriginalLength, len(src)))
		}
		out = append(out, src[cursor:sp.ByteOffset]...)
		out = append(out, sp.Replacement...)
		cursor = sp.ByteOffset + sp.OriginalLength
	}
	out = append(out, src[cursor:]...)
	return out
}
