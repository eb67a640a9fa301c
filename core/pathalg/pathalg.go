// Package pathalg implements the pure, filesystem-independent path
// algebra of spec.md §4.2 (C2): conversion between root-relative and
// document-relative references. No function here touches a filesystem;
// case-insensitive lookup against a live tree lives in core/fsx, which
// composes with this package for resolve_mixed_case.
package pathalg

import (
	"strings"

	"chmweb/core/model"
)

// DocToRoot resolves rel, a reference appearing inside the document at
// root-relative path doc, to its root-relative target (spec.md §4.2).
// Segments "." or "" are dropped; ".." pops a segment from the
// accumulator. ok is false if the input escapes above the root, or if
// rel has no final non-directory segment (e.g. rel == "" or rel == ".").
func DocToRoot(rel string, doc model.Path) (target model.Path, ok bool) {
	// doc's directory (all segments but the last) seeds the accumulator.
	docSegs := doc.Segments()
	var acc []string
	if len(docSegs) > 0 {
		acc = append(acc, docSegs[:len(docSegs)-1]...)
	}

	relSegs := splitRaw(rel)
	if len(relSegs) == 0 {
		return "", false
	}

	for _, seg := range relSegs {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(acc) == 0 {
				return "", false
			}
			acc = acc[:len(acc)-1]
		default:
			acc = append(acc, seg)
		}
	}

	if len(acc) == 0 {
		return "", false
	}
	// The final resolved segment must be a real (non-directory) segment:
	// if rel's last raw segment was "" or "." or "..", there is no final
	// filename component to land on.
	last := relSegs[len(relSegs)-1]
	if last == "" || last == "." || last == ".." {
		return "", false
	}

	return model.JoinPath(acc...), true
}

// splitRaw splits rel on "/" without dropping empty segments, so callers
// can distinguish a trailing slash / "." / ".." from a real filename.
func splitRaw(rel string) []string {
	if rel == "" {
		return nil
	}
	return strings.Split(rel, "/")
}

// RootToDoc computes the minimal document-relative reference from doc to
// target: strip the common segment prefix (case-sensitive), emit one
// ".." per remaining directory of doc, then the remaining segments of
// target (spec.md §4.2).
func RootToDoc(target, doc model.Path) string {
	targetSegs := target.Segments()
	docSegs := doc.Segments()
	docDirSegs := docSegs
	if len(docDirSegs) > 0 {
		docDirSegs = docDirSegs[:len(docDirSegs)-1]
	}

	// maxCommon keeps at least one segment of target (its filename)
	// un-consumed by the shared-prefix strip.
	common := 0
	maxCommon := len(docDirSegs)
	if len(targetSegs) > 0 && len(targetSegs)-1 < maxCommon {
		maxCommon = len(targetSegs) - 1
	}
	for common < maxCommon && docDirSegs[common] == targetSegs[common] {
		common++
	}

	ups := len(docDirSegs) - common
	var out []string
	for i := 0; i < ups; i++ {
		out = append(out, "..")
	}
	out = append(out, targetSegs[common:]...)
	if len(out) == 0 {
		return "."
	}
	return strings.Join(out, "/")
}
