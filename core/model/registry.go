package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var foldCaser = cases.Fold()

// FoldCase returns the Unicode case-folded form of s, used for every
// case-insensitive comparison in chmweb (archive stems, path segments).
// Keyword display names are looked up exactly, without folding. Using golang.org/x/text/cases rather than
// strings.ToLower avoids the ASCII bias of a naive lower-case compare.
func FoldCase(s string) string {
	return foldCaser.String(s)
}

var _ = language.Und // keep golang.org/x/text/language linked for cases.Fold's tables

// ArchiveRegistry maps an archive-stem (case-folded) to its output
// subdirectory (possibly empty, for a single-archive run with no
// subdirectory nesting).
type ArchiveRegistry struct {
	byStem map[string]archiveEntry
	order  []string // insertion order of canonical stems, for deterministic iteration
}

type archiveEntry struct {
	stem   string // original-case stem
	subdir string
}

// NewArchiveRegistry returns an empty registry.
func NewArchiveRegistry() *ArchiveRegistry {
	return &ArchiveRegistry{byStem: make(map[string]archiveEntry)}
}

// ErrDuplicateStem is returned by Register when stem (case-folded)
// already exists (spec.md §7, "Duplicate archive stem": fatal at
// registration time).
type ErrDuplicateStem struct{ Stem string }

func (e *ErrDuplicateStem) Error() string {
	return fmt.Sprintf("duplicate archive stem: %q", e.Stem)
}

// Register adds stem -> subdir. Fatal error on a case-folded collision.
func (r *ArchiveRegistry) Register(stem, subdir string) error {
	key := FoldCase(stem)
	if _, exists := r.byStem[key]; exists {
		return &ErrDuplicateStem{Stem: stem}
	}
	r.byStem[key] = archiveEntry{stem: stem, subdir: subdir}
	r.order = append(r.order, key)
	return nil
}

// SubdirByStem looks up an archive's output subdirectory by its stem,
// case-insensitively.
func (r *ArchiveRegistry) SubdirByStem(stem string) (string, bool) {
	e, ok := r.byStem[FoldCase(stem)]
	return e.subdir, ok
}

// stripArchiveSuffix removes a trailing .chm/.chi/.chw extension,
// case-insensitively.
func stripArchiveSuffix(filename string) string {
	lower := strings.ToLower(filename)
	for _, suf := range []string{".chm", ".chi", ".chw"} {
		if strings.HasSuffix(lower, suf) {
			return filename[:len(filename)-len(suf)]
		}
	}
	return filename
}

// SubdirByFilename looks up an archive's subdirectory by a full filename
// that may carry a .chm/.chi/.chw suffix, stripped case-insensitively
// before lookup.
func (r *ArchiveRegistry) SubdirByFilename(filename string) (string, bool) {
	return r.SubdirByStem(stripArchiveSuffix(filename))
}

// StemBySubdirPrefix reverse-looks-up the archive stem whose subdirectory
// is a proper prefix of p. Returns ok=false if no archive claims p; if
// more than one does, the one with the longest subdirectory wins.
// Archives with an empty subdirectory never match.
func (r *ArchiveRegistry) StemBySubdirPrefix(p Path) (stem string, ok bool) {
	s := string(p)
	bestLen := -1
	for _, key := range r.order {
		e := r.byStem[key]
		if e.subdir == "" {
			continue
		}
		prefix := e.subdir + "/"
		if strings.HasPrefix(s, prefix) && len(prefix) > bestLen {
			stem = e.stem
			ok = true
			bestLen = len(prefix)
		}
	}
	return stem, ok
}

// Stems returns every registered stem in registration order (original
// case).
func (r *ArchiveRegistry) Stems() []string {
	out := make([]string, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.byStem[key].stem)
	}
	return out
}
