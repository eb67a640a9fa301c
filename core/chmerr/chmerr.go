// Package chmerr defines the distinct error and warning kinds of
// spec.md §7, so callers can distinguish "degrade to # and warn" from
// "abort the run" with errors.As rather than string matching.
package chmerr

import "fmt"

// Kind names one of spec.md §7's error categories.
type Kind int

const (
	UnresolvedReference Kind = iota
	ReferenceEscapesRoot
	UnknownSchemeArchive
	NoResolutionPage
	MalformedBinary
	WorkerFailure
	FilesystemAccessDenied
	DuplicateArchiveStem
)

func (k Kind) String() string {
	switch k {
	case UnresolvedReference:
		return "unresolved reference"
	case ReferenceEscapesRoot:
		return "reference escapes root"
	case UnknownSchemeArchive:
		return "unknown archive in scheme-tagged reference"
	case NoResolutionPage:
		return "object without DEFAULTTOPIC / no resolution page"
	case MalformedBinary:
		return "malformed binary header/block"
	case WorkerFailure:
		return "worker error"
	case FilesystemAccessDenied:
		return "filesystem access denied"
	case DuplicateArchiveStem:
		return "duplicate archive stem"
	}
	return "unknown error kind"
}

// Fatal reports whether errors of this kind must abort the run
// (spec.md §7's propagation policy: only structural corruption and
// unexpected worker death halt processing).
func (k Kind) Fatal() bool {
	switch k {
	case MalformedBinary, WorkerFailure, DuplicateArchiveStem:
		return true
	default:
		return false
	}
}

// Warning is a non-fatal problem recorded during scanning or rewriting:
// it never aborts the run, it degrades to a placeholder ("#") and is
// reported to a WarningSink.
type Warning struct {
	Kind Kind
	Page string // source page path, if applicable
	Line int    // 1-based, 0 if unknown
	Msg  string
}

func (w *Warning) Error() string {
	if w.Page != "" {
		return fmt.Sprintf("%s: %s:%d: %s", w.Kind, w.Page, w.Line, w.Msg)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Msg)
}

// FatalError wraps a structural failure that must abort the run.
type FatalError struct {
	Kind Kind
	Err  error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *FatalError) Unwrap() error { return e.Err }

// NewFatal wraps err as a FatalError of the given kind.
func NewFatal(kind Kind, err error) *FatalError {
	return &FatalError{Kind: kind, Err: err}
}

// WarningSink receives warnings in emission order. The CLI binds one
// backed by core/logging; tests bind one that just appends to a slice.
type WarningSink interface {
	Warn(w *Warning)
}

// SliceSink is a WarningSink that accumulates into a slice, handy for
// tests.
type SliceSink struct {
	Warnings []*Warning
}

func (s *SliceSink) Warn(w *Warning) { s.Warnings = append(s.Warnings, w) }
