// Package model defines the shared data types that flow between chmweb's
// pipeline stages: paths, topics, the contents tree, and page records.
package model

import "strings"

// Path is a forward-slash separated, non-empty-segment sequence. It is
// either root-relative (anchored at the output directory) or
// document-relative (anchored at some page); callers must track which
// flavour a given Path value holds, since the string representation is
// identical for both.
type Path string

// Segments splits p into its non-empty path segments.
func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	parts := strings.Split(string(p), "/")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// JoinPath joins segments with "/", skipping empty ones.
func JoinPath(segments ...string) Path {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			out = append(out, s)
		}
	}
	return Path(strings.Join(out, "/"))
}

// Ext returns the lower-cased filename extension of p, including the dot,
// or "" if p has no extension.
func (p Path) Ext() string {
	s := string(p)
	slash := strings.LastIndexByte(s, '/')
	base := s
	if slash >= 0 {
		base = s[slash+1:]
	}
	dot := strings.LastIndexByte(base, '.')
	if dot < 0 {
		return ""
	}
	return strings.ToLower(base[dot:])
}

// WithExt returns p with its extension (if any) replaced by ext.
func (p Path) WithExt(ext string) Path {
	s := string(p)
	cur := p.Ext()
	if cur != "" {
		return Path(s[:len(s)-len(cur)] + ext)
	}
	return Path(s + ext)
}

// SplitAnchor splits off a trailing "#anchor" suffix, if present.
func SplitAnchor(ref string) (base string, anchor string) {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, ""
}
