package fsx

import "chmweb/core/model"

// ResolveMixedCase returns the canonically-cased version of path anchored
// at prefix (spec.md §4.2): if the exact path exists, return it
// unchanged; otherwise, for each segment, enumerate case-insensitive
// siblings at the accumulated prefix and recurse depth-first, returning
// the first candidate that fully resolves. Returns ok=false if no
// candidate resolves to an existing entry.
func (c *Cache) ResolveMixedCase(path model.Path, prefix model.Path) (model.Path, bool) {
	full := joinUnder(prefix, path)
	if c.Exists(full) {
		return path, true
	}
	return c.resolveSegments(path.Segments(), prefix)
}

func joinUnder(prefix, rel model.Path) model.Path {
	if prefix == "" {
		return rel
	}
	if rel == "" {
		return prefix
	}
	return model.Path(string(prefix) + "/" + string(rel))
}

// resolveSegments recurses over the remaining path segments, trying each
// case-insensitive sibling of the first segment at prefix in filesystem
// enumeration order, and returns the full resolved relative path (from
// the original path's anchor) on the first success.
func (c *Cache) resolveSegments(segments []string, prefix model.Path) (model.Path, bool) {
	if len(segments) == 0 {
		return "", true
	}
	head, rest := segments[0], segments[1:]

	candidates := c.CaseInsensitiveChildren(prefix, head)
	for _, cand := range candidates {
		candPrefix := joinUnder(prefix, model.Path(cand))
		if len(rest) == 0 {
			if c.Exists(candPrefix) {
				return model.Path(cand), true
			}
			continue
		}
		if !c.IsDir(candPrefix) {
			continue
		}
		if tail, ok := c.resolveSegments(rest, candPrefix); ok {
			return model.JoinPath(cand, string(tail)), true
		}
	}
	return "", false
}
