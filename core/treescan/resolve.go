package treescan

import (
	"regexp"
	"strings"

	"chmweb/core/model"
	"chmweb/core/pathalg"
)

var schemeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*:`)

// discoveryTarget computes the root-relative form of a raw href/src
// string found on doc (itself root-relative), for the purposes of
// discovery only (spec.md §4.8 step 3: "compute its root-relative form
// via C2 using the page's owning archive's subdirectory"). It is
// deliberately narrower than C9's full ten-step resolution: a
// scheme-prefixed reference (including ms-its:/mk:@MSITStore:) is never
// itself a discoverable local page, so it is reported as not
// discoverable here; C9 still rewrites it at emission time.
func discoveryTarget(subdir string, doc model.Path, ref string) (model.Path, bool) {
	base, _ := model.SplitAnchor(ref)
	if base == "" {
		return "", false
	}
	if schemeRe.MatchString(base) {
		return "", false
	}
	if strings.HasPrefix(base, "/") {
		trimmed := strings.TrimPrefix(base, "/")
		return model.JoinPath(subdir, trimmed), true
	}
	target, ok := pathalg.DocToRoot(base, doc)
	return target, ok
}
