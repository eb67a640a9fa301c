package rewrite

import (
	"regexp"
	"strings"

	"chmweb/core/model"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

const resolutionNameMaxLen = 48

// SanitiseResolutionName implements the resolution-page filename rule
// of spec.md §4.9: lowercase, collapse runs of non-alphanumerics to a
// single underscore, then truncate to 48 characters. Disambiguation
// suffixes are applied separately by the caller once it knows whether
// the name collides with one already in use.
func SanitiseResolutionName(s string) string {
	lower := model.FoldCase(s)
	collapsed := nonAlnumRun.ReplaceAllString(lower, "_")
	collapsed = strings.Trim(collapsed, "_")
	if collapsed == "" {
		collapsed = "_"
	}
	if len(collapsed) > resolutionNameMaxLen {
		collapsed = collapsed[:resolutionNameMaxLen]
	}
	return collapsed
}
