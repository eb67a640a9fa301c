package rewrite

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"chmweb/core/model"
)

// attrReCache memoises the per-attribute-name matcher built by attrRe.
// core/site.RenderAll rewrites pages from several goroutines at once, so
// every access goes through attrReMu.
var (
	attrReMu    sync.Mutex
	attrReCache = map[string]*regexp.Regexp{}
)

func attrRe(name string) *regexp.Regexp {
	attrReMu.Lock()
	defer attrReMu.Unlock()
	if re, ok := attrReCache[name]; ok {
		return re
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\s*=\s*("([^"]*)"|'([^']*)'|([^\s/>]+))`)
	attrReCache[name] = re
	return re
}

// attrValueSpan locates the byte span of name's value within raw, a whole
// start tag's raw bytes, excluding any surrounding quotes. Matching against
// the tag's own raw bytes (rather than reconstructing the tag from the
// parsed attribute list) is what lets sibling attributes, their original
// quoting, and the tag's original capitalisation survive a rewrite
// untouched (spec.md §8, scenario 1).
func attrValueSpan(raw []byte, name string) (start, end int, ok bool) {
	loc := attrRe(name).FindSubmatchIndex(raw)
	if loc == nil {
		return 0, 0, false
	}
	switch {
	case loc[4] != -1:
		return loc[4], loc[5], true
	case loc[6] != -1:
		return loc[6], loc[7], true
	case loc[8] != -1:
		return loc[8], loc[9], true
	}
	return 0, 0, false
}

func escapeAttrValue(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}

// spliceAttrValue builds a Splice replacing name's existing value with
// newVal. tagOffset is the start tag's absolute byte offset in the page.
func spliceAttrValue(tagOffset int, raw []byte, name, newVal string) (Splice, bool) {
	start, end, ok := attrValueSpan(raw, name)
	if !ok {
		return Splice{}, false
	}
	return Splice{
		ByteOffset:     tagOffset + start,
		OriginalLength: end - start,
		Replacement:    []byte(escapeAttrValue(newVal)),
	}, true
}

// tagCloseOffset returns the local offset within raw of the tag's closing
// ">" (or the "/" of a self-closing "/>"), the point at which a new
// attribute is inserted.
func tagCloseOffset(raw []byte) int {
	n := len(raw)
	if n >= 2 && raw[n-1] == '>' && raw[n-2] == '/' {
		return n - 2
	}
	if n >= 1 && raw[n-1] == '>' {
		return n - 1
	}
	return n
}

func insertAttr(tagOffset int, raw []byte, name, value string) Splice {
	at := tagCloseOffset(raw)
	text := fmt.Sprintf(` %s="%s"`, name, escapeAttrValue(value))
	return Splice{ByteOffset: tagOffset + at, OriginalLength: 0, Replacement: []byte(text)}
}

// applyClass ensures marker is present in the tag's class attribute,
// inserting the attribute if absent and appending the token if the
// attribute exists but lacks it. ok is false if marker is already present
// and nothing needs to change.
func applyClass(tagOffset int, raw []byte, attrs model.AttrList, marker string) (Splice, bool) {
	existing, has := attrs.Get("class")
	if !has {
		return insertAttr(tagOffset, raw, "class", marker), true
	}
	for _, tok := range strings.Fields(existing) {
		if tok == marker {
			return Splice{}, false
		}
	}
	start, end, ok := attrValueSpan(raw, "class")
	if !ok {
		return Splice{}, false
	}
	newVal := existing + " " + marker
	return Splice{ByteOffset: tagOffset + start, OriginalLength: end - start, Replacement: []byte(escapeAttrValue(newVal))}, true
}
