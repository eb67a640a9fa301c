package rewrite

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"chmweb/core/model"
	"chmweb/core/sgml"
)

// jsClickRe matches the href form of an object-mediated link (spec.md
// §4.9, "Object-mediated links").
var jsClickRe = regexp.MustCompile(`(?i)^javascript:\s*([A-Za-z_][A-Za-z0-9_]*)\.click\(\)\s*;?\s*$`)

// Rewrite builds the splice list for one page by walking its element
// events a second time (spec.md §4.9) and applies it, returning the
// rewritten bytes.
func (r *Resolver) Rewrite(rec *model.PageRecord, src []byte) []byte {
	objByStart := make(map[int]model.Object, len(rec.Objects))
	for _, o := range rec.Objects {
		objByStart[o.StartByte] = o
	}

	b := &pageBuilder{r: r, rec: rec, src: src, objByStart: objByStart}
	_ = sgml.Parse(src, b)
	return ApplySplices(src, b.splices)
}

type pageBuilder struct {
	r          *Resolver
	rec        *model.PageRecord
	src        []byte
	objByStart map[int]model.Object

	splices []Splice

	// skipUntil suppresses events whose byte offset falls inside a span
	// already consumed by a whole-object replacement.
	skipUntil int
}

func (b *pageBuilder) raw(loc sgml.Loc) []byte {
	return b.src[loc.ByteOffset : loc.ByteOffset+loc.Length]
}

func (b *pageBuilder) StartElement(name string, attrs model.AttrList, loc sgml.Loc) {
	if loc.ByteOffset < b.skipUntil {
		return
	}
	switch model.FoldCase(name) {
	case "a":
		b.rewriteAnchor(loc, attrs)
	case "img":
		b.rewriteAssetAttr(loc, attrs, "src")
	case "link":
		b.rewriteAssetAttr(loc, attrs, "href")
	case "script":
		b.rewriteAssetAttr(loc, attrs, "src")
	case "object":
		b.rewriteObject(loc)
	}
}

func (b *pageBuilder) EndElement(name string, loc sgml.Loc) {}

func (b *pageBuilder) Characters(data []byte, loc sgml.Loc) {}

func (b *pageBuilder) rewriteAnchor(loc sgml.Loc, attrs model.AttrList) {
	href, ok := attrs.Get("href")
	if !ok {
		return
	}

	var res Result
	var class string
	if m := jsClickRe.FindStringSubmatch(href); m != nil {
		r2, cls, found := b.r.ResolveObjectClick(b.rec.Path, b.rec.ArchiveStem, b.rec.Objects, m[1])
		if !found {
			return
		}
		res, class = r2, cls
	} else {
		res = b.r.Resolve(b.rec.Path, b.rec.ArchiveStem, href)
	}

	raw := b.raw(loc)
	if res.Changed {
		if sp, ok := spliceAttrValue(loc.ByteOffset, raw, "href", res.Rewritten); ok {
			b.splices = append(b.splices, sp)
		}
	}
	if res.Target != "" {
		if _, has := attrs.Get("target"); !has {
			b.splices = append(b.splices, insertAttr(loc.ByteOffset, raw, "target", res.Target))
		}
	}
	if class != "" {
		if sp, changed := applyClass(loc.ByteOffset, raw, attrs, class); changed {
			b.splices = append(b.splices, sp)
		}
	}
}

func (b *pageBuilder) rewriteAssetAttr(loc sgml.Loc, attrs model.AttrList, attrName string) {
	val, ok := attrs.Get(attrName)
	if !ok {
		return
	}
	res := b.r.Resolve(b.rec.Path, b.rec.ArchiveStem, val)
	if !res.Changed {
		return
	}
	if sp, ok := spliceAttrValue(loc.ByteOffset, b.raw(loc), attrName, res.Rewritten); ok {
		b.splices = append(b.splices, sp)
	}
}

func (b *pageBuilder) rewriteObject(loc sgml.Loc) {
	obj, ok := b.objByStart[loc.ByteOffset]
	if !ok || !obj.IsHTMLHelpControl() {
		return
	}

	if text, ok := obj.Param("Text"); ok {
		res, class := b.r.resolveControl(b.rec.Path, b.rec.ArchiveStem, obj)
		replacement := buildControlAnchor(res, class, text)
		b.replaceObject(obj, replacement)
		return
	}
	if button, ok := obj.Param("Button"); ok {
		b.replaceObject(obj, buildButtonMarkup(button))
		return
	}
}

func (b *pageBuilder) replaceObject(obj model.Object, replacement string) {
	b.splices = append(b.splices, Splice{
		ByteOffset:     obj.StartByte,
		OriginalLength: obj.TotalBytes,
		Replacement:    []byte(replacement),
	})
	b.skipUntil = obj.StartByte + obj.TotalBytes
}

func buildControlAnchor(res Result, class, text string) string {
	var sb strings.Builder
	sb.WriteString(`<a href="`)
	sb.WriteString(escapeAttrValue(res.Rewritten))
	sb.WriteByte('"')
	if res.Target != "" {
		sb.WriteString(` target="`)
		sb.WriteString(escapeAttrValue(res.Target))
		sb.WriteByte('"')
	}
	if class != "" {
		sb.WriteString(` class="`)
		sb.WriteString(escapeAttrValue(class))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	sb.WriteString(html.EscapeString(text))
	sb.WriteString(`</a>`)
	return sb.String()
}

// buildButtonMarkup renders the classified shape of a Button parameter
// (spec.md §4.9: "text/icon/bitmap/shortcut/chiclet"). The value's
// "Kind:rest" form follows the HTML Help ActiveX control's own button
// parameter syntax; the rendered shape is cosmetic, so only the kind and
// caption survive into a minimal marker element.
func buildButtonMarkup(value string) string {
	kind, rest := "text", value
	if i := strings.IndexByte(value, ':'); i >= 0 {
		kind, rest = model.FoldCase(value[:i]), value[i+1:]
	}
	caption := rest
	if j := strings.IndexByte(rest, ','); j >= 0 {
		caption = rest[j+1:]
	}
	return fmt.Sprintf(`<span class="chmweb-button chmweb-button-%s">%s</span>`, html.EscapeString(kind), html.EscapeString(caption))
}
