package site

import (
	"bytes"
	"html/template"

	"chmweb/core/model"
	"chmweb/core/pathalg"
)

var wrapperTemplate = template.Must(template.New("wrapper").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<frameset cols="250,*">
<frame name="` + navFrameName + `" src="{{.TocSrc}}">
<frame name="` + contentFrameName + `" src="{{.ContentSrc}}">
<noframes><body>{{.Title}}</body></noframes>
</frameset>
</html>
`))

// buildWrapper renders the two-frame shell a page's own path is written
// to (spec.md §4.9, "Wrapper pages"): a navigation frame pointing at the
// contents page covering this page's position, and a content frame
// pointing at the page's own rewritten body.
func buildWrapper(title, tocSrc, contentSrc string) []byte {
	data := struct{ Title, TocSrc, ContentSrc string }{title, tocSrc, contentSrc}
	var buf bytes.Buffer
	if err := wrapperTemplate.Execute(&buf, data); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// wrapperFor builds the wrapper page for rec. If rec isn't attached to
// the contents tree, its navigation frame has nothing to point at and
// falls back to "#" (the page was reached by a direct link rather than
// by browsing the contents, e.g. an orphaned page — spec.md §9).
func wrapperFor(tree *model.Tree, rec *model.PageRecord) []byte {
	contentSrc := pathalg.RootToDoc(contentPath(rec.Path), rec.Path)

	tocSrc := "#"
	if rec.HasContentsTreePath {
		if idx, ok := tree.NodeAt(rec.ContentsTreePath); ok {
			owner := tocOwner(tree, idx)
			tocPath := tocFilename(tree.Path(owner))
			tocSrc = pathalg.RootToDoc(tocPath, rec.Path) + "#" + nodeAnchorID(tree, idx)
		}
	}

	title := rec.Title
	if title == "" {
		title = string(rec.Path)
	}
	return buildWrapper(title, tocSrc, contentSrc)
}
