// Package site implements the output-page emission side of the Link
// Resolver & Rewriter (C9, spec.md §4.9): wrapper pages, contents
// (navigation) pages, and resolution pages, minified and optionally
// gzipped on write to the destination filesystem.
//
// Grounded on the teacher's builder/renderer package: an afero.Fs
// destination, an html/template-rendered page, and a
// github.com/tdewolff/minify/v2 pass before the bytes hit disk
// (builder/renderer/renderer.go, builder/utils/minifier.go).
package site

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"

	"chmweb/core/model"
	"chmweb/core/pathalg"
)

// navFrameName and contentFrameName are the wrapper frameset's two frame
// names (spec.md §4.9, "Wrapper pages"): the navigation pane stays put
// across topic clicks while the content pane is replaced.
const (
	navFrameName     = "chmweb-toc"
	contentFrameName = "chmweb-content"
)

// contentPath returns the path the rewritten page body is written to:
// name.ext -> name.content.ext (spec.md §6, "Persisted output layout").
func contentPath(p model.Path) model.Path {
	return p.WithExt(".content" + p.Ext())
}

// tocFilename names the contents page for the container at path (as
// returned by Tree.Path): the root container is always "_toc/toc.html"
// (spec.md §4.9, "A root page _toc/toc.html is always emitted"); any
// other container is "_toc/tocX_Y_Z.html".
func tocFilename(path []int) model.Path {
	if len(path) == 0 {
		return "_toc/toc.html"
	}
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return model.Path("_toc/toc" + strings.Join(parts, "_") + ".html")
}

// nodeAnchorID names the stable in-page anchor a node's <li> carries on
// whichever contents page renders it, so a wrapper page elsewhere can
// link straight to it.
func nodeAnchorID(tree *model.Tree, idx model.NodeIndex) string {
	path := tree.Path(idx)
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return "n" + strings.Join(parts, "_")
}

// tocOwner returns the node whose own contents page hosts idx's anchor:
// idx itself if it is a container (has children, or is the root), else
// its parent (every non-root node's parent trivially has at least one
// child — idx itself — so this never needs to climb more than one level).
func tocOwner(tree *model.Tree, idx model.NodeIndex) model.NodeIndex {
	if idx == tree.Root() || len(tree.Node(idx).Children) > 0 {
		return idx
	}
	return tree.Node(idx).Parent
}

// ancestorChain returns the path from the root to idx inclusive.
func ancestorChain(tree *model.Tree, idx model.NodeIndex) []model.NodeIndex {
	var rev []model.NodeIndex
	cur := idx
	for {
		rev = append(rev, cur)
		if cur == tree.Root() {
			break
		}
		cur = tree.Node(cur).Parent
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// tocNode is one rendered <li> of a contents page.
type tocNode struct {
	Title    string
	Href     string
	Target   string
	AnchorID string
	Expanded bool
	Children []tocNode
}

var tocPageTemplate = template.Must(template.New("toc").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
{{template "children" .Children}}
</body>
</html>
{{define "children"}}<ul>
{{range .}}<li id="{{.AnchorID}}">{{if .Href}}<a href="{{.Href}}"{{if .Target}} target="{{.Target}}"{{end}}>{{.Title}}</a>{{else}}{{.Title}}{{end}}
{{if .Expanded}}{{template "children" .Children}}{{end}}</li>
{{end}}</ul>
{{end}}
`))

// buildNode renders idx and, if it lies on the expand set, its children
// too (spec.md §4.9: "expanded along the path X, Y, Z ... inline-expanded
// collapsed siblings linking to their own contents pages").
func buildNode(tree *model.Tree, idx model.NodeIndex, expand map[model.NodeIndex]bool, tocPagePath model.Path) tocNode {
	n := tree.Node(idx)
	tn := tocNode{Title: n.Title, AnchorID: nodeAnchorID(tree, idx)}
	if tn.Title == "" {
		tn.Title = string(n.Filename)
	}

	switch {
	case n.Kind == model.NodePage:
		tn.Href = pathalg.RootToDoc(contentPath(n.Filename), tocPagePath)
		tn.Target = contentFrameName
	case len(n.Children) > 0 && !expand[idx]:
		tn.Href = pathalg.RootToDoc(tocFilename(tree.Path(idx)), tocPagePath)
	}

	if expand[idx] {
		tn.Expanded = true
		for _, c := range n.Children {
			tn.Children = append(tn.Children, buildNode(tree, c, expand, tocPagePath))
		}
	}
	return tn
}

// renderTocPage renders the contents page owned by the container at idx.
func renderTocPage(tree *model.Tree, idx model.NodeIndex) ([]byte, model.Path) {
	tocPath := tocFilename(tree.Path(idx))

	expand := make(map[model.NodeIndex]bool)
	for _, c := range ancestorChain(tree, idx) {
		expand[c] = true
	}

	root := tree.Root()
	var children []tocNode
	for _, c := range tree.Node(root).Children {
		children = append(children, buildNode(tree, c, expand, tocPath))
	}

	title := tree.Node(idx).Title
	if title == "" {
		title = "Contents"
	}
	data := struct {
		Title    string
		Children []tocNode
	}{Title: title, Children: children}

	var buf bytes.Buffer
	if err := tocPageTemplate.Execute(&buf, data); err != nil {
		panic(err) // the template is a package-level constant; a failure here is a bug
	}
	return buf.Bytes(), tocPath
}

// RenderAllTocPages renders every interior container's contents page
// (spec.md §4.9, "For each interior container in the contents tree").
func RenderAllTocPages(tree *model.Tree) map[model.Path][]byte {
	out := make(map[model.Path][]byte)
	tree.Walk(tree.Root(), func(idx model.NodeIndex, n *model.Node) bool {
		if idx == tree.Root() || len(n.Children) > 0 {
			b, p := renderTocPage(tree, idx)
			out[p] = b
		}
		return true
	})
	return out
}
