// Package contents implements the Contents Parser (C6, spec.md §4.6): it
// turns an HHC table-of-contents file or a COL collection file into the
// arena-indexed contents Tree (core/model), using core/sgml for tokenized
// byte-offset events rather than a DOM tree.
package contents

import (
	"chmweb/core/model"
	"chmweb/core/sgml"
)

// liFrame tracks the currently-open <li> at one <ul> nesting level, so
// that <param> events occurring before the next <li>/<ul>/</li> are
// attributed to the right node.
type liFrame struct {
	open  model.NodeIndex
	hasLi bool
}

type hhcBuilder struct {
	tree *model.Tree

	// container stack: the node whose children new top-level <li>s in
	// the current <ul> attach to. containerStack[0] is the tree root.
	containerStack []model.NodeIndex
	liStack        []liFrame
}

// ParseHHC parses an HHC (table of contents) buffer into a fresh Tree
// rooted at a Root node, applying the synthetic-wrapper-flatten rule of
// spec.md §4.6 before returning.
func ParseHHC(src []byte) (*model.Tree, error) {
	tree := model.NewTree()
	b := &hhcBuilder{
		tree:           tree,
		containerStack: []model.NodeIndex{tree.Root()},
		liStack:        []liFrame{{}},
	}
	if err := sgml.Parse(src, b); err != nil {
		return nil, err
	}
	flattenSyntheticWrappers(tree, tree.Root())
	return tree, nil
}

func (b *hhcBuilder) top() model.NodeIndex { return b.containerStack[len(b.containerStack)-1] }

func (b *hhcBuilder) StartElement(name string, attrs model.AttrList, loc sgml.Loc) {
	switch model.FoldCase(name) {
	case "ul", "menu", "dir":
		b.openList()
	case "li":
		b.openItem()
	case "param":
		b.applyParam(attrs)
	}
}

func (b *hhcBuilder) EndElement(name string, loc sgml.Loc) {
	switch model.FoldCase(name) {
	case "ul", "menu", "dir":
		b.closeList()
	case "li":
		b.closeItem()
	}
}

func (b *hhcBuilder) Characters(data []byte, loc sgml.Loc) {}

// openList handles a <ul>: if the current nesting level has a still-open
// <li>, the new list nests under it; otherwise no open <li> claims this
// list (the file closed its parent <li> early, or this is a bare
// top-level list) and a synthetic empty Folder wrapper is manufactured to
// hold it, per spec.md §4.6.
func (b *hhcBuilder) openList() {
	var parent model.NodeIndex
	if len(b.containerStack) == 1 {
		// The outermost <ul> is the document's root sitemap list: it has
		// no enclosing <li> by construction, and needs no wrapper.
		parent = b.top()
	} else {
		level := len(b.liStack) - 1
		frame := b.liStack[level]
		if frame.hasLi {
			parent = frame.open
		} else {
			parent = b.tree.AddChild(b.top(), model.Node{Kind: model.NodeFolder, Synthetic: true})
		}
	}
	b.containerStack = append(b.containerStack, parent)
	b.liStack = append(b.liStack, liFrame{})
}

func (b *hhcBuilder) closeList() {
	if len(b.containerStack) <= 1 {
		return // unbalanced </ul> at the root: ignore rather than underflow
	}
	b.containerStack = b.containerStack[:len(b.containerStack)-1]
	b.liStack = b.liStack[:len(b.liStack)-1]
}

// openItem handles a <li>: it implicitly closes any previously open <li>
// at this level (the common case of a file never emitting </li>), then
// opens a new node. Kind starts as Folder and is upgraded to Page the
// first time a Local <param> arrives.
func (b *hhcBuilder) openItem() {
	level := len(b.liStack) - 1
	idx := b.tree.AddChild(b.top(), model.Node{Kind: model.NodeFolder})
	b.liStack[level] = liFrame{open: idx, hasLi: true}
}

func (b *hhcBuilder) closeItem() {
	level := len(b.liStack) - 1
	b.liStack[level] = liFrame{}
}

func (b *hhcBuilder) applyParam(attrs model.AttrList) {
	level := len(b.liStack) - 1
	frame := b.liStack[level]
	if !frame.hasLi {
		return
	}
	name, _ := attrs.Get("name")
	value, _ := attrs.Get("value")
	node := b.tree.Node(frame.open)
	switch model.FoldCase(name) {
	case "name":
		node.Title = value
	case "local":
		target, anchor := model.SplitAnchor(value)
		node.Filename = model.Path(target)
		node.Anchor = anchor
		node.Kind = model.NodePage
	}
}

// flattenSyntheticWrappers walks the tree post-order and merges every
// synthetic wrapper Folder (one with no Title/Filename of its own) into
// its previous sibling, per spec.md §4.6. A wrapper with no previous
// sibling is left in place (spec.md §9, Open Questions).
func flattenSyntheticWrappers(tree *model.Tree, idx model.NodeIndex) {
	for _, c := range tree.Node(idx).Children {
		flattenSyntheticWrappers(tree, c)
	}

	kids := tree.Node(idx).Children
	out := kids[:0:0]
	for pos, c := range kids {
		child := tree.Node(c)
		if child.Synthetic && child.Title == "" && child.Filename == "" && pos > 0 {
			prevIdx := kids[pos-1]
			prev := tree.Node(prevIdx)
			for _, gc := range child.Children {
				tree.Node(gc).Parent = prevIdx
			}
			prev.Children = append(prev.Children, child.Children...)
			child.Children = nil
			child.Parent = model.NoParent
			continue
		}
		out = append(out, c)
	}
	tree.Node(idx).Children = out
}
