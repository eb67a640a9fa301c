package treescan

import "chmweb/core/model"

// graft recursively copies srcIdx and its descendants from src into dst
// as a new child of parent, and returns the new node's index in dst.
func graft(dst *model.Tree, parent model.NodeIndex, src *model.Tree, srcIdx model.NodeIndex) model.NodeIndex {
	s := src.Node(srcIdx)
	idx := dst.AddChild(parent, model.Node{
		Kind:        s.Kind,
		Title:       s.Title,
		Filename:    s.Filename,
		Anchor:      s.Anchor,
		ArchiveStem: s.ArchiveStem,
		Synthetic:   s.Synthetic,
	})
	for _, c := range s.Children {
		graft(dst, idx, src, c)
	}
	return idx
}

// replacePlaceholder implements the Placeholder-replacement protocol
// (spec.md §4.6/§4.8 step 2) for a whole subtree rather than the flat
// model.Tree.Replace: placeholder is removed from its parent's child
// list and replaced, in order, by src's top-level children, grafted
// recursively into dst.
func replacePlaceholder(dst *model.Tree, placeholder model.NodeIndex, src *model.Tree) {
	parent := dst.Node(placeholder).Parent
	kids := append([]model.NodeIndex{}, dst.Node(parent).Children...)
	pos := -1
	for i, c := range kids {
		if c == placeholder {
			pos = i
			break
		}
	}
	if pos < 0 {
		return
	}
	dst.Node(placeholder).Parent = model.NoParent

	srcRoots := src.Node(src.Root()).Children
	newIdxs := make([]model.NodeIndex, 0, len(srcRoots))
	for _, c := range srcRoots {
		newIdxs = append(newIdxs, graft(dst, parent, src, c))
	}

	merged := make([]model.NodeIndex, 0, len(kids)-1+len(newIdxs))
	merged = append(merged, kids[:pos]...)
	merged = append(merged, newIdxs...)
	merged = append(merged, kids[pos+1:]...)
	dst.Node(parent).Children = merged
}
