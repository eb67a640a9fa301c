package contents

import (
	"testing"

	"chmweb/core/model"
)

func titleOf(tree *model.Tree, idx model.NodeIndex) string { return tree.Node(idx).Title }

func TestParseHHCBasicNesting(t *testing.T) {
	src := []byte(`
<UL>
  <LI><OBJECT type="text/sitemap">
      <param name="Name" value="Introduction">
      <param name="Local" value="intro.htm">
      </OBJECT>
    <UL>
      <LI><OBJECT type="text/sitemap">
          <param name="Name" value="Sub topic">
          <param name="Local" value="sub.htm">
          </OBJECT>
    </UL>
  </LI>
</UL>
`)
	tree, err := ParseHHC(src)
	if err != nil {
		t.Fatal(err)
	}
	root := tree.Root()
	kids := tree.Node(root).Children
	if len(kids) != 1 {
		t.Fatalf("expected 1 top-level node, got %d", len(kids))
	}
	intro := tree.Node(kids[0])
	if intro.Kind != model.NodePage || intro.Filename != "intro.htm" {
		t.Fatalf("got %+v", intro)
	}
	if len(intro.Children) != 1 {
		t.Fatalf("expected Introduction to have 1 child, got %d", len(intro.Children))
	}
	sub := tree.Node(intro.Children[0])
	if sub.Kind != model.NodePage || sub.Filename != "sub.htm" {
		t.Fatalf("got %+v", sub)
	}
}

// TestParseHHCSyntheticWrapperFlatten pins spec.md §4.6: when a file
// closes </LI> before opening the nested <UL>, the parser would
// otherwise manufacture an empty wrapper folder to hold that <UL> — this
// wrapper must be flattened into its previous sibling after parsing.
func TestParseHHCSyntheticWrapperFlatten(t *testing.T) {
	src := []byte(`
<UL>
  <LI><OBJECT type="text/sitemap">
      <param name="Name" value="Chapter 1">
      <param name="Local" value="ch1.htm">
      </OBJECT>
  </LI>
  <UL>
    <LI><OBJECT type="text/sitemap">
        <param name="Name" value="Section 1.1">
        <param name="Local" value="ch1-1.htm">
        </OBJECT>
  </UL>
</UL>
`)
	tree, err := ParseHHC(src)
	if err != nil {
		t.Fatal(err)
	}
	root := tree.Root()
	kids := tree.Node(root).Children
	if len(kids) != 1 {
		t.Fatalf("expected the wrapper to be flattened into Chapter 1, got %d top-level nodes", len(kids))
	}
	ch1 := tree.Node(kids[0])
	if ch1.Title != "Chapter 1" {
		t.Fatalf("got %+v", ch1)
	}
	if len(ch1.Children) != 1 {
		t.Fatalf("expected Chapter 1 to absorb the orphaned <UL>'s child, got %d", len(ch1.Children))
	}
	sec := tree.Node(ch1.Children[0])
	if sec.Filename != "ch1-1.htm" {
		t.Fatalf("got %+v", sec)
	}
}

// TestParseHHCSyntheticWrapperKeptWhenFirstChild pins the Open Question
// decision in DESIGN.md: a synthetic wrapper with no previous sibling is
// left in the tree rather than dropped.
func TestParseHHCSyntheticWrapperKeptWhenFirstChild(t *testing.T) {
	// The inner <UL> opens with no <LI> yet active at its level (it is
	// not preceded by a sibling <LI> at the outer level either), so the
	// manufactured wrapper has no previous sibling to flatten into.
	src := []byte(`
<UL>
  <UL>
    <LI><OBJECT type="text/sitemap">
          <param name="Name" value="Orphan">
          <param name="Local" value="orphan.htm">
          </OBJECT>
  </UL>
</UL>
`)
	tree, err := ParseHHC(src)
	if err != nil {
		t.Fatal(err)
	}
	root := tree.Root()
	kids := tree.Node(root).Children
	if len(kids) != 1 {
		t.Fatalf("expected 1 top-level wrapper, got %d", len(kids))
	}
	wrapper := tree.Node(kids[0])
	if !wrapper.Synthetic || wrapper.Title != "" {
		t.Fatalf("expected a kept-empty synthetic wrapper, got %+v", wrapper)
	}
	if len(wrapper.Children) != 1 || tree.Node(wrapper.Children[0]).Filename != "orphan.htm" {
		t.Fatalf("got %+v", wrapper)
	}
}

func TestParseCOLOrdersAndArchivePlaceholders(t *testing.T) {
	src := []byte(`
<OBJECT type="text/sitemap">
  <param name="Folder" value="=manual">
  <param name="FolderOrder" value="2">
</OBJECT>
<OBJECT type="text/sitemap">
  <param name="Folder" value="Reference Guide">
  <param name="FolderOrder" value="1">
</OBJECT>
`)
	tree, err := ParseCOL(src)
	if err != nil {
		t.Fatal(err)
	}
	kids := tree.Node(tree.Root()).Children
	if len(kids) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(kids))
	}
	first := tree.Node(kids[0])
	if first.Kind != model.NodeFolder || first.Title != "Reference Guide" {
		t.Fatalf("expected Reference Guide first by FolderOrder, got %+v", first)
	}
	second := tree.Node(kids[1])
	if second.Kind != model.NodeArchivePlaceholder || second.ArchiveStem != "manual" {
		t.Fatalf("expected manual archive placeholder second, got %+v", second)
	}
}
