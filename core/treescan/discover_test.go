package treescan

import (
	"testing"

	"chmweb/core/model"
)

func buildRegistry(t *testing.T) *model.ArchiveRegistry {
	t.Helper()
	r := model.NewArchiveRegistry()
	if err := r.Register("manual", ""); err != nil {
		t.Fatal(err)
	}
	return r
}

const testHHC = `
<UL>
  <LI><OBJECT type="text/sitemap">
      <param name="Name" value="Intro">
      <param name="Local" value="html/intro.htm">
      </OBJECT>
    <UL>
      <LI><OBJECT type="text/sitemap">
          <param name="Name" value="Details">
          <param name="Local" value="html/details.htm">
          </OBJECT>
    </UL>
  </LI>
</UL>
`

func TestDiscoverExpandsPlaceholderAndFollowsLinks(t *testing.T) {
	registry := buildRegistry(t)
	tree := model.NewTree()
	tree.AddChild(tree.Root(), model.Node{Kind: model.NodeArchivePlaceholder, ArchiveStem: "manual"})
	td := model.NewTreeData(registry, tree)

	loadHHC := func(stem string) ([]byte, error) {
		return []byte(testHHC), nil
	}
	scan := func(stem string, path model.Path) (model.PageRecord, error) {
		var rec model.PageRecord
		if path == "html/intro.htm" {
			rec.PageLinks = []string{"details.htm"}
			rec.AssetLinks = []string{"pic.gif"}
		}
		return rec, nil
	}

	assets, err := Discover(td, []model.Path{"html/intro.htm"}, loadHHC, scan)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := td.Page("html/intro.htm"); !ok {
		t.Fatal("expected intro page discovered")
	}
	if _, ok := td.Page("html/details.htm"); !ok {
		t.Fatal("expected details page discovered via page link")
	}
	if !assets["html/pic.gif"] {
		t.Fatalf("expected pic.gif discovered as asset, got %v", assets)
	}

	// Placeholder should be gone, replaced by the grafted HHC subtree.
	root := tree.Node(tree.Root())
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 top-level node after graft, got %d", len(root.Children))
	}
	introNode := tree.Node(root.Children[0])
	if introNode.Kind != model.NodePage || introNode.Filename != "html/intro.htm" {
		t.Fatalf("got %+v", introNode)
	}
	if len(introNode.Children) != 1 {
		t.Fatalf("expected nested Details node, got %d children", len(introNode.Children))
	}
	detailsNode := tree.Node(introNode.Children[0])
	if detailsNode.Filename != "html/details.htm" {
		t.Fatalf("got %+v", detailsNode)
	}

	// Contents-tree path stamping (step 4).
	rec, _ := td.Page("html/intro.htm")
	if !rec.HasContentsTreePath || len(rec.ContentsTreePath) != 1 || rec.ContentsTreePath[0] != 0 {
		t.Fatalf("intro contents path = %+v", rec)
	}
	detailsRec, _ := td.Page("html/details.htm")
	if !detailsRec.HasContentsTreePath {
		t.Fatal("expected details page to be stamped with a contents-tree path")
	}
}
