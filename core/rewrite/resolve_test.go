package rewrite

import (
	"testing"

	"chmweb/core/chmerr"
	"chmweb/core/model"
)

func newTestResolver(t *testing.T) (*Resolver, *model.TreeData) {
	t.Helper()
	reg := model.NewArchiveRegistry()
	if err := reg.Register("book", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	tree := model.NewTree()
	td := model.NewTreeData(reg, tree)
	lm := model.LinkMap{}
	r := &Resolver{Registry: reg, LinkMap: lm, TreeData: td}
	return r, td
}

func addPage(td *model.TreeData, lm model.LinkMap, p model.Path, hasContentsPath bool) {
	rec := &model.PageRecord{Path: p, HasContentsTreePath: hasContentsPath}
	td.InsertPage(rec)
	lm[model.Path(model.FoldCase(string(p)))] = p
}

func TestResolveCaseNormalisationScenario(t *testing.T) {
	r, _ := newTestResolver(t)
	r.LinkMap["html/fig6-2.gif"] = "html/fig6-2.gif"

	res := r.Resolve("html/chpt06-02.htm", "book", "/HTML/Fig6-2.gif")
	if !res.Changed || res.Rewritten != "fig6-2.gif" {
		t.Fatalf("got %+v", res)
	}
}

func TestResolveCrossDirectoryAbsoluteLink(t *testing.T) {
	r, _ := newTestResolver(t)
	r.LinkMap["html/fig6-2.gif"] = "html/fig6-2.gif"

	res := r.Resolve("html2/html3/chpt06-02.htm", "book", "/html/fig6-2.gif")
	if !res.Changed || res.Rewritten != "../../html/fig6-2.gif" {
		t.Fatalf("got %+v", res)
	}
}

func TestResolveInPageAnchorUnchanged(t *testing.T) {
	r, _ := newTestResolver(t)
	res := r.Resolve("a.htm", "book", "#section")
	if res.Changed || res.Rewritten != "#section" {
		t.Fatalf("got %+v", res)
	}
}

func TestResolveExternalSchemePassthrough(t *testing.T) {
	r, _ := newTestResolver(t)
	res := r.Resolve("a.htm", "book", "https://example.com/x")
	if res.Changed || res.Rewritten != "https://example.com/x" {
		t.Fatalf("got %+v", res)
	}
}

func TestResolveItsSchemeKnownArchive(t *testing.T) {
	r, td := newTestResolver(t)
	if err := r.Registry.Register("other", "other"); err != nil {
		t.Fatalf("register: %v", err)
	}
	addPage(td, r.LinkMap, "other/help.htm", true)

	res := r.Resolve("a.htm", "book", "ms-its:other.chm::/help.htm")
	if !res.Changed || res.Rewritten != "other/help.htm" {
		t.Fatalf("got %+v", res)
	}
}

func TestResolveItsSchemeUnknownArchiveIsExternal(t *testing.T) {
	r, _ := newTestResolver(t)
	res := r.Resolve("a.htm", "book", "ms-its:ghost.chm::/help.htm")
	if res.Changed {
		t.Fatalf("expected unchanged, got %+v", res)
	}
}

func TestResolveEscapesRootWarns(t *testing.T) {
	r, _ := newTestResolver(t)
	sink := &chmerr.SliceSink{}
	r.Warn = sink

	res := r.Resolve("a.htm", "book", "../../../etc/passwd")
	if res.Rewritten != "#" || !res.Changed {
		t.Fatalf("got %+v", res)
	}
	if len(sink.Warnings) != 1 || sink.Warnings[0].Kind != chmerr.ReferenceEscapesRoot {
		t.Fatalf("warnings: %+v", sink.Warnings)
	}
}

func TestResolveAbsoluteReferenceEscapesRootWarns(t *testing.T) {
	r, _ := newTestResolver(t)
	sink := &chmerr.SliceSink{}
	r.Warn = sink

	res := r.Resolve("html/a.htm", "book", "/../../etc/passwd")
	if res.Rewritten != "#" || !res.Changed {
		t.Fatalf("got %+v", res)
	}
	if len(sink.Warnings) != 1 || sink.Warnings[0].Kind != chmerr.ReferenceEscapesRoot {
		t.Fatalf("warnings: %+v", sink.Warnings)
	}
}

func TestResolveUnresolvedReferenceWarns(t *testing.T) {
	r, _ := newTestResolver(t)
	sink := &chmerr.SliceSink{}
	r.Warn = sink

	res := r.Resolve("a.htm", "book", "ghost.htm")
	if res.Rewritten != "#" || !res.Changed {
		t.Fatalf("got %+v", res)
	}
	if len(sink.Warnings) != 1 || sink.Warnings[0].Kind != chmerr.UnresolvedReference {
		t.Fatalf("warnings: %+v", sink.Warnings)
	}
}

func TestResolveKnownPageInContentsTreeSetsTop(t *testing.T) {
	r, td := newTestResolver(t)
	addPage(td, r.LinkMap, "html/toc.htm", true)

	res := r.Resolve("html/other.htm", "book", "toc.htm")
	if res.Target != "_top" {
		t.Fatalf("got %+v", res)
	}
}

func TestResolveKnownPageNotInContentsTreeUsesContentExt(t *testing.T) {
	r, td := newTestResolver(t)
	addPage(td, r.LinkMap, "html/orphan.htm", false)

	res := r.Resolve("html/other.htm", "book", "orphan.htm")
	if res.Target != "" {
		t.Fatalf("expected no target, got %+v", res)
	}
	if res.Rewritten != "orphan.content.htm" {
		t.Fatalf("got %+v", res)
	}
}
