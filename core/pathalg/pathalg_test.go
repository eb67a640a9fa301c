package pathalg

import (
	"testing"

	"chmweb/core/model"
)

func TestDocToRootEscape(t *testing.T) {
	if _, ok := DocToRoot("../a", "a"); ok {
		t.Fatal("expected escape above root to be undefined")
	}
}

func TestDocToRootPopsIntoSibling(t *testing.T) {
	got, ok := DocToRoot("../a/b", "x/y")
	if !ok {
		t.Fatal("expected resolution to succeed")
	}
	if got != "a/b" {
		t.Fatalf("got %q, want a/b", got)
	}
}

func TestDocToRootUndefinedOnDirectoryOnlyRef(t *testing.T) {
	for _, rel := range []string{"", ".", "a/.", "a/.."} {
		if _, ok := DocToRoot(rel, "x/y"); ok {
			t.Fatalf("DocToRoot(%q) expected undefined (no final filename segment)", rel)
		}
	}
}

func TestRootToDocRoundTrip(t *testing.T) {
	cases := []struct{ doc, rel string }{
		{"html/chpt06-02.htm", "fig6-2.gif"},
		{"html2/html3/chpt06-02.htm", "../../html/fig6-2.gif"},
		{"stem1/html/p.htm", "../../other/foo/bar.htm"},
		{"a.htm", "sub/b.htm"},
	}
	for _, c := range cases {
		root, ok := DocToRoot(c.rel, model.Path(c.doc))
		if !ok {
			t.Fatalf("DocToRoot(%q,%q): unexpected escape", c.rel, c.doc)
		}
		back := RootToDoc(root, model.Path(c.doc))
		// Round-trip should be canonicalisation-stable: resolving `back`
		// must land on the same root-relative target again.
		root2, ok := DocToRoot(back, model.Path(c.doc))
		if !ok || root2 != root {
			t.Fatalf("round trip mismatch: rel=%q -> root=%q -> doc=%q -> root=%q", c.rel, root, back, root2)
		}
	}
}

func TestRootToDocCrossDirectory(t *testing.T) {
	got := RootToDoc("html/fig6-2.gif", "html2/html3/chpt06-02.htm")
	if got != "../../html/fig6-2.gif" {
		t.Fatalf("got %q", got)
	}
}

func TestRootToDocSameDir(t *testing.T) {
	got := RootToDoc("html/fig6-2.gif", "html/chpt06-02.htm")
	if got != "fig6-2.gif" {
		t.Fatalf("got %q", got)
	}
}
