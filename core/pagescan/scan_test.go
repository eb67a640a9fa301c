package pagescan

import "testing"

func TestScanBasicExtraction(t *testing.T) {
	src := []byte(`<html><head><title>Hello World</title>
<link href="style.css" rel="stylesheet">
</head><body>
<a href="other.htm">link</a>
<a href="#local">anchor only, not a page link</a>
<img src="pic.gif">
<script src="app.js"></script>
</body></html>`)
	rec := Scan("manual", "html/page.htm", src)

	if rec.Title != "Hello World" {
		t.Fatalf("title = %q", rec.Title)
	}
	if len(rec.PageLinks) != 1 || rec.PageLinks[0] != "other.htm" {
		t.Fatalf("page links = %v", rec.PageLinks)
	}
	wantAssets := map[string]bool{"style.css": true, "pic.gif": true, "app.js": true}
	if len(rec.AssetLinks) != 3 {
		t.Fatalf("asset links = %v", rec.AssetLinks)
	}
	for _, a := range rec.AssetLinks {
		if !wantAssets[a] {
			t.Fatalf("unexpected asset link %q", a)
		}
	}
}

func TestScanEmbeddedObjectSpan(t *testing.T) {
	src := []byte(`<body>before<object id="x" classid="clsid:00000000">
<param name="Command" value="Foo">
</object>after</body>`)
	rec := Scan("manual", "html/page.htm", src)
	if len(rec.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(rec.Objects))
	}
	obj := rec.Objects[0]
	span := src[obj.StartByte : obj.StartByte+obj.TotalBytes]
	if string(span) != `<object id="x" classid="clsid:00000000">
<param name="Command" value="Foo">
</object>` {
		t.Fatalf("unexpected span: %q", span)
	}
	if cmd, ok := obj.Command(); !ok || cmd != "Foo" {
		t.Fatalf("command = %q, %v", cmd, ok)
	}
}

func TestScanALinkControlPromotesDefaultTopicToPageLink(t *testing.T) {
	src := []byte(`<object type="application/x-oleobject" classid="{adb880a6-d8ff-11cf-9377-00aa003b7a11}">
<param name="Command" value="ALink">
<param name="Item1" value="">
<param name="Item2" value="some topic">
<param name="DefaultTopic" value="fallback.htm">
</object>`)
	rec := Scan("manual", "html/page.htm", src)
	found := false
	for _, l := range rec.PageLinks {
		if l == "fallback.htm" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected DEFAULTTOPIC promoted to page link, got %v", rec.PageLinks)
	}
}

func TestScanTitleExcludesScriptBody(t *testing.T) {
	src := []byte(`<head><title>Real Title</title><script>document.title="evil"</script></head>`)
	rec := Scan("manual", "html/page.htm", src)
	if rec.Title != "Real Title" {
		t.Fatalf("title leaked script content: %q", rec.Title)
	}
}
