package rewrite

import (
	"strings"
	"testing"

	"chmweb/core/model"
)

func TestRewriteCaseNormalisationPreservesSiblingAttrsAndCase(t *testing.T) {
	r, _ := newTestResolver(t)
	r.LinkMap["html/fig6-2.gif"] = "html/fig6-2.gif"

	src := `<html><body><IMG SRC="/HTML/Fig6-2.gif" ALT="fig"></body></html>`
	rec := &model.PageRecord{Path: "html/chpt06-02.htm", ArchiveStem: "book"}

	got := string(r.Rewrite(rec, []byte(src)))
	want := strings.Replace(src, "/HTML/Fig6-2.gif", "fig6-2.gif", 1)
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestRewriteCrossDirectoryAbsoluteLink(t *testing.T) {
	r, _ := newTestResolver(t)
	r.LinkMap["html/fig6-2.gif"] = "html/fig6-2.gif"

	src := `<img src="/html/fig6-2.gif">`
	rec := &model.PageRecord{Path: "html2/html3/chpt06-02.htm", ArchiveStem: "book"}

	got := string(r.Rewrite(rec, []byte(src)))
	want := `<img src="../../html/fig6-2.gif">`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRewriteAnchorAddsTopTargetWithoutChangingSameDirHref(t *testing.T) {
	r, td := newTestResolver(t)
	addPage(td, r.LinkMap, "html/toc.htm", true)

	src := `<a href="toc.htm">Link</a>`
	rec := &model.PageRecord{Path: "html/page.htm", ArchiveStem: "book"}

	got := string(r.Rewrite(rec, []byte(src)))
	want := `<a href="toc.htm" target="_top">Link</a>`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRewriteExistingTargetIsNotOverwritten(t *testing.T) {
	r, td := newTestResolver(t)
	addPage(td, r.LinkMap, "html/toc.htm", true)

	src := `<a href="toc.htm" target="content">Link</a>`
	rec := &model.PageRecord{Path: "html/page.htm", ArchiveStem: "book"}

	got := string(r.Rewrite(rec, []byte(src)))
	if got != src {
		t.Fatalf("expected unchanged, got %q", got)
	}
}

func htmlHelpObjectSrc(inner string) (src string, startByte, totalBytes int) {
	prefix := `<html><body><a href="JavaScript:Alink1.Click()">Click</a>`
	obj := `<object id="Alink1" type="application/x-oleobject" classid="{adb880a6-d8ff-11cf-9377-00aa003b7a11}">` + inner + `</object>`
	suffix := `</body></html>`
	src = prefix + obj + suffix
	startByte = strings.Index(src, "<object")
	totalBytes = len(obj)
	return
}

func TestRewriteMultiTopicObjectClickGetsMarkerClassAndTop(t *testing.T) {
	r, td := newTestResolver(t)
	addPage(td, r.LinkMap, "html/a.htm", false)
	addPage(td, r.LinkMap, "html/b.htm", false)
	td.ALinks["multi"] = []model.Topic{
		{Kind: model.TopicLocal, DisplayName: "Alpha", Filename: "html/a.htm"},
		{Kind: model.TopicLocal, DisplayName: "Beta", Filename: "html/b.htm"},
	}

	params := `<param name="Command" value="ALink"><param name="Item2" value="multi">`
	src, startByte, totalBytes := htmlHelpObjectSrc(params)

	rec := &model.PageRecord{
		Path:        "html/page.htm",
		ArchiveStem: "book",
		Objects: []model.Object{{
			Attrs: model.AttrList{
				{Name: "id", Value: "Alink1"},
				{Name: "type", Value: "application/x-oleobject"},
				{Name: "classid", Value: "{adb880a6-d8ff-11cf-9377-00aa003b7a11}"},
			},
			Params: model.AttrList{
				{Name: "Command", Value: "ALink"},
				{Name: "Item2", Value: "multi"},
			},
			StartByte:  startByte,
			TotalBytes: totalBytes,
		}},
	}

	got := string(r.Rewrite(rec, []byte(src)))
	if !strings.Contains(got, `target="_top"`) {
		t.Fatalf("expected _top target in %q", got)
	}
	if !strings.Contains(got, `class="`+MultiTopicClass+`"`) {
		t.Fatalf("expected marker class in %q", got)
	}
	if !strings.Contains(got, "_alinks/alpha_beta.html") {
		t.Fatalf("expected resolution page href in %q", got)
	}
	// The <object>...</object> span itself is untouched (only the earlier
	// JavaScript:-click anchor is rewritten).
	if !strings.Contains(got, `<param name="Command" value="ALink">`) {
		t.Fatalf("expected object span preserved in %q", got)
	}
}

func TestRewriteHTMLHelpControlTextParamReplacesObjectSpan(t *testing.T) {
	r, td := newTestResolver(t)
	addPage(td, r.LinkMap, "html/target.htm", false)

	params := `<param name="Command" value="ALink"><param name="Item2" value="single"><param name="Text" value="See Also">`
	objSrc, startByte, totalBytes := htmlHelpObjectSrc(params)
	// strip the leading click anchor; this scenario stands alone.
	src := strings.TrimPrefix(objSrc, `<html><body><a href="JavaScript:Alink1.Click()">Click</a>`)
	startByte -= len(`<html><body><a href="JavaScript:Alink1.Click()">Click</a>`)

	td.ALinks["single"] = []model.Topic{{Kind: model.TopicLocal, Filename: "html/target.htm"}}

	rec := &model.PageRecord{
		Path:        "html/page.htm",
		ArchiveStem: "book",
		Objects: []model.Object{{
			Attrs: model.AttrList{
				{Name: "id", Value: "Alink1"},
				{Name: "type", Value: "application/x-oleobject"},
				{Name: "classid", Value: "{adb880a6-d8ff-11cf-9377-00aa003b7a11}"},
			},
			Params: model.AttrList{
				{Name: "Command", Value: "ALink"},
				{Name: "Item2", Value: "single"},
				{Name: "Text", Value: "See Also"},
			},
			StartByte:  startByte,
			TotalBytes: totalBytes,
		}},
	}

	got := string(r.Rewrite(rec, []byte(src)))
	if strings.Contains(got, "<object") {
		t.Fatalf("expected object span replaced, got %q", got)
	}
	if !strings.Contains(got, `<a href="target.content.htm">See Also</a>`) {
		t.Fatalf("got %q", got)
	}
}

func TestRewriteButtonParamConsumesObjectSpan(t *testing.T) {
	r, _ := newTestResolver(t)

	params := `<param name="Button" value="Text:1001,Next &gt;">`
	objSrc, startByte, totalBytes := htmlHelpObjectSrc(params)
	prefix := `<html><body><a href="JavaScript:Alink1.Click()">Click</a>`
	src := strings.TrimPrefix(objSrc, prefix)
	startByte -= len(prefix)

	rec := &model.PageRecord{
		Path:        "html/page.htm",
		ArchiveStem: "book",
		Objects: []model.Object{{
			Attrs: model.AttrList{
				{Name: "type", Value: "application/x-oleobject"},
				{Name: "classid", Value: "{adb880a6-d8ff-11cf-9377-00aa003b7a11}"},
			},
			Params: model.AttrList{
				{Name: "Button", Value: "Text:1001,Next >"},
			},
			StartByte:  startByte,
			TotalBytes: totalBytes,
		}},
	}

	got := string(r.Rewrite(rec, []byte(src)))
	if strings.Contains(got, "<object") || strings.Contains(got, "<param") {
		t.Fatalf("expected object span fully consumed, got %q", got)
	}
	if !strings.Contains(got, `class="chmweb-button chmweb-button-text"`) {
		t.Fatalf("got %q", got)
	}
}
