package diskcache

import (
	"path/filepath"
	"testing"
	"time"

	"chmweb/core/model"
)

func TestPutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	key := Key("/archives/book.chm", 12345, time.Unix(1700000000, 0))
	alinks := model.KeywordMap{"foo": []model.Topic{{Kind: model.TopicLocal, Filename: "html/foo.htm"}}}
	klinks := model.KeywordMap{"bar": []model.Topic{{Kind: model.TopicExternal, URL: "https://example.com"}}}

	if err := c.Put(key, alinks, klinks); err != nil {
		t.Fatalf("put: %v", err)
	}

	gotA, gotK, ok := c.Get(key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if gotA["foo"][0].Filename != "html/foo.htm" {
		t.Fatalf("got alinks %+v", gotA)
	}
	if gotK["bar"][0].URL != "https://example.com" {
		t.Fatalf("got klinks %+v", gotK)
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	_, _, ok := c.Get(Key("nope", 0, time.Time{}))
	if ok {
		t.Fatal("expected miss")
	}
}

func TestKeyDiffersOnSizeOrMtime(t *testing.T) {
	k1 := Key("book.chm", 100, time.Unix(1, 0))
	k2 := Key("book.chm", 200, time.Unix(1, 0))
	k3 := Key("book.chm", 100, time.Unix(2, 0))
	if string(k1) == string(k2) || string(k1) == string(k3) {
		t.Fatal("expected distinct keys for distinct size/mtime")
	}
}
