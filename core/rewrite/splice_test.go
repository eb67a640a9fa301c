package rewrite

import (
	"bytes"
	"testing"
)

func TestApplySplicesUnsortedNonOverlapping(t *testing.T) {
	src := []byte("0123456789")
	splices := []Splice{
		{ByteOffset: 8, OriginalLength: 2, Replacement: []byte("XY")},
		{ByteOffset: 2, OriginalLength: 2, Replacement: []byte("ab")},
	}
	got := ApplySplices(src, splices)
	want := []byte("01ab4567XY")
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestApplySplicesEmpty(t *testing.T) {
	src := []byte("hello")
	got := ApplySplices(src, nil)
	if !bytes.Equal(got, src) {
		t.Fatalf("got %q", got)
	}
}

func TestApplySplicesOverlapPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on overlapping splices")
		}
	}()
	src := []byte("0123456789")
	ApplySplices(src, []Splice{
		{ByteOffset: 2, OriginalLength: 4, Replacement: []byte("x")},
		{ByteOffset: 4, OriginalLength: 2, Replacement: []byte("y")},
	})
}

func TestApplySplicesOutOfBoundsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-bounds splice")
		}
	}()
	src := []byte("short")
	ApplySplices(src, []Splice{
		{ByteOffset: 3, OriginalLength: 10, Replacement: []byte("x")},
	})
}
