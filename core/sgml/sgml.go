// Package sgml implements the SGML Event Bridge (C4, spec.md §4.4):
// it adapts golang.org/x/net/html's pull Tokenizer into the
// {start_element, end_element, characters} callback shape spec.md §6
// asks of the external parser, carrying byte_offset/line_number with
// every event.
//
// Unlike an XML/SGML DTD, HTML5 tokenization never synthesises
// attributes that weren't present in the source, so the "suppress
// DTD-defaulted attributes" requirement of spec.md §4.4 is automatically
// satisfied — there is nothing to suppress (noted in DESIGN.md).
// Script-element bodies are opaque because the tokenizer itself parses
// `<script>...</script>` content as a single raw-text token; no nested
// events are ever produced for it.
package sgml

import (
	"bytes"

	"golang.org/x/net/html"

	"chmweb/core/model"
)

// Loc carries a byte offset and 1-based line number into the source
// buffer, plus the byte length of the token the event was raised for
// (the whole start/end tag, or the whole text run) — enough for a
// caller building a splice list (spec.md §4.9) to know exactly which
// span of src an event corresponds to, without re-scanning for tag
// boundaries itself.
type Loc struct {
	ByteOffset int
	Line       int
	Length     int
}

// Handler receives parse events. Parse calls StartElement/EndElement for
// every tag and Characters for every run of text (including raw script
// bodies). Tag and attribute *names* are lower-cased by the tokenizer per
// the HTML5 spec, same as real browsers do; attribute order and attribute
// *value* bytes are preserved exactly. A caller that needs a tag's
// original on-disk capitalisation (spec.md §4.9's splice list does, for
// attribute names) re-derives it from src[loc.ByteOffset:][:loc.Length]
// rather than from the name/attrs the tokenizer handed back.
type Handler interface {
	StartElement(name string, attrs model.AttrList, loc Loc)
	EndElement(name string, loc Loc)
	Characters(data []byte, loc Loc)
}

// Parse tokenizes src and drives h. It never returns an error for
// malformed markup (the HTML5 tokenizer has no concept of a fatal parse
// error); it returns only on an unexpected internal failure, which does
// not occur with an in-memory buffer.
func Parse(src []byte, h Handler) error {
	z := html.NewTokenizer(bytes.NewReader(src))
	offset := 0
	line := 1

	advance := func(raw []byte) Loc {
		loc := Loc{ByteOffset: offset, Line: line, Length: len(raw)}
		offset += len(raw)
		line += bytes.Count(raw, []byte{'\n'})
		return loc
	}

	for {
		tt := z.Next()
		raw := z.Raw()

		switch tt {
		case html.ErrorToken:
			return nil // io.EOF or a tokenizer-internal error: treat as end of input
		case html.TextToken:
			loc := advance(raw)
			h.Characters(z.Text(), loc)
		case html.StartTagToken, html.SelfClosingTagToken:
			loc := advance(raw)
			name, attrs := readTag(z)
			h.StartElement(name, attrs, loc)
			if tt == html.SelfClosingTagToken {
				h.EndElement(name, loc)
			}
		case html.EndTagToken:
			loc := advance(raw)
			name, _ := z.TagName()
			h.EndElement(string(name), loc)
		case html.CommentToken, html.DoctypeToken:
			advance(raw) // consumed for offset tracking; no event emitted
		}
	}
}

// readTag extracts the tag name and an ordered attribute list from the
// tokenizer's current start tag, preserving source order and value bytes
// (spec.md §9, "Ordered, case-insensitive attribute lookups"); names come
// back lower-cased by the tokenizer.
func readTag(z *html.Tokenizer) (string, model.AttrList) {
	name, hasAttr := z.TagName()
	tagName := string(name)
	var attrs model.AttrList
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		attrs = append(attrs, model.Attr{Name: string(key), Value: string(val)})
	}
	return tagName, attrs
}
