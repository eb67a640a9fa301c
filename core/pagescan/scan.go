// Package pagescan implements the Page Scanner (C7, spec.md §4.7): pure
// extraction of a Page Record from one HTML page's bytes. It runs inside
// a worker process (spec.md §5), but is a plain function of bytes in,
// record out, so it is unit-tested directly without any subprocess.
package pagescan

import (
	"strings"

	"chmweb/core/model"
	"chmweb/core/sgml"
)

type scanner struct {
	rec model.PageRecord

	inTitle bool
	title   strings.Builder

	objectStack []*model.Object

	// pendingFinalize is the most recently closed object, awaiting the
	// next event's byte offset to learn where its end tag actually
	// concluded (spec.md §4.7: "total byte length measured from start
	// tag to the end of the matching </object> token").
	pendingFinalize *model.Object
}

// Scan extracts a Page Record from an HTML page's bytes. archiveStem and
// path identify the page for the returned record; they are not
// otherwise interpreted.
func Scan(archiveStem string, path model.Path, src []byte) model.PageRecord {
	s := &scanner{rec: model.PageRecord{ArchiveStem: archiveStem, Path: path}}
	_ = sgml.Parse(src, s)
	s.finalizePending(sgml.Loc{ByteOffset: len(src)})
	s.rec.Title = s.title.String()
	return s.rec
}

func (s *scanner) finalizePending(loc sgml.Loc) {
	if s.pendingFinalize == nil {
		return
	}
	obj := s.pendingFinalize
	s.pendingFinalize = nil
	obj.TotalBytes = loc.ByteOffset - obj.StartByte

	if obj.IsHTMLHelpControl() {
		if cmd, ok := obj.Command(); ok && strings.HasPrefix(model.FoldCase(cmd), "alink") {
			if target, ok := obj.Param("DEFAULTTOPIC"); ok {
				s.rec.PageLinks = append(s.rec.PageLinks, target)
			}
		}
	}
	s.rec.Objects = append(s.rec.Objects, *obj)
}

func (s *scanner) StartElement(name string, attrs model.AttrList, loc sgml.Loc) {
	s.finalizePending(loc)

	switch model.FoldCase(name) {
	case "a":
		if href, ok := attrs.Get("href"); ok && !strings.HasPrefix(href, "#") {
			s.rec.PageLinks = append(s.rec.PageLinks, href)
		}
	case "img":
		if src, ok := attrs.Get("src"); ok {
			s.rec.AssetLinks = append(s.rec.AssetLinks, src)
		}
	case "link":
		if href, ok := attrs.Get("href"); ok {
			s.rec.AssetLinks = append(s.rec.AssetLinks, href)
		}
	case "script":
		if src, ok := attrs.Get("src"); ok {
			s.rec.AssetLinks = append(s.rec.AssetLinks, src)
		}
	case "title":
		s.inTitle = true
	case "object":
		obj := &model.Object{Attrs: attrs, StartByte: loc.ByteOffset, StartLine: loc.Line}
		s.objectStack = append(s.objectStack, obj)
	case "param":
		if len(s.objectStack) > 0 {
			cur := s.objectStack[len(s.objectStack)-1]
			name, _ := attrs.Get("name")
			value, _ := attrs.Get("value")
			cur.Params = append(cur.Params, model.Attr{Name: name, Value: value})
		}
	}
}

func (s *scanner) EndElement(name string, loc sgml.Loc) {
	s.finalizePending(loc)

	switch model.FoldCase(name) {
	case "title":
		s.inTitle = false
	case "object":
		if n := len(s.objectStack); n > 0 {
			s.pendingFinalize = s.objectStack[n-1]
			s.objectStack = s.objectStack[:n-1]
		}
	}
}

func (s *scanner) Characters(data []byte, loc sgml.Loc) {
	s.finalizePending(loc)
	if s.inTitle {
		s.title.Write(data)
	}
}
