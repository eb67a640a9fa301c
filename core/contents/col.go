package contents

import (
	"sort"
	"strconv"
	"strings"

	"chmweb/core/model"
	"chmweb/core/sgml"
)

// colEntry is one <OBJECT type="text/sitemap"> block in a COL collection
// file: a named folder, ordered by FolderOrder, each naming either a
// plain TOC folder or (when its name starts with "=") the mount point of
// one member archive (spec.md §4.6, "Collection (.col) layout").
type colEntry struct {
	folder string
	order  int
	seen   bool // at least one of Folder/FolderOrder was present
}

type colBuilder struct {
	inObject bool
	cur      colEntry
	entries  []colEntry
}

// ParseCOL parses a COL collection file into a Tree whose top-level
// children are Folder and ArchivePlaceholder nodes in FolderOrder.
func ParseCOL(src []byte) (*model.Tree, error) {
	b := &colBuilder{}
	if err := sgml.Parse(src, b); err != nil {
		return nil, err
	}
	sort.SliceStable(b.entries, func(i, j int) bool { return b.entries[i].order < b.entries[j].order })

	tree := model.NewTree()
	for _, e := range b.entries {
		if !e.seen {
			continue
		}
		if strings.HasPrefix(e.folder, "=") {
			tree.AddChild(tree.Root(), model.Node{
				Kind:        model.NodeArchivePlaceholder,
				ArchiveStem: model.FoldCase(strings.TrimPrefix(e.folder, "=")),
			})
		} else {
			tree.AddChild(tree.Root(), model.Node{Kind: model.NodeFolder, Title: e.folder})
		}
	}
	return tree, nil
}

func (b *colBuilder) StartElement(name string, attrs model.AttrList, loc sgml.Loc) {
	switch model.FoldCase(name) {
	case "object":
		typ, _ := attrs.Get("type")
		if model.FoldCase(typ) == "text/sitemap" {
			b.inObject = true
			b.cur = colEntry{}
		}
	case "param":
		if !b.inObject {
			return
		}
		pname, _ := attrs.Get("name")
		value, _ := attrs.Get("value")
		switch model.FoldCase(pname) {
		case "folder":
			b.cur.folder = value
			b.cur.seen = true
		case "folderorder":
			if n, err := strconv.Atoi(value); err == nil {
				b.cur.order = n
			}
			b.cur.seen = true
		}
	}
}

func (b *colBuilder) EndElement(name string, loc sgml.Loc) {
	if model.FoldCase(name) == "object" && b.inObject {
		b.inObject = false
		b.entries = append(b.entries, b.cur)
	}
}

func (b *colBuilder) Characters(data []byte, loc sgml.Loc) {}
