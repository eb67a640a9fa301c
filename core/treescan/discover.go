// Package treescan implements the Tree Scanner (C8, spec.md §4.8): the
// discovery fixed point that expands archive placeholders into their
// real contents subtrees, scans every reachable page, and stamps each
// discovered Page node's canonical path back onto its Page Record.
package treescan

import (
	"fmt"

	"chmweb/core/contents"
	"chmweb/core/model"
)

// LoadHHCFunc returns the raw HHC bytes for an archive's table of
// contents, keyed by archive stem.
type LoadHHCFunc func(archiveStem string) ([]byte, error)

// ScanPageFunc runs the Page Scanner (C7) against the page at path,
// typically by submitting to a worker pool; path is root-relative.
type ScanPageFunc func(archiveStem string, path model.Path) (model.PageRecord, error)

// Discover runs the spec.md §4.8 algorithm against td in place: it
// expands every archive placeholder in td.Tree, then scans forward from
// seeds until no new page is reachable. It returns every root-relative
// asset path discovered along the way (pages are recorded in
// td.Pages directly).
func Discover(td *model.TreeData, seeds []model.Path, loadHHC LoadHHCFunc, scan ScanPageFunc) (map[model.Path]bool, error) {
	if err := expandPlaceholders(td, loadHHC); err != nil {
		return nil, err
	}

	pending := make(map[model.Path]bool, len(seeds))
	for _, s := range seeds {
		pending[s] = true
	}
	scanned := make(map[model.Path]bool)
	assets := make(map[model.Path]bool)

	for len(pending) > 0 {
		var next model.Path
		for p := range pending {
			next = p
			break
		}
		delete(pending, next)
		if scanned[next] {
			continue
		}
		scanned[next] = true

		stem, _ := ownerArchive(td.Registry, next)
		rec, err := scan(stem, next)
		if err != nil {
			return nil, fmt.Errorf("treescan: scan %q: %w", next, err)
		}
		rec.ArchiveStem = stem
		rec.Path = next
		td.InsertPage(&rec)

		subdir, _ := td.Registry.SubdirByStem(stem)
		for _, a := range rec.AssetLinks {
			if tgt, ok := discoveryTarget(subdir, next, a); ok {
				assets[tgt] = true
			}
		}
		for _, l := range rec.PageLinks {
			tgt, ok := discoveryTarget(subdir, next, l)
			if !ok {
				continue
			}
			if !scanned[tgt] {
				pending[tgt] = true
			}
		}
	}

	stampContentsTreePaths(td)
	return assets, nil
}

// ownerArchive identifies the archive that owns a root-relative path:
// the sole registered archive when only one is registered, or the
// longest matching subdirectory prefix otherwise.
func ownerArchive(registry *model.ArchiveRegistry, path model.Path) (string, bool) {
	stems := registry.Stems()
	if len(stems) == 1 {
		return stems[0], true
	}
	return registry.StemBySubdirPrefix(path)
}

func expandPlaceholders(td *model.TreeData, loadHHC LoadHHCFunc) error {
	var placeholders []model.NodeIndex
	td.Tree.Walk(td.Tree.Root(), func(idx model.NodeIndex, n *model.Node) bool {
		if n.Kind == model.NodeArchivePlaceholder {
			placeholders = append(placeholders, idx)
		}
		return true
	})

	for _, idx := range placeholders {
		stem := td.Tree.Node(idx).ArchiveStem
		subdir, _ := td.Registry.SubdirByStem(stem)

		buf, err := loadHHC(stem)
		if err != nil {
			return fmt.Errorf("treescan: load HHC for archive %q: %w", stem, err)
		}
		hhcTree, err := contents.ParseHHC(buf)
		if err != nil {
			return fmt.Errorf("treescan: parse HHC for archive %q: %w", stem, err)
		}
		canonicalizeFilenames(hhcTree, hhcTree.Root(), subdir)
		replacePlaceholder(td.Tree, idx, hhcTree)
	}
	return nil
}

// canonicalizeFilenames rewrites every Page node's Filename from
// archive-document-relative to output-root-relative, by prefixing the
// archive's output subdirectory (spec.md §4.8 step 2).
func canonicalizeFilenames(t *model.Tree, idx model.NodeIndex, subdir string) {
	n := t.Node(idx)
	if n.Kind == model.NodePage {
		n.Filename = model.JoinPath(subdir, string(n.Filename))
	}
	for _, c := range n.Children {
		canonicalizeFilenames(t, c, subdir)
	}
}

// stampContentsTreePaths walks td.Tree and records each Page node's
// structural path into its Page Record (spec.md §4.8 step 4). A Page
// node whose path was never scanned (unreachable from any seed, or
// reachable only through a reference C9 will itself warn about) is left
// unstamped.
func stampContentsTreePaths(td *model.TreeData) {
	td.Tree.Walk(td.Tree.Root(), func(idx model.NodeIndex, n *model.Node) bool {
		if n.Kind != model.NodePage {
			return true
		}
		rec, ok := td.Page(n.Filename)
		if !ok {
			return true
		}
		path := td.Tree.Path(idx)
		ipath := make([]int, len(path))
		copy(ipath, path)
		rec.ContentsTreePath = ipath
		rec.HasContentsTreePath = true
		return true
	})
}
