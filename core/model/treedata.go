package model

import "sync"

// TreeData is the aggregate, process-lifetime state the pipeline builds
// up: archive registry, contents tree, keyword maps, discovered pages,
// and the resolution-page caches for multi-topic ALink/KLink lookups
// (spec.md §3, Tree Data).
//
// It lives only in the parent control thread (spec.md §5): workers never
// see it, they receive immutable byte buffers and return immutable
// PageRecords by value; splice lists are built in the parent.
type TreeData struct {
	mu sync.Mutex

	Registry *ArchiveRegistry
	Tree     *Tree

	ALinks KeywordMap
	KLinks KeywordMap

	// Pages is keyed by root-relative path.
	Pages map[Path]*PageRecord

	// Resolution pages already emitted for a given sorted keyword-list key,
	// so repeated multi-topic references reuse one page (spec.md §4.9,
	// "ALink object dereference").
	ALinkResolutionPages map[string]Path
	KLinkResolutionPages map[string]Path
}

// NewTreeData returns an empty, ready-to-use TreeData.
func NewTreeData(registry *ArchiveRegistry, tree *Tree) *TreeData {
	return &TreeData{
		Registry:             registry,
		Tree:                 tree,
		ALinks:               make(KeywordMap),
		KLinks:               make(KeywordMap),
		Pages:                make(map[Path]*PageRecord),
		ALinkResolutionPages: make(map[string]Path),
		KLinkResolutionPages: make(map[string]Path),
	}
}

// InsertPage inserts rec exactly once per path; a second insert for the
// same path is a no-op (spec.md §3, "Page Records are produced in
// parallel and inserted exactly once per path"). Reports whether this
// call performed the insert.
func (td *TreeData) InsertPage(rec *PageRecord) bool {
	td.mu.Lock()
	defer td.mu.Unlock()
	if _, exists := td.Pages[rec.Path]; exists {
		return false
	}
	td.Pages[rec.Path] = rec
	return true
}

// Page looks up a discovered page by root-relative path.
func (td *TreeData) Page(p Path) (*PageRecord, bool) {
	td.mu.Lock()
	defer td.mu.Unlock()
	rec, ok := td.Pages[p]
	return rec, ok
}

// LinkMap is the partial function from a root-relative path, as it
// literally appeared in source HTML (possibly wrong-case), to its
// canonically-cased filesystem path. Built once after discovery
// (spec.md §3, Link Map); read-only thereafter.
type LinkMap map[Path]Path

// Resolve looks up ref in the map, case-insensitively: the map is keyed
// by each discovered path's case-folded form (built by
// core/treescan.BuildLinkMap), so a wrong-case reference as it literally
// appeared in source HTML still finds its canonically-cased target.
func (lm LinkMap) Resolve(ref Path) (Path, bool) {
	p, ok := lm[Path(FoldCase(string(ref)))]
	return p, ok
}
