package treescan

import "chmweb/core/model"

// BuildLinkMap constructs the Link Map (spec.md §3) from the universe of
// paths Discover found reachable: every discovered page plus every
// discovered asset, keyed by its case-folded form so a wrong-case
// reference in source HTML still resolves to the canonically-cased
// filesystem path.
func BuildLinkMap(td *model.TreeData, assets map[model.Path]bool) model.LinkMap {
	lm := make(model.LinkMap, len(td.Pages)+len(assets))
	for p := range td.Pages {
		lm[model.Path(model.FoldCase(string(p)))] = p
	}
	for p := range assets {
		lm[model.Path(model.FoldCase(string(p)))] = p
	}
	return lm
}
