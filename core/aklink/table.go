package aklink

import "chmweb/core/model"

// Table is the decoded AK-Link Table for a run: one or more archives'
// side-tables (single-archive mode has exactly one, at ordinal 0;
// multi-archive/chw mode has one per $HHTitleMap entry, at ordinals
// 1..N) plus the aggregate A-link/K-link B-trees.
type Table struct {
	// Archives is indexed by archive ordinal: Archives[0] in
	// single-archive mode, Archives[1..N] in multi-archive mode (ordinal
	// 0 unused there, per spec.md §3's "archive ordinal (>=1)").
	Archives []ArchiveTables
	Multi    bool

	ALinks model.KeywordMap
	KLinks model.KeywordMap
}

// AllTopics iterates every topic across every archive in on-disk order:
// archive-by-archive, slot-by-slot within each.
func (t *Table) AllTopics() ([]model.Topic, error) {
	var out []model.Topic
	for _, a := range t.Archives {
		n := a.TopicCount()
		for i := 0; i < n; i++ {
			topic, err := a.DecodeTopic(i)
			if err != nil {
				return nil, err
			}
			out = append(out, topic)
		}
	}
	return out, nil
}

// Topic resolves a TopicIndex to its Topic. In single-archive mode only
// idx.Slot matters; in multi-archive mode idx.Archive selects the
// window.
func (t *Table) Topic(idx model.TopicIndex) (model.Topic, error) {
	ord := idx.Archive
	if !t.Multi {
		ord = 0
	}
	if ord < 0 || ord >= len(t.Archives) {
		return model.Topic{}, &ErrCorrupt{"#TOPICS", "archive ordinal out of range"}
	}
	return t.Archives[ord].DecodeTopic(idx.Slot)
}

// ALink looks up zero or more Topics for an associative-link keyword.
func (t *Table) ALink(name string) []model.Topic { return t.ALinks[name] }

// KLink looks up zero or more Topics for a keyword-index entry.
func (t *Table) KLink(name string) []model.Topic { return t.KLinks[name] }
