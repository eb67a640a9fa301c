package aklink

import "chmweb/core/model"

// NewSingleArchiveTable builds a Table for the single-archive CLI shape
// (spec.md §6): one archive addressed by plain slot index.
func NewSingleArchiveTable(at ArchiveTables) *Table {
	return &Table{
		Archives: []ArchiveTables{at},
		Multi:    false,
		ALinks:   make(model.KeywordMap),
		KLinks:   make(model.KeywordMap),
	}
}

// NewMultiArchiveTable builds a Table for the chw collection shape:
// byOrdinal maps each archive's 1-based ordinal (from $HHTitleMap order)
// to its side tables. Ordinal 0 is reserved and left zero-valued.
func NewMultiArchiveTable(byOrdinal map[int]ArchiveTables) *Table {
	maxOrd := 0
	for ord := range byOrdinal {
		if ord > maxOrd {
			maxOrd = ord
		}
	}
	archives := make([]ArchiveTables, maxOrd+1)
	for ord, at := range byOrdinal {
		archives[ord] = at
	}
	return &Table{
		Archives: archives,
		Multi:    true,
		ALinks:   make(model.KeywordMap),
		KLinks:   make(model.KeywordMap),
	}
}

// LoadKeywordMaps decodes the optional associative-link and keyword-link
// B-trees into t.ALinks/t.KLinks, resolving topic references against t
// itself. Either buffer may be nil (spec.md §4.5: both B-trees are
// optional).
func (t *Table) LoadKeywordMaps(alinkBuf, klinkBuf []byte, warn func(error)) error {
	if alinkBuf != nil {
		m, err := DecodeBTree(alinkBuf, t.Multi, t, warn)
		if err != nil {
			return err
		}
		t.ALinks = m
	}
	if klinkBuf != nil {
		m, err := DecodeBTree(klinkBuf, t.Multi, t, warn)
		if err != nil {
			return err
		}
		t.KLinks = m
	}
	return nil
}
