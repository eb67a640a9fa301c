package model

// TopicKind discriminates the three Topic variants from spec.md §3.
type TopicKind int

const (
	TopicLocal TopicKind = iota
	TopicExternal
	TopicSeeAlso
)

// Topic is one entry of the AK-Link topic table: a local file reference,
// an external URL, or a see-also redirect to another keyword.
type Topic struct {
	Kind TopicKind

	// DisplayName is optional for Local/External, set for SeeAlso's target.
	DisplayName string

	// Local fields.
	Filename Path // root-relative

	// External fields.
	URL   string
	Frame string

	// SeeAlso field.
	SeeAlsoTarget string
}

// TopicIndex addresses a Topic slot. In single-archive mode only Slot is
// meaningful; in multi-archive (chw) mode Archive is the 1-based archive
// ordinal and Slot is the intra-archive offset within that archive's
// 1,048,576-wide window.
type TopicIndex struct {
	Archive int // 0 in single-archive mode
	Slot    int
}

// TopicWindowSize is the per-archive slot window used by multi-archive
// (chw) split indexing (spec.md §3, Topic Table).
const TopicWindowSize = 1 << 20

// SplitTopicIndex decodes a raw 32-bit multi-archive index into its archive ordinal
// and intra-archive slot.
func SplitTopicIndex(raw uint32) TopicIndex {
	return TopicIndex{
		Archive: int(raw / TopicWindowSize),
		Slot:    int(raw % TopicWindowSize),
	}
}

// Merge re-encodes a TopicIndex back into the raw windowed form.
func (ti TopicIndex) Merge() uint32 {
	return uint32(ti.Archive)*TopicWindowSize + uint32(ti.Slot)
}

// KeywordMap maps a display name to its ordered list of Topics. Two
// parallel instances exist per TreeData: A-link (associative) and K-link
// (keyword/index).
type KeywordMap map[string][]Topic
