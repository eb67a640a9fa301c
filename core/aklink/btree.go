package aklink

import "chmweb/core/model"

// B-tree layout constants (spec.md §4.5, "B-tree walk").
const (
	btreeSignature0 = 0x3B
	btreeSignature1 = 0x29

	// "the number of listing blocks is at 0x1A + 1": the count field's
	// byte offset is 0x1A+1 = 0x1B, a little-endian uint16.
	btreeBlockCountOff = 0x1B

	btreeBlockBase          = 76
	btreeBlockStride        = 2048
	btreeBlockCountLocalOff = 2  // entry count, relative to block start
	btreeBlockEntriesOff    = 12 // first entry, relative to block start

	seeAlsoFlagNormal  = 0
	seeAlsoFlagSeeAlso = 2

	// Each entry's trailing monotonic index increments by this amount
	// across the whole file (spec.md §8, "AK-link B-tree traversal").
	btreeIndexStride = 13
)

// Resolver maps a raw topic slot reference to its Topic. *Table
// implements this; tests can supply a fake.
type Resolver interface {
	Topic(idx model.TopicIndex) (model.Topic, error)
}

// DecodeBTree walks an associative- or keyword-link B-tree, resolving
// each entry's topic-index references through resolve, and returns its
// display-name -> Topics map. When multi is true, the trailing 32-bit
// topic references are split-index (archive<<20 | slot) encoded, per
// the chw aggregate layout; otherwise they are plain slot indices.
//
// A topic index that fails to resolve (corrupt #URLTBL echo, out of
// range, ...) is dropped with a warning rather than aborting the whole
// keyword map decode — only a malformed B-tree header/block itself is
// fatal (spec.md §7).
func DecodeBTree(buf []byte, multi bool, resolve Resolver, warn func(error)) (model.KeywordMap, error) {
	c := cursor{buf, "BTree"}
	if len(buf) < 2 || buf[0] != btreeSignature0 || buf[1] != btreeSignature1 {
		return nil, &ErrCorrupt{"BTree", "bad header signature"}
	}

	blockCount, err := c.u16(btreeBlockCountOff)
	if err != nil {
		return nil, err
	}

	result := make(model.KeywordMap)
	expectedIndex := uint32(0)

	for b := 0; b < int(blockCount); b++ {
		blockOff := btreeBlockBase + b*btreeBlockStride
		count, err := c.u16(blockOff + btreeBlockCountLocalOff)
		if err != nil {
			return nil, err
		}
		pos := blockOff + btreeBlockEntriesOff
		for e := 0; e < int(count); e++ {
			entry, next, err := decodeBTreeEntry(c, pos, multi)
			if err != nil {
				return nil, err
			}
			if entry.monotonicIndex != expectedIndex {
				return nil, &ErrCorrupt{"BTree", "monotonic index out of sequence"}
			}
			expectedIndex += btreeIndexStride

			if entry.seeAlso {
				result[entry.localName] = append(result[entry.localName], model.Topic{
					Kind:          model.TopicSeeAlso,
					DisplayName:   entry.localName,
					SeeAlsoTarget: entry.seeAlsoTarget,
				})
			} else {
				for _, idx := range entry.topicIndices {
					topic, err := resolve.Topic(idx)
					if err != nil {
						if warn != nil {
							warn(err)
						}
						continue
					}
					result[entry.localName] = append(result[entry.localName], topic)
				}
			}
			pos = next
		}
	}

	return result, nil
}

// EntryCount reports how many B-tree entries a buffer contains by
// reading only the block headers, without decoding every entry body —
// used to pin the "final index / 13 + 1" law independently of the full
// walk.
func EntryCount(buf []byte) (int, error) {
	c := cursor{buf, "BTree"}
	if len(buf) < 2 || buf[0] != btreeSignature0 || buf[1] != btreeSignature1 {
		return 0, &ErrCorrupt{"BTree", "bad header signature"}
	}
	blockCount, err := c.u16(btreeBlockCountOff)
	if err != nil {
		return 0, err
	}
	total := 0
	for b := 0; b < int(blockCount); b++ {
		blockOff := btreeBlockBase + b*btreeBlockStride
		count, err := c.u16(blockOff + btreeBlockCountLocalOff)
		if err != nil {
			return 0, err
		}
		total += int(count)
	}
	return total, nil
}

type btreeEntry struct {
	localName      string
	seeAlso        bool
	seeAlsoTarget  string
	topicIndices   []model.TopicIndex
	monotonicIndex uint32
}

// decodeBTreeEntry decodes one variable-width entry starting at off and
// returns it plus the offset of the next entry.
func decodeBTreeEntry(c cursor, off int, multi bool) (btreeEntry, int, error) {
	keyword, pos, err := c.utf16leString(off)
	if err != nil {
		return btreeEntry{}, 0, err
	}

	lastCharOff, err := c.u16(pos)
	if err != nil {
		return btreeEntry{}, 0, err
	}
	pos += 2

	seeAlsoFlag, err := c.u16(pos)
	if err != nil {
		return btreeEntry{}, 0, err
	}
	pos += 2

	_, err = c.u16(pos) // depth: carried for fidelity, not otherwise consumed
	if err != nil {
		return btreeEntry{}, 0, err
	}
	pos += 2

	pairCount, err := c.u16(pos)
	if err != nil {
		return btreeEntry{}, 0, err
	}
	pos += 2

	localName := localDisplayName(keyword, int(lastCharOff))

	entry := btreeEntry{localName: localName}

	if seeAlsoFlag == seeAlsoFlagSeeAlso {
		entry.seeAlso = true
		target, next, err := c.utf16leString(pos)
		if err != nil {
			return btreeEntry{}, 0, err
		}
		entry.seeAlsoTarget = target
		pos = next
	} else {
		entry.topicIndices = make([]model.TopicIndex, 0, pairCount)
		for i := 0; i < int(pairCount); i++ {
			raw, err := c.u32(pos)
			if err != nil {
				return btreeEntry{}, 0, err
			}
			pos += 4
			var idx model.TopicIndex
			if multi {
				idx = model.SplitTopicIndex(raw)
			} else {
				idx = model.TopicIndex{Archive: 0, Slot: int(raw)}
			}
			entry.topicIndices = append(entry.topicIndices, idx)
		}
	}

	monotonic, err := c.u32(pos)
	if err != nil {
		return btreeEntry{}, 0, err
	}
	entry.monotonicIndex = monotonic
	pos += 4

	return entry, pos, nil
}

// localDisplayName extracts the suffix of keyword starting at the
// character (not byte) offset lastCharOff, falling back to the whole
// keyword if the offset is out of range.
func localDisplayName(keyword string, lastCharOff int) string {
	runes := []rune(keyword)
	if lastCharOff < 0 || lastCharOff > len(runes) {
		return keyword
	}
	return string(runes[lastCharOff:])
}
