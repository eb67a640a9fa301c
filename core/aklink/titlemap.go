package aklink

// TitleMapEntry is one record of a multi-archive (chw) $HHTitleMap: an
// archive stem plus 12 reserved bytes (LCID and two further 32-bit
// fields per spec.md §9's Open Questions) that this implementation never
// interprets.
type TitleMapEntry struct {
	Stem     string
	Reserved [12]byte
}

// DecodeTitleMap parses a $HHTitleMap buffer into its sequence of
// archive-stem records (spec.md §4.5, "Multi-archive (chw) layout").
func DecodeTitleMap(buf []byte) ([]TitleMapEntry, error) {
	c := cursor{buf, "$HHTitleMap"}
	var out []TitleMapEntry
	pos := 0
	for pos < len(buf) {
		stemLen, err := c.u16(pos)
		if err != nil {
			return nil, err
		}
		pos += 2
		if pos+int(stemLen) > len(buf) {
			return nil, &ErrCorrupt{"$HHTitleMap", "stem length exceeds buffer"}
		}
		stem := string(buf[pos : pos+int(stemLen)])
		pos += int(stemLen)
		if pos+12 > len(buf) {
			return nil, &ErrCorrupt{"$HHTitleMap", "truncated reserved bytes"}
		}
		var entry TitleMapEntry
		entry.Stem = stem
		copy(entry.Reserved[:], buf[pos:pos+12])
		pos += 12
		out = append(out, entry)
	}
	return out, nil
}
