package aklink

import "chmweb/core/model"

// Entry byte widths for the #TOPICS and #URLTBL side-tables
// (spec.md §4.5, step 1-2).
const (
	topicsEntrySize = 16
	topicsNameOff   = 4 // offset within a #TOPICS entry of the #STRINGS offset
	topicsURLOff    = 8 // offset within a #TOPICS entry of the #URLTBL offset

	absentSentinel = 0xFFFFFFFF

	// #URLTBL entries are addressed by the raw byte offset stored in a
	// #TOPICS entry (not by simple index*width), but each entry is a
	// fixed 12 bytes: reserved(4), echoed slot index(4), #URLSTR
	// offset(4).
	urltblEntrySize  = 12
	urltblSlotOff    = 4
	urltblURLStrOff  = 8
)

// ArchiveTables holds one archive's five raw side-table buffers
// (#TOPICS, #STRINGS, #URLTBL, #URLSTR) plus its output subdirectory,
// used to prefix local topic filenames.
type ArchiveTables struct {
	Subdir  string
	Topics  []byte
	Strings []byte
	URLTbl  []byte
	URLStr  []byte
}

// TopicCount returns the number of #TOPICS entries.
func (a ArchiveTables) TopicCount() int {
	return len(a.Topics) / topicsEntrySize
}

// DecodeTopic reconstructs the Topic at #TOPICS slot i (spec.md §4.5).
func (a ArchiveTables) DecodeTopic(i int) (model.Topic, error) {
	topicsC := cursor{a.Topics, "#TOPICS"}
	base := i * topicsEntrySize
	if base+topicsEntrySize > len(a.Topics) {
		return model.Topic{}, &ErrCorrupt{"#TOPICS", "slot index out of range"}
	}

	nameOff, err := topicsC.u32(base + topicsNameOff)
	if err != nil {
		return model.Topic{}, err
	}
	urltblOff, err := topicsC.u32(base + topicsURLOff)
	if err != nil {
		return model.Topic{}, err
	}

	var displayName string
	if nameOff != absentSentinel {
		stringsC := cursor{a.Strings, "#STRINGS"}
		displayName, _, err = stringsC.cstringUTF8(int(nameOff))
		if err != nil {
			return model.Topic{}, err
		}
	}

	urltblC := cursor{a.URLTbl, "#URLTBL"}
	slotEcho, err := urltblC.u32(int(urltblOff) + urltblSlotOff)
	if err != nil {
		return model.Topic{}, err
	}
	if int(slotEcho) != i {
		return model.Topic{}, &ErrCorrupt{"#URLTBL", "echoed slot does not match requested topic index"}
	}
	urlstrOff, err := urltblC.u32(int(urltblOff) + urltblURLStrOff)
	if err != nil {
		return model.Topic{}, err
	}

	urlstrC := cursor{a.URLStr, "#URLSTR"}
	urlOff, err := urlstrC.u32(int(urlstrOff))
	if err != nil {
		return model.Topic{}, err
	}
	frameOff, err := urlstrC.u32(int(urlstrOff) + 4)
	if err != nil {
		return model.Topic{}, err
	}

	if urlOff == 0 && frameOff == 0 {
		filename, _, err := urlstrC.cstringUTF8(int(urlstrOff) + 8)
		if err != nil {
			return model.Topic{}, err
		}
		full := filename
		if a.Subdir != "" {
			full = a.Subdir + "/" + filename
		}
		return model.Topic{
			Kind:        model.TopicLocal,
			DisplayName: displayName,
			Filename:    model.Path(full),
		}, nil
	}

	stringsC := cursor{a.Strings, "#STRINGS"}
	var url, frame string
	if urlOff != 0 {
		url, _, err = stringsC.cstringUTF8(int(urlOff))
		if err != nil {
			return model.Topic{}, err
		}
	}
	if frameOff != 0 {
		frame, _, err = stringsC.cstringUTF8(int(frameOff))
		if err != nil {
			return model.Topic{}, err
		}
	}
	return model.Topic{
		Kind:        model.TopicExternal,
		DisplayName: displayName,
		URL:         url,
		Frame:       frame,
	}, nil
}
