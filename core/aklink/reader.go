// Package aklink decodes the AK-Link Table (C5, spec.md §4.5): the
// binary #TOPICS/#STRINGS/#URLTBL/#URLSTR side-tables and the
// associative/keyword B-tree indices, in both single-archive and
// multi-archive (chw) layouts.
//
// Every decoder here borrows a single byte slice and reads explicit
// little-endian fields by offset rather than unmarshalling into typed
// structs eagerly (spec.md §9, "Binary parsing"): the B-tree walk in
// particular needs bounds checks at every field read, which a
// struct-based decode would bury inside reflection or per-field panics.
package aklink

import (
	"encoding/binary"
	"fmt"
)

// ErrCorrupt marks a structural failure in a side-table or B-tree block
// (spec.md §7, "Malformed binary header/block": fatal, abort run).
type ErrCorrupt struct {
	Table string
	Msg   string
}

func (e *ErrCorrupt) Error() string {
	return fmt.Sprintf("corrupt %s: %s", e.Table, e.Msg)
}

// cursor is a bounds-checked reader over a borrowed byte slice.
type cursor struct {
	buf   []byte
	table string
}

func (c cursor) u16(off int) (uint16, error) {
	if off < 0 || off+2 > len(c.buf) {
		return 0, &ErrCorrupt{c.table, fmt.Sprintf("u16 read out of bounds at %d", off)}
	}
	return binary.LittleEndian.Uint16(c.buf[off : off+2]), nil
}

func (c cursor) u32(off int) (uint32, error) {
	if off < 0 || off+4 > len(c.buf) {
		return 0, &ErrCorrupt{c.table, fmt.Sprintf("u32 read out of bounds at %d", off)}
	}
	return binary.LittleEndian.Uint32(c.buf[off : off+4]), nil
}

// cstringUTF8 reads a NUL-terminated UTF-8 string starting at off,
// returning the string and the offset just past the terminator.
func (c cursor) cstringUTF8(off int) (string, int, error) {
	if off < 0 || off > len(c.buf) {
		return "", 0, &ErrCorrupt{c.table, fmt.Sprintf("cstring read out of bounds at %d", off)}
	}
	end := off
	for end < len(c.buf) && c.buf[end] != 0 {
		end++
	}
	if end >= len(c.buf) {
		return "", 0, &ErrCorrupt{c.table, "unterminated cstring"}
	}
	return string(c.buf[off:end]), end + 1, nil
}

// utf16leString reads a NUL-terminated UTF-16LE string starting at off,
// returning the decoded string and the byte offset just past its
// terminator (spec.md §4.5: "Keyword names inside B-tree blocks are
// NUL-terminated UTF-16LE").
func (c cursor) utf16leString(off int) (string, int, error) {
	if off < 0 || off > len(c.buf) {
		return "", 0, &ErrCorrupt{c.table, fmt.Sprintf("utf16 read out of bounds at %d", off)}
	}
	var units []uint16
	i := off
	for {
		if i+2 > len(c.buf) {
			return "", 0, &ErrCorrupt{c.table, "unterminated utf16 string"}
		}
		u := binary.LittleEndian.Uint16(c.buf[i : i+2])
		i += 2
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return decodeUTF16(units), i, nil
}

func decodeUTF16(units []uint16) string {
	runes := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xD800 && u <= 0xDBFF && i+1 < len(units) {
			u2 := units[i+1]
			if u2 >= 0xDC00 && u2 <= 0xDFFF {
				r := (rune(u-0xD800) << 10) | rune(u2-0xDC00)
				runes = append(runes, r+0x10000)
				i++
				continue
			}
		}
		runes = append(runes, rune(u))
	}
	return string(runes)
}
