// Package conv provides offset conversion helpers between byte positions in a
// Go string and character positions in the engine's rune view of it.
//
// The engine addresses subjects by character; every public API reports byte
// offsets. An Index is built once per subject and reused for every match on
// that subject, so a global iteration does not re-decode the string.
//
// Invalid UTF-8 bytes decode to utf8.RuneError one byte at a time, so every
// byte of a malformed sequence is its own character position.
package conv

import "sort"

// Index maps between byte offsets and character offsets of one subject.
type Index struct {
	// Runes is the decoded subject. Shared with the engine; must not be modified.
	Runes []rune

	// starts[i] is the byte offset of character i; starts[len(Runes)] is the
	// subject length.
	starts []int
}

// NewIndex decodes s and records the byte offset of every character.
func NewIndex(s string) *Index {
	runes := make([]rune, 0, len(s))
	starts := make([]int, 0, len(s)+1)
	for i, r := range s {
		runes = append(runes, r)
		starts = append(starts, i)
	}
	starts = append(starts, len(s))
	return &Index{Runes: runes, starts: starts}
}

// Len returns the subject length in bytes.
func (x *Index) Len() int {
	return x.starts[len(x.starts)-1]
}

// ByteOffset returns the byte offset of character position pos.
// Panics if pos is out of range.
func (x *Index) ByteOffset(pos int) int {
	return x.starts[pos]
}

// RuneOffset returns the character position that starts at byte offset off.
// ok is false when off does not fall on a character boundary or is out of
// range. The subject length itself is a valid boundary.
func (x *Index) RuneOffset(off int) (pos int, ok bool) {
	if off < 0 || off > x.Len() {
		return -1, false
	}
	pos = sort.SearchInts(x.starts, off)
	if pos < len(x.starts) && x.starts[pos] == off {
		return pos, true
	}
	return -1, false
}

// Next returns the byte offset of the character boundary following off.
// At the end of the subject it returns Len()+1 so callers can detect exhaustion.
func (x *Index) Next(off int) int {
	if off >= x.Len() {
		return off + 1
	}
	pos := sort.SearchInts(x.starts, off+1)
	return x.starts[pos]
}

