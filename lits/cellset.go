package lits

import (
	"math/bits"
	"strings"
)

// CellSet is a set of board cells packed into two 64-bit words. Bit i
// corresponds to the cell at index i (10*row + col); bits 0-63 live in
// lo and bits 64-99 in hi.
type CellSet struct {
	lo uint64
	hi uint64
}

const hiMask = (uint64(1) << (NumCells - 64)) - 1

var (
	col0Mask CellSet
	col9Mask CellSet
)

func init() {
	for r := 0; r < BoardDim; r++ {
		col0Mask.SetIndex(r * BoardDim)
		col9Mask.SetIndex(r*BoardDim + BoardDim - 1)
	}
}

// CellSetFromCoords builds a set from the given coordinates.
func CellSetFromCoords(coords ...Coord) CellSet {
	var s CellSet
	for _, c := range coords {
		s.SetIndex(c.Index())
	}
	return s
}

// SetIndex adds the cell at the given linear index.
func (s *CellSet) SetIndex(idx int) {
	if idx < 64 {
		s.lo |= 1 << uint(idx)
	} else {
		s.hi |= 1 << uint(idx-64)
	}
}

// ClearIndex removes the cell at the given linear index.
func (s *CellSet) ClearIndex(idx int) {
	if idx < 64 {
		s.lo &^= 1 << uint(idx)
	} else {
		s.hi &^= 1 << uint(idx-64)
	}
}

// HasIndex reports membership of the cell at the given linear index.
func (s CellSet) HasIndex(idx int) bool {
	if idx < 64 {
		return s.lo&(1<<uint(idx)) != 0
	}
	return s.hi&(1<<uint(idx-64)) != 0
}

// Has reports membership of the given coordinate.
func (s CellSet) Has(c Coord) bool {
	return s.HasIndex(c.Index())
}

// Len is the number of cells in the set.
func (s CellSet) Len() int {
	return bits.OnesCount64(s.lo) + bits.OnesCount64(s.hi)
}

// IsEmpty reports whether the set has no members.
func (s CellSet) IsEmpty() bool {
	return s.lo == 0 && s.hi == 0
}

// Union returns the set union.
func (s CellSet) Union(o CellSet) CellSet {
	return CellSet{lo: s.lo | o.lo, hi: s.hi | o.hi}
}

// Intersect returns the set intersection.
func (s CellSet) Intersect(o CellSet) CellSet {
	return CellSet{lo: s.lo & o.lo, hi: s.hi & o.hi}
}

// Difference returns the members of s not in o.
func (s CellSet) Difference(o CellSet) CellSet {
	return CellSet{lo: s.lo &^ o.lo, hi: s.hi &^ o.hi}
}

// Intersects reports whether the sets share any member.
func (s CellSet) Intersects(o CellSet) bool {
	return s.lo&o.lo != 0 || s.hi&o.hi != 0
}

func (s CellSet) shiftUp(n uint) CellSet {
	// toward lower indices
	return CellSet{lo: s.lo>>n | s.hi<<(64-n), hi: s.hi >> n}
}

func (s CellSet) shiftDown(n uint) CellSet {
	// toward higher indices
	return CellSet{lo: s.lo << n, hi: (s.hi<<n | s.lo>>(64-n)) & hiMask}
}

// Dilate returns the set unioned with its 4-neighbourhood. Horizontal
// shifts mask out the wrapping columns first.
func (s CellSet) Dilate() CellSet {
	d := s
	d = d.Union(s.shiftUp(BoardDim))
	d = d.Union(s.shiftDown(BoardDim))
	d = d.Union(s.Difference(col0Mask).shiftUp(1))
	d = d.Union(s.Difference(col9Mask).shiftDown(1))
	return d
}

// Neighbors returns the cells edge-adjacent to the set, excluding the
// set itself. With coverage as input this is the movegen frontier.
func (s CellSet) Neighbors() CellSet {
	return s.Dilate().Difference(s)
}

// Rotate180 maps bit i to bit 99-i. This is the symbol conjugation of
// the base board.
func (s CellSet) Rotate180() CellSet {
	var r CellSet
	for idx := range NumCells {
		if s.HasIndex(idx) {
			r.SetIndex(NumCells - 1 - idx)
		}
	}
	return r
}

// Coords returns the member coordinates in ascending index order.
func (s CellSet) Coords() []Coord {
	out := make([]Coord, 0, s.Len())
	s.Each(func(idx int) {
		out = append(out, CoordFromIndex(idx))
	})
	return out
}

// Each calls f with every member index in ascending order.
func (s CellSet) Each(f func(idx int)) {
	w := s.lo
	for w != 0 {
		f(bits.TrailingZeros64(w))
		w &= w - 1
	}
	w = s.hi
	for w != 0 {
		f(64 + bits.TrailingZeros64(w))
		w &= w - 1
	}
}

// String renders the set as a 10x10 grid of # and . characters, rows
// separated by newlines. Debug use only.
func (s CellSet) String() string {
	var sb strings.Builder
	for r := 0; r < BoardDim; r++ {
		for c := 0; c < BoardDim; c++ {
			if s.HasIndex(r*BoardDim + c) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
