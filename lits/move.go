package lits

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Move is a single tetromino placement: a kind and its four cells, kept
// sorted in row-major order. Mask is the same four cells as a CellSet.
type Move struct {
	Kind  Tile
	Cells [4]Coord
	Mask  CellSet
}

var reMove = regexp.MustCompile(`^(?P<kind>[LITSlits])\[(?P<coords>[0-9]{2}(?:,[0-9]{2}){3})\]$`)

// NewMove builds a move from a kind and four cells. Cells are sorted
// canonically; they must be distinct and in bounds. Whether they form a
// legal tetromino of the given kind is the piece map's concern, not
// this constructor's.
func NewMove(kind Tile, cells [4]Coord) (Move, error) {
	sort.Slice(cells[:], func(i, j int) bool { return cells[i].Less(cells[j]) })
	var mask CellSet
	for i, c := range cells {
		if !c.InBounds() {
			return Move{}, fmt.Errorf("coordinate %s is out of bounds", c)
		}
		if i > 0 && c == cells[i-1] {
			return Move{}, fmt.Errorf("duplicate coordinate %s", c)
		}
		mask.SetIndex(c.Index())
	}
	return Move{Kind: kind, Cells: cells, Mask: mask}, nil
}

// ParseMove parses move notation of the form K[rc,rc,rc,rc]. The parse
// is syntactic only; callers resolve the move against the piece map to
// reject cell sets that are not actually tetrominoes.
func ParseMove(s string) (Move, error) {
	m := reMove.FindStringSubmatch(s)
	if m == nil {
		return Move{}, fmt.Errorf("could not parse movestring %q", s)
	}
	kind, err := ParseTile(m[1])
	if err != nil {
		return Move{}, err
	}
	parts := strings.Split(m[2], ",")
	var cells [4]Coord
	for i, p := range parts {
		c, err := ParseCoord(p)
		if err != nil {
			return Move{}, err
		}
		cells[i] = c
	}
	return NewMove(kind, cells)
}

// String is the canonical move notation, e.g. L[00,01,02,10].
func (m Move) String() string {
	var sb strings.Builder
	sb.WriteString(m.Kind.String())
	sb.WriteByte('[')
	for i, c := range m.Cells {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(c.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Less orders moves by their canonical cell sequence, kind breaking
// exact cell ties. This is the deterministic tie-break for move
// ordering.
func (m Move) Less(o Move) bool {
	for i := 0; i < 4; i++ {
		if m.Cells[i] != o.Cells[i] {
			return m.Cells[i].Less(o.Cells[i])
		}
	}
	return m.Kind < o.Kind
}
