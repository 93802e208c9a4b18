package lits

import "fmt"

// Coord is a board coordinate; rows and columns run 0-9 from the top left.
type Coord struct {
	Row int8
	Col int8
}

// NewCoord constructs a coordinate without bounds checking.
func NewCoord(row, col int) Coord {
	return Coord{Row: int8(row), Col: int8(col)}
}

// InBounds reports whether the coordinate is on the board.
func (c Coord) InBounds() bool {
	return c.Row >= 0 && c.Row < BoardDim && c.Col >= 0 && c.Col < BoardDim
}

// Index is the linear offset of the coordinate in the grid.
func (c Coord) Index() int {
	return int(c.Row)*BoardDim + int(c.Col)
}

// CoordFromIndex inverts Index.
func CoordFromIndex(idx int) Coord {
	return Coord{Row: int8(idx / BoardDim), Col: int8(idx % BoardDim)}
}

// String is the canonical two-digit "rc" notation.
func (c Coord) String() string {
	return fmt.Sprintf("%d%d", c.Row, c.Col)
}

// Less orders coordinates row-major.
func (c Coord) Less(o Coord) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// ParseCoord parses the two-digit "rc" notation.
func ParseCoord(s string) (Coord, error) {
	if len(s) != 2 {
		return Coord{}, fmt.Errorf("expected 2-digit coordinate, got %q", s)
	}
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return Coord{}, fmt.Errorf("malformed coordinate %q", s)
	}
	return Coord{Row: int8(s[0] - '0'), Col: int8(s[1] - '0')}, nil
}

// OrthogonalOffsets turn a coordinate into its edge neighbours.
var OrthogonalOffsets = [4][2]int8{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}

// RegionAnchorOffsets are the top-left anchors of the 2x2 regions that
// contain a given cell, relative to that cell.
var RegionAnchorOffsets = [4][2]int8{{-1, -1}, {-1, 0}, {0, -1}, {0, 0}}

// RegionIndex is the linear offset of a 2x2 region given its top-left
// anchor. Anchors run 0-8 on both axes.
func RegionIndex(row, col int) int {
	return row*(BoardDim-1) + col
}

// RegionsForCell appends the region indices containing the given cell to
// dst and returns the extended slice. A cell belongs to at most four
// regions; edge and corner cells belong to fewer.
func RegionsForCell(c Coord, dst []int) []int {
	for _, off := range RegionAnchorOffsets {
		ar, ac := int(c.Row+off[0]), int(c.Col+off[1])
		if ar >= 0 && ar < BoardDim-1 && ac >= 0 && ac < BoardDim-1 {
			dst = append(dst, RegionIndex(ar, ac))
		}
	}
	return dst
}
