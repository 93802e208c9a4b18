// Package tiles holds the tetromino orientation tables and the
// precomputed placement map: every distinct in-bounds placement of every
// kind, with its cell mask, neighbour mask, and touched-region deltas.
package tiles

import "github.com/domino14/blits/lits"

// Orientation is a normalized offset pattern of four cells. Offsets are
// relative to the pattern's bounding-box top-left corner and listed in
// row-major order.
type Orientation [4][2]int8

// orientations maps each tile kind to its canonical orientations,
// rotations and reflections included. L has 8 (L and J chirality), I
// has 2, T has 4, S has 4 (S and Z chirality).
var orientations = [lits.NumTiles][]Orientation{
	lits.TileL: {
		{{0, 0}, {1, 0}, {2, 0}, {2, 1}},
		{{0, 1}, {1, 1}, {2, 0}, {2, 1}},
		{{0, 0}, {0, 1}, {1, 0}, {2, 0}},
		{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{0, 0}, {0, 1}, {0, 2}, {1, 0}},
		{{0, 0}, {0, 1}, {0, 2}, {1, 2}},
		{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
		{{0, 2}, {1, 0}, {1, 1}, {1, 2}},
	},
	lits.TileI: {
		{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		{{0, 0}, {0, 1}, {0, 2}, {0, 3}},
	},
	lits.TileT: {
		{{0, 0}, {0, 1}, {0, 2}, {1, 1}},
		{{0, 1}, {1, 0}, {1, 1}, {1, 2}},
		{{0, 0}, {1, 0}, {1, 1}, {2, 0}},
		{{0, 1}, {1, 0}, {1, 1}, {2, 1}},
	},
	lits.TileS: {
		{{0, 1}, {0, 2}, {1, 0}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{0, 1}, {1, 0}, {1, 1}, {2, 0}},
	},
}

// Orientations returns the canonical orientations for a kind.
func Orientations(kind lits.Tile) []Orientation {
	return orientations[kind]
}

func (o Orientation) bounds() (h, w int) {
	for _, off := range o {
		if int(off[0]) >= h {
			h = int(off[0]) + 1
		}
		if int(off[1]) >= w {
			w = int(off[1]) + 1
		}
	}
	return h, w
}
