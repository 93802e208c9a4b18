package tiles

import (
	"sync"

	"github.com/domino14/blits/lits"
)

// NumPlacements is the number of distinct in-bounds placements across
// all kinds: 576 L + 140 I + 288 T + 288 S.
const NumPlacements = 1292

// RegionDelta records how many of a placement's cells fall into one 2x2
// region.
type RegionDelta struct {
	Region uint8
	Count  uint8
}

// Placement is one precomputed tetromino placement. Cells are sorted
// row-major; Nbrs is the edge-adjacent halo around the cells.
type Placement struct {
	ID      uint16
	Kind    lits.Tile
	Cells   [4]lits.Coord
	Mask    lits.CellSet
	Nbrs    lits.CellSet
	Regions []RegionDelta
}

// Move converts the placement to its canonical move value.
func (p *Placement) Move() lits.Move {
	return lits.Move{Kind: p.Kind, Cells: p.Cells, Mask: p.Mask}
}

// PieceMap indexes every legal placement by ID and by cell mask. It is
// immutable after construction and safe for concurrent readers, so a
// single map is shared by the canonical game state and all search
// workers.
type PieceMap struct {
	placements []Placement
	byMask     map[lits.CellSet]uint16
	byKind     [lits.NumTiles][]uint16
}

// New builds the full placement map.
func New() *PieceMap {
	pm := &PieceMap{
		placements: make([]Placement, 0, NumPlacements),
		byMask:     make(map[lits.CellSet]uint16, NumPlacements),
	}
	for _, kind := range lits.AllTiles() {
		for _, o := range Orientations(kind) {
			h, w := o.bounds()
			for r := 0; r <= lits.BoardDim-h; r++ {
				for c := 0; c <= lits.BoardDim-w; c++ {
					pm.add(kind, o, r, c)
				}
			}
		}
	}
	return pm
}

func (pm *PieceMap) add(kind lits.Tile, o Orientation, r, c int) {
	var cells [4]lits.Coord
	var mask lits.CellSet
	for i, off := range o {
		cells[i] = lits.NewCoord(r+int(off[0]), c+int(off[1]))
		mask.SetIndex(cells[i].Index())
	}
	regionCounts := make(map[int]uint8)
	var scratch []int
	for _, cell := range cells {
		scratch = lits.RegionsForCell(cell, scratch[:0])
		for _, reg := range scratch {
			regionCounts[reg]++
		}
	}
	regions := make([]RegionDelta, 0, len(regionCounts))
	for reg, n := range regionCounts {
		regions = append(regions, RegionDelta{Region: uint8(reg), Count: n})
	}

	id := uint16(len(pm.placements))
	pm.placements = append(pm.placements, Placement{
		ID:      id,
		Kind:    kind,
		Cells:   cells,
		Mask:    mask,
		Nbrs:    mask.Neighbors(),
		Regions: regions,
	})
	pm.byMask[mask] = id
	pm.byKind[kind] = append(pm.byKind[kind], id)
}

// Len is the number of placements.
func (pm *PieceMap) Len() int {
	return len(pm.placements)
}

// Get returns the placement with the given ID.
func (pm *PieceMap) Get(id uint16) *Placement {
	return &pm.placements[id]
}

// Find resolves a cell mask to its placement, if the mask is a real
// tetromino of the recorded kind. Callers use this to turn a
// syntactically parsed move into a canonical one.
func (pm *PieceMap) Find(mask lits.CellSet) (*Placement, bool) {
	id, ok := pm.byMask[mask]
	if !ok {
		return nil, false
	}
	return &pm.placements[id], true
}

// FindMove resolves a parsed move, checking that its cells form a
// tetromino of its claimed kind.
func (pm *PieceMap) FindMove(m lits.Move) (*Placement, bool) {
	p, ok := pm.Find(m.Mask)
	if !ok || p.Kind != m.Kind {
		return nil, false
	}
	return p, true
}

// All returns the backing placement slice, ID-ordered. Read only.
func (pm *PieceMap) All() []Placement {
	return pm.placements
}

// ByKind returns the placement IDs for one kind.
func (pm *PieceMap) ByKind(kind lits.Tile) []uint16 {
	return pm.byKind[kind]
}

var (
	defaultOnce sync.Once
	defaultMap  *PieceMap
)

// Default returns the process-wide shared placement map.
func Default() *PieceMap {
	defaultOnce.Do(func() {
		defaultMap = New()
	})
	return defaultMap
}
