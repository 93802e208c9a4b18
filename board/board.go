// Package board implements the mutable LITS position: symbol layout,
// tile coverage, region-fill counters, piece bags, and an undo-capable
// move history. All constraint state is maintained incrementally; apply
// followed by undo restores the position bit for bit.
package board

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/blits/lits"
	"github.com/domino14/blits/tiles"
	"github.com/domino14/blits/zobrist"
)

// ErrNoHistory is returned by Undo on a position with no played moves.
var ErrNoHistory = errors.New("no moves to undo")

const noTile = int8(-1)

var (
	zobristOnce sync.Once
	sharedZob   *zobrist.Zobrist
)

// sharedZobrist returns the process-wide key tables. Sharing one table
// keeps hashes comparable across clones and across games in a session.
func sharedZobrist() *zobrist.Zobrist {
	zobristOnce.Do(func() {
		sharedZob = &zobrist.Zobrist{}
		sharedZob.Initialize(tiles.NumPlacements)
	})
	return sharedZob
}

// Position is one board state. It is a value-ish type: Clone copies a
// few machine words plus the history slice, so search workers fork
// cheaply and never share mutable state.
type Position struct {
	pm *tiles.PieceMap
	z  *zobrist.Zobrist

	symbols    [2]lits.CellSet
	coverage   lits.CellSet
	tileAt     [lits.NumCells]int8
	regionFill [lits.NumRegions]uint8
	bags       [2][lits.NumTiles]uint8
	side       lits.Player
	swapped    bool
	score      int16
	hash       uint64
	history    []uint16
}

// NewPosition builds a fresh position from the base board's X-symbol
// set. The O set is the 180-degree rotation; the two must be disjoint.
func NewPosition(pm *tiles.PieceMap, xSymbols lits.CellSet) (*Position, error) {
	oSymbols := xSymbols.Rotate180()
	if xSymbols.Intersects(oSymbols) {
		return nil, errors.New("base board is not point-symmetric: X and mirrored O sets overlap")
	}
	p := &Position{
		pm:      pm,
		z:       sharedZobrist(),
		symbols: [2]lits.CellSet{xSymbols, oSymbols},
		side:    lits.PlayerX,
	}
	for i := range p.tileAt {
		p.tileAt[i] = noTile
	}
	for player := 0; player < 2; player++ {
		for kind := 0; kind < lits.NumTiles; kind++ {
			p.bags[player][kind] = lits.PiecesPerKind
		}
	}
	p.hash = p.z.Hash(p.symbols[lits.PlayerX], p.symbols[lits.PlayerO], p.side)
	return p, nil
}

// Clone returns an independent deep copy.
func (p *Position) Clone() *Position {
	c := *p
	c.history = make([]uint16, len(p.history), cap(p.history)+8)
	copy(c.history, p.history)
	return &c
}

// PieceMap returns the placement map this position was built with.
func (p *Position) PieceMap() *tiles.PieceMap { return p.pm }

// SideToMove returns the player whose turn it is.
func (p *Position) SideToMove() lits.Player { return p.side }

// Swapped reports whether the pie-rule swap has been played.
func (p *Position) Swapped() bool { return p.swapped }

// Coverage returns the set of covered cells.
func (p *Position) Coverage() lits.CellSet { return p.coverage }

// Symbols returns the given player's symbol set on the current
// (possibly swapped) board.
func (p *Position) Symbols(player lits.Player) lits.CellSet { return p.symbols[player] }

// Frontier returns the uncovered cells edge-adjacent to coverage.
func (p *Position) Frontier() lits.CellSet { return p.coverage.Neighbors() }

// BagCount returns the remaining pieces of a kind for a player.
func (p *Position) BagCount(player lits.Player, kind lits.Tile) int {
	return int(p.bags[player][kind])
}

// RegionFill returns the covered-cell count of the 2x2 region with the
// given index.
func (p *Position) RegionFill(region int) int { return int(p.regionFill[region]) }

// TileAt returns the tile covering a cell, if any.
func (p *Position) TileAt(c lits.Coord) (lits.Tile, bool) {
	v := p.tileAt[c.Index()]
	if v == noTile {
		return 0, false
	}
	return lits.Tile(v), true
}

// Score is the visible score from X's perspective: uncovered X symbols
// minus uncovered O symbols. It is maintained incrementally.
func (p *Position) Score() int { return int(p.score) }

// RecountScore recomputes the visible score from scratch. Verification
// use only.
func (p *Position) RecountScore() int {
	return p.symbols[lits.PlayerX].Difference(p.coverage).Len() -
		p.symbols[lits.PlayerO].Difference(p.coverage).Len()
}

// Hash is the zobrist hash of the position.
func (p *Position) Hash() uint64 { return p.hash }

// Turns returns the number of placements played.
func (p *Position) Turns() int { return len(p.history) }

// MoveHistory returns the played moves in order.
func (p *Position) MoveHistory() []lits.Move {
	out := make([]lits.Move, len(p.history))
	for i, id := range p.history {
		out[i] = p.pm.Get(id).Move()
	}
	return out
}

// CheckLegal is the single-move legality predicate. It resolves the
// move against the placement map and reports the first violated
// constraint, or the placement on success.
func (p *Position) CheckLegal(m lits.Move) (*tiles.Placement, error) {
	for _, c := range m.Cells {
		if !c.InBounds() {
			return nil, &lits.IllegalMoveError{Reason: lits.OutOfBounds, Move: m}
		}
	}
	pl, ok := p.pm.FindMove(m)
	if !ok {
		return nil, &lits.IllegalMoveError{Reason: lits.UnknownOrientation, Move: m}
	}
	return pl, p.checkPlacement(pl)
}

func (p *Position) checkPlacement(pl *tiles.Placement) error {
	m := pl.Move()
	if p.bags[p.side][pl.Kind] == 0 {
		return &lits.IllegalMoveError{Reason: lits.ShapeBagEmpty, Move: m}
	}
	if pl.Mask.Intersects(p.coverage) {
		return &lits.IllegalMoveError{Reason: lits.CellOccupied, Move: m}
	}
	if !p.coverage.IsEmpty() && !pl.Nbrs.Intersects(p.coverage) {
		return &lits.IllegalMoveError{Reason: lits.ConnectivityViolation, Move: m}
	}
	for _, rd := range pl.Regions {
		if p.regionFill[rd.Region]+rd.Count >= 4 {
			return &lits.IllegalMoveError{Reason: lits.FoursquareViolation, Move: m}
		}
	}
	return nil
}

// Apply validates and plays a move, pushing an undo record.
func (p *Position) Apply(m lits.Move) error {
	pl, err := p.CheckLegal(m)
	if err != nil {
		return err
	}
	p.PlayPlacement(pl)
	return nil
}

// PlayPlacement plays a placement with no validation; engine use only.
func (p *Position) PlayPlacement(pl *tiles.Placement) {
	p.bags[p.side][pl.Kind]--
	p.coverage = p.coverage.Union(pl.Mask)
	for _, c := range pl.Cells {
		p.tileAt[c.Index()] = int8(pl.Kind)
	}
	for _, rd := range pl.Regions {
		p.regionFill[rd.Region] += rd.Count
		if p.regionFill[rd.Region] >= 4 {
			log.Panic().
				Uint8("region", rd.Region).
				Uint8("fill", p.regionFill[rd.Region]).
				Str("placement", pl.Move().String()).
				Msg("region fill counter reached 4 after validated move")
		}
	}
	p.score -= int16(pl.Mask.Intersect(p.symbols[lits.PlayerX]).Len())
	p.score += int16(pl.Mask.Intersect(p.symbols[lits.PlayerO]).Len())
	p.hash = p.z.AddPlacement(p.hash, pl.ID)
	p.history = append(p.history, pl.ID)
	p.side = p.side.Other()
}

// Undo reverses the most recent placement exactly.
func (p *Position) Undo() error {
	if len(p.history) == 0 {
		return ErrNoHistory
	}
	p.UnplayLast()
	return nil
}

// UnplayLast reverses the last placement with no checks; engine use
// only.
func (p *Position) UnplayLast() {
	id := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	pl := p.pm.Get(id)

	p.side = p.side.Other()
	p.bags[p.side][pl.Kind]++
	p.coverage = p.coverage.Difference(pl.Mask)
	for _, c := range pl.Cells {
		p.tileAt[c.Index()] = noTile
	}
	for _, rd := range pl.Regions {
		p.regionFill[rd.Region] -= rd.Count
	}
	p.score += int16(pl.Mask.Intersect(p.symbols[lits.PlayerX]).Len())
	p.score -= int16(pl.Mask.Intersect(p.symbols[lits.PlayerO]).Len())
	p.hash = p.z.AddPlacement(p.hash, pl.ID)
}

// CanSwap reports whether the pie-rule swap is available: exactly one
// move played and no swap yet.
func (p *Position) CanSwap() bool {
	return !p.swapped && len(p.history) == 1
}

// Swap plays the pie rule: the second player adopts the first player's
// side. We cannot reassign colours mid-session, so the board is
// recontextualized instead: symbols are conjugated, the score negated,
// and the turn handed back.
func (p *Position) Swap() error {
	if !p.CanSwap() {
		return errors.New("swap is only legal immediately after the first move")
	}
	p.swap()
	return nil
}

// Unswap reverses a swap; only legal when the swap was the last action.
func (p *Position) Unswap() error {
	if !p.swapped || len(p.history) != 1 {
		return errors.New("can only unswap immediately after a swap")
	}
	p.swap()
	return nil
}

// swap is its own inverse: conjugate symbols, negate score, flip turn.
func (p *Position) swap() {
	p.symbols[lits.PlayerX], p.symbols[lits.PlayerO] = p.symbols[lits.PlayerO], p.symbols[lits.PlayerX]
	p.score = -p.score
	p.swapped = !p.swapped
	p.side = p.side.Other()
	p.rehash()
}

// rehash recomputes the hash from scratch. Swaps are rare; everything
// else updates incrementally.
func (p *Position) rehash() {
	h := p.z.Hash(p.symbols[lits.PlayerX], p.symbols[lits.PlayerO], p.side)
	for _, id := range p.history {
		h ^= p.z.PlacementKey(id)
	}
	p.hash = h
}
