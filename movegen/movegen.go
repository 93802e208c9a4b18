// Package movegen generates legal placements for a position. There is
// no incremental cleverness here: the placement map is only 1292
// entries and every candidate is a handful of bitwise tests, so a full
// scan per node is cheap and trivially correct.
package movegen

import (
	"sort"

	"github.com/domino14/blits/board"
	"github.com/domino14/blits/lits"
	"github.com/domino14/blits/tiles"
)

// Generator produces legal moves in search order. It holds a reusable
// scratch buffer, so a Generator must not be shared between goroutines;
// each search thread owns one.
type Generator struct {
	pm      *tiles.PieceMap
	scratch []ScoredPlacement
}

// ScoredPlacement is a legal placement with its ordering keys.
type ScoredPlacement struct {
	Placement *tiles.Placement
	// symbol cells of the opponent (resp. mover) this placement covers
	OppCovered int
	OwnCovered int
}

// NewGenerator creates a Generator over the given placement map.
func NewGenerator(pm *tiles.PieceMap) *Generator {
	return &Generator{
		pm:      pm,
		scratch: make([]ScoredPlacement, 0, tiles.NumPlacements),
	}
}

// legalFor reports whether the placement can be played by the given
// player. The board constraints are player-independent; only the piece
// bag differs.
func legalFor(p *board.Position, pl *tiles.Placement, player lits.Player) bool {
	if p.BagCount(player, pl.Kind) == 0 {
		return false
	}
	if pl.Mask.Intersects(p.Coverage()) {
		return false
	}
	if !p.Coverage().IsEmpty() && !pl.Nbrs.Intersects(p.Coverage()) {
		return false
	}
	for _, rd := range pl.Regions {
		if p.RegionFill(int(rd.Region))+int(rd.Count) >= 4 {
			return false
		}
	}
	return true
}

// GenAll returns every legal move for the side to move, best-first:
// moves covering more opponent symbols come first, then more own
// symbols, with canonical move order breaking ties. The returned slice
// is valid until the next GenAll call on this Generator.
func (g *Generator) GenAll(p *board.Position) []ScoredPlacement {
	side := p.SideToMove()
	opp := side.Other()
	plays := g.scratch[:0]
	all := g.pm.All()
	for i := range all {
		pl := &all[i]
		if !legalFor(p, pl, side) {
			continue
		}
		plays = append(plays, ScoredPlacement{
			Placement:  pl,
			OppCovered: pl.Mask.Intersect(p.Symbols(opp)).Len(),
			OwnCovered: pl.Mask.Intersect(p.Symbols(side)).Len(),
		})
	}
	sort.Slice(plays, func(i, j int) bool {
		a, b := plays[i], plays[j]
		if a.OppCovered != b.OppCovered {
			return a.OppCovered > b.OppCovered
		}
		if a.OwnCovered != b.OwnCovered {
			return a.OwnCovered > b.OwnCovered
		}
		return a.Placement.Move().Less(b.Placement.Move())
	})
	g.scratch = plays
	return plays
}

// HasLegalMove reports whether the given player could place a piece on
// the current board, regardless of whose turn it is.
func HasLegalMove(p *board.Position, player lits.Player) bool {
	all := p.PieceMap().All()
	for i := range all {
		if legalFor(p, &all[i], player) {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the game is over: neither player has a
// legal placement left.
func IsTerminal(p *board.Position) bool {
	return !HasLegalMove(p, lits.PlayerX) && !HasLegalMove(p, lits.PlayerO)
}

// MoverStuck reports whether the side to move specifically has no
// placement. The search treats a stuck mover as game over, since play
// cannot continue from their turn.
func MoverStuck(p *board.Position) bool {
	return !HasLegalMove(p, p.SideToMove())
}
