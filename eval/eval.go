// Package eval scores positions for the search. The heuristic is a
// weighted sum of six terms computed from the frontier set and the
// region-fill table; it never enumerates moves. All scores are from
// player X's point of view and the caller negates for the side to
// move.
package eval

import (
	"github.com/domino14/blits/board"
	"github.com/domino14/blits/lits"
	"github.com/domino14/blits/movegen"
)

// Weights holds the term weights and the tunable cutoffs. The threat
// radius and pressure fill threshold were left open by the game's
// designers, so they ride along here instead of being constants.
type Weights struct {
	Material     float64
	Security     float64
	Threat       float64
	Connectivity float64
	Pressure     float64
	Diversity    float64

	// ThreatRadius is the maximum 4-adjacency distance from coverage
	// at which an uncovered symbol still counts as threatened.
	ThreatRadius int
	// PressureFill is the region fill count at which a frontier cell
	// touching the region counts as pressured.
	PressureFill int
}

// DefaultWeights returns the standard tuning.
func DefaultWeights() Weights {
	return Weights{
		Material:     1.0,
		Security:     100.0,
		Threat:       -25.0,
		Connectivity: 15.0,
		Pressure:     -10.0,
		Diversity:    5.0,
		ThreatRadius: 3,
		PressureFill: 3,
	}
}

// Evaluator computes static scores. It is stateless apart from its
// weights and safe to share across search threads.
type Evaluator struct {
	wts Weights
}

// New creates an Evaluator with the given weights.
func New(wts Weights) *Evaluator {
	return &Evaluator{wts: wts}
}

// Score evaluates a position from X's perspective. Terminal positions
// return the exact visible score with no heuristic terms.
func (e *Evaluator) Score(p *board.Position) float64 {
	if movegen.IsTerminal(p) {
		return float64(p.Score())
	}
	stm := p.SideToMove()
	persp := float64(stm.Perspective())

	material := float64(p.Score())
	security := float64(protectedSymbols(p, lits.PlayerX) - protectedSymbols(p, lits.PlayerO))
	threat := e.threatSum(p, lits.PlayerX) - e.threatSum(p, lits.PlayerO)

	frontier := p.Frontier()
	connectivity := float64(
		frontier.Intersect(p.Symbols(lits.PlayerX)).Len() -
			frontier.Intersect(p.Symbols(lits.PlayerO)).Len())

	// pressure and diversity describe the side to move, so they fold
	// into the X frame through the perspective sign
	pressure := float64(e.pressuredFrontier(p)) * persp
	diversity := -bagVariance(p, stm) * persp

	return e.wts.Material*material +
		e.wts.Security*security +
		e.wts.Threat*threat +
		e.wts.Connectivity*connectivity +
		e.wts.Pressure*pressure +
		e.wts.Diversity*diversity
}

// ScoreSTM evaluates from the side to move's perspective, as negamax
// wants it.
func (e *Evaluator) ScoreSTM(p *board.Position) float64 {
	return e.Score(p) * float64(p.SideToMove().Perspective())
}

// protected reports whether covering the cell is forever illegal:
// every 2x2 region containing it already holds three covered cells.
func protected(p *board.Position, c lits.Coord) bool {
	var scratch [4]int
	for _, reg := range lits.RegionsForCell(c, scratch[:0]) {
		if p.RegionFill(reg) < 3 {
			return false
		}
	}
	return true
}

func protectedSymbols(p *board.Position, player lits.Player) int {
	n := 0
	p.Symbols(player).Difference(p.Coverage()).Each(func(idx int) {
		if protected(p, lits.CoordFromIndex(idx)) {
			n++
		}
	})
	return n
}

// threatSum weights each uncovered, unprotected symbol of the player
// by 1/(1+d), d being its 4-adjacency distance to coverage. Distances
// come from repeated dilation of the coverage set, so the cost is a
// few bitwise passes rather than a graph search.
func (e *Evaluator) threatSum(p *board.Position, player lits.Player) float64 {
	cov := p.Coverage()
	if cov.IsEmpty() {
		return 0
	}
	exposed := p.Symbols(player).Difference(cov)
	sum := 0.0
	reached := cov
	for d := 1; d <= e.wts.ThreatRadius && !exposed.IsEmpty(); d++ {
		reached = reached.Dilate()
		hit := exposed.Intersect(reached)
		hit.Each(func(idx int) {
			if !protected(p, lits.CoordFromIndex(idx)) {
				sum += 1.0 / float64(1+d)
			}
		})
		exposed = exposed.Difference(hit)
	}
	return sum
}

// pressuredFrontier counts frontier cells touching a region already at
// the pressure fill threshold.
func (e *Evaluator) pressuredFrontier(p *board.Position) int {
	n := 0
	var scratch [4]int
	p.Frontier().Each(func(idx int) {
		for _, reg := range lits.RegionsForCell(lits.CoordFromIndex(idx), scratch[:0]) {
			if p.RegionFill(reg) >= e.wts.PressureFill {
				n++
				return
			}
		}
	})
	return n
}

// bagVariance is the population variance of the player's four bag
// counts. A lopsided bag scores high variance.
func bagVariance(p *board.Position, player lits.Player) float64 {
	var counts [lits.NumTiles]float64
	mean := 0.0
	for _, kind := range lits.AllTiles() {
		counts[kind] = float64(p.BagCount(player, kind))
		mean += counts[kind]
	}
	mean /= lits.NumTiles
	v := 0.0
	for _, c := range counts {
		d := c - mean
		v += d * d
	}
	return v / lits.NumTiles
}
