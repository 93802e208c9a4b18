package search

import (
	"fmt"
	"strings"

	"github.com/domino14/blits/lits"
)

// PVLine is a principal variation: the best line of play found from
// the root, with its score from the mover's perspective.
type PVLine struct {
	Moves []lits.Move
	score float64
}

// Clear empties the line.
func (pv *PVLine) Clear() {
	pv.Moves = pv.Moves[:0]
}

// Update replaces the line with a new best move followed by the best
// continuation found below it.
func (pv *PVLine) Update(m lits.Move, child PVLine, score float64) {
	pv.Clear()
	pv.Moves = append(pv.Moves, m)
	pv.Moves = append(pv.Moves, child.Moves...)
	pv.score = score
}

// Copy returns an independent copy of the line.
func (pv PVLine) Copy() PVLine {
	c := PVLine{score: pv.score}
	c.Moves = append(c.Moves, pv.Moves...)
	return c
}

// String renders the line for the shell, one move per fragment.
func (pv PVLine) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "pv; val %.1f;", pv.score)
	for i, m := range pv.Moves {
		fmt.Fprintf(&sb, " %d: %s;", i+1, m.String())
	}
	return sb.String()
}
