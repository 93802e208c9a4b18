package zobrist

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/blits/lits"
	"github.com/domino14/blits/tiles"
)

func TestApplyUndoRestoresHash(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(tiles.NumPlacements)

	x := lits.CellSetFromCoords(lits.NewCoord(0, 1), lits.NewCoord(3, 4))
	o := x.Rotate180()
	h0 := z.Hash(x, o, lits.PlayerX)

	h1 := z.AddPlacement(h0, 17)
	is.True(h1 != h0)
	is.Equal(z.AddPlacement(h1, 17), h0)
}

func TestSideToMoveChangesHash(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(tiles.NumPlacements)

	x := lits.CellSetFromCoords(lits.NewCoord(5, 5))
	o := x.Rotate180()
	is.True(z.Hash(x, o, lits.PlayerX) != z.Hash(x, o, lits.PlayerO))
}
