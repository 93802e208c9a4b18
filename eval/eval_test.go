package eval

import (
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/blits/board"
	"github.com/domino14/blits/lits"
	"github.com/domino14/blits/tiles"
)

func position(t *testing.T, xCoords ...lits.Coord) *board.Position {
	t.Helper()
	p, err := board.NewPosition(tiles.Default(), lits.CellSetFromCoords(xCoords...))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func play(t *testing.T, p *board.Position, s string) {
	t.Helper()
	m, err := lits.ParseMove(s)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Apply(m); err != nil {
		t.Fatal(err)
	}
}

func TestFreshPositionScoresZero(t *testing.T) {
	e := New(DefaultWeights())
	p := position(t, lits.NewCoord(0, 1), lits.NewCoord(4, 4))
	// no coverage: every term vanishes and the bags are balanced
	assert.InDelta(t, 0, e.Score(p), 1e-9)
}

func TestProtectedCornerSymbol(t *testing.T) {
	is := is.New(t)
	// X symbol in the corner at (9,9); the T fills region (8,8) to
	// three, so the corner cell can never be covered
	p := position(t, lits.NewCoord(9, 9))
	play(t, p, "T[78,88,89,98]")

	is.True(protected(p, lits.NewCoord(9, 9)))
	is.Equal(protectedSymbols(p, lits.PlayerX), 1)
	is.Equal(protectedSymbols(p, lits.PlayerO), 0)
}

func TestThreatInverseDistance(t *testing.T) {
	e := New(DefaultWeights())
	p := position(t, lits.NewCoord(0, 3))
	play(t, p, "L[00,01,02,10]")

	// the X symbol at (0,3) sits one step from coverage: weight 1/2
	assert.InDelta(t, 0.5, e.threatSum(p, lits.PlayerX), 1e-9)
	// the mirrored O symbol at (9,6) is far outside the radius
	assert.InDelta(t, 0, e.threatSum(p, lits.PlayerO), 1e-9)
}

func TestThreatSkipsProtectedSymbols(t *testing.T) {
	e := New(DefaultWeights())
	p := position(t, lits.NewCoord(9, 9))
	play(t, p, "T[78,88,89,98]")

	// (9,9) is adjacent to coverage but permanently protected
	assert.InDelta(t, 0, e.threatSum(p, lits.PlayerX), 1e-9)
}

func TestPressuredFrontier(t *testing.T) {
	is := is.New(t)
	e := New(DefaultWeights())
	p := position(t, lits.NewCoord(0, 5))
	play(t, p, "L[00,01,02,10]")

	// frontier is (0,3),(1,1),(1,2),(2,0); only (1,1) touches region
	// (0,0), which the L filled to three
	is.Equal(e.pressuredFrontier(p), 1)
}

func TestBagVariance(t *testing.T) {
	p := position(t, lits.NewCoord(0, 5))
	assert.InDelta(t, 0, bagVariance(p, lits.PlayerX), 1e-9)

	play(t, p, "L[00,01,02,10]")
	// X bags are now 4,5,5,5
	assert.InDelta(t, 0.1875, bagVariance(p, lits.PlayerX), 1e-9)
	assert.InDelta(t, 0, bagVariance(p, lits.PlayerO), 1e-9)
}

func TestScoreSTMNegatesForO(t *testing.T) {
	e := New(DefaultWeights())
	p := position(t, lits.NewCoord(0, 5))
	play(t, p, "L[00,01,02,10]")

	assert.InDelta(t, -e.Score(p), e.ScoreSTM(p), 1e-9)
}

func TestMaterialTracksVisibleScore(t *testing.T) {
	wts := Weights{Material: 1.0, ThreatRadius: 3, PressureFill: 3}
	e := New(wts)
	p := position(t, lits.NewCoord(0, 1), lits.NewCoord(0, 5))
	play(t, p, "L[00,01,02,10]")

	// with only the material weight set, the heuristic is the score
	assert.InDelta(t, float64(p.Score()), e.Score(p), 1e-9)
}
