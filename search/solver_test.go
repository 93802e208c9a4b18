package search

import (
	"context"
	"testing"
	"time"

	"github.com/matryer/is"
	"lukechampine.com/frand"

	"github.com/domino14/blits/board"
	"github.com/domino14/blits/eval"
	"github.com/domino14/blits/lits"
	"github.com/domino14/blits/movegen"
	"github.com/domino14/blits/tiles"
)

func scenarioPosition(t *testing.T) *board.Position {
	t.Helper()
	x := lits.CellSetFromCoords(lits.NewCoord(0, 1), lits.NewCoord(0, 5), lits.NewCoord(0, 7))
	p, err := board.NewPosition(tiles.Default(), x)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func newTestSolver(threads int) *Solver {
	return NewSolver(eval.New(eval.DefaultWeights()), threads, 64)
}

// advancedPosition plays the opening so the connectivity rule trims
// the branching factor to something a deep test can afford.
func advancedPosition(t *testing.T) *board.Position {
	t.Helper()
	p := scenarioPosition(t)
	for _, ms := range []string{"L[00,01,02,10]", "T[03,04,05,14]"} {
		m, err := lits.ParseMove(ms)
		if err != nil {
			t.Fatal(err)
		}
		if err := p.Apply(m); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func TestDepthOneCountsOneNodePerRootMove(t *testing.T) {
	is := is.New(t)
	p := scenarioPosition(t)
	gen := movegen.NewGenerator(p.PieceMap())
	rootMoves := len(gen.GenAll(p))

	s := newTestSolver(1)
	res, err := s.Solve(context.Background(), p, Budget{Depth: 1})
	is.NoErr(err)
	is.True(res.HasMove)
	is.Equal(res.Depth, 1)
	is.Equal(res.Nodes, uint64(rootMoves))
	is.Equal(res.RootHash, p.Hash())
}

// singleMovePosition plays random games until it finds a position with
// exactly one legal move, common near the end as the board locks up.
func singleMovePosition(t *testing.T) *board.Position {
	t.Helper()
	for trial := 0; trial < 50; trial++ {
		p, err := board.Generate(tiles.Default(), 10)
		if err != nil {
			t.Fatal(err)
		}
		gen := movegen.NewGenerator(p.PieceMap())
		for {
			plays := gen.GenAll(p)
			if len(plays) == 0 {
				break
			}
			if len(plays) == 1 {
				return p
			}
			if err := p.Apply(plays[frand.Intn(len(plays))].Placement.Move()); err != nil {
				t.Fatal(err)
			}
		}
	}
	t.Skip("no single-move position reached")
	return nil
}

func TestDepthOneSingleLegalMove(t *testing.T) {
	is := is.New(t)
	p := singleMovePosition(t)
	gen := movegen.NewGenerator(p.PieceMap())
	only := gen.GenAll(p)[0].Placement.Move()

	s := newTestSolver(1)
	res, err := s.Solve(context.Background(), p, Budget{Depth: 1})
	is.NoErr(err)
	is.True(res.HasMove)
	is.Equal(res.BestMove, only)
	is.Equal(res.Nodes, uint64(1))
}

func TestPVIsPlayable(t *testing.T) {
	is := is.New(t)
	p := advancedPosition(t)
	s := newTestSolver(1)
	res, err := s.Solve(context.Background(), p, Budget{Depth: 3})
	is.NoErr(err)
	is.True(res.HasMove)
	is.Equal(res.Depth, 3)
	is.True(len(res.PV) >= 1)
	is.Equal(res.PV[0], res.BestMove)

	// the PV must replay cleanly from the root
	replay := p.Clone()
	for _, m := range res.PV {
		is.NoErr(replay.Apply(m))
	}
}

// After a first move that grabs both reachable O symbols, every reply
// available to O scores worse than simply taking that move over, so a
// material-only search must pick the pie rule.
func TestSearchPrefersSwapAfterStrongOpening(t *testing.T) {
	is := is.New(t)
	p := scenarioPosition(t)
	m, err := lits.ParseMove("T[83,92,93,94]")
	is.NoErr(err)
	is.NoErr(p.Apply(m))
	is.True(p.CanSwap())

	s := NewSolver(eval.New(eval.Weights{Material: 1, ThreatRadius: 3, PressureFill: 3}), 1, 64)
	res, err := s.Solve(context.Background(), p, Budget{Depth: 1})
	is.NoErr(err)
	is.True(res.Swap)
	is.True(!res.HasMove)
	is.Equal(res.Score, 2.0)

	// and the root position comes back unswapped
	is.True(!p.Swapped())
}

func TestEngineBusy(t *testing.T) {
	is := is.New(t)
	p := scenarioPosition(t)
	s := newTestSolver(1)
	s.searching.Store(true)
	_, err := s.Solve(context.Background(), p, Budget{Depth: 1})
	is.Equal(err, ErrEngineBusy)
}

func TestNoActiveResult(t *testing.T) {
	is := is.New(t)
	s := newTestSolver(1)
	_, err := s.BestResult()
	is.Equal(err, ErrNoActiveResult)
}

func TestTimeBudgetStillReturnsCompletedDepth(t *testing.T) {
	is := is.New(t)
	p := advancedPosition(t)
	s := newTestSolver(1)
	// far too little time for a deep search; depth 1 always completes
	res, err := s.Solve(context.Background(), p, Budget{Depth: 10, Time: time.Millisecond})
	is.NoErr(err)
	is.True(res.HasMove)
	is.True(res.Depth >= 1)
	_, err = p.CheckLegal(res.BestMove)
	is.NoErr(err)
}

func TestCancellationReturnsBestSoFar(t *testing.T) {
	is := is.New(t)
	p := advancedPosition(t)
	s := newTestSolver(1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	res, err := s.Solve(ctx, p, Budget{Depth: 20})
	is.NoErr(err)
	is.True(res.HasMove)
	is.True(res.Depth >= 1)
}

func TestParallelSearchAgreesOnLegalMove(t *testing.T) {
	is := is.New(t)
	p := advancedPosition(t)
	s := newTestSolver(4)
	res, err := s.Solve(context.Background(), p, Budget{Depth: 2})
	is.NoErr(err)
	is.True(res.HasMove)
	is.True(res.Depth >= 2)
	_, err = p.CheckLegal(res.BestMove)
	is.NoErr(err)
}

func TestSolveDoesNotMutateRoot(t *testing.T) {
	is := is.New(t)
	p := advancedPosition(t)
	before := p.Hash()
	s := newTestSolver(2)
	_, err := s.Solve(context.Background(), p, Budget{Depth: 2})
	is.NoErr(err)
	is.Equal(p.Hash(), before)
	is.Equal(p.Turns(), 2)
}

func TestSortMovesByScore(t *testing.T) {
	is := is.New(t)
	p := scenarioPosition(t)
	s := newTestSolver(1)
	scored := s.SortMovesByScore(p)
	is.Equal(len(scored), tiles.NumPlacements)
	for i := 1; i < len(scored); i++ {
		is.True(scored[i-1].Value >= scored[i].Value)
	}
}
