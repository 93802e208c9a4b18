package game

import (
	"context"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/blits/board"
	"github.com/domino14/blits/config"
	"github.com/domino14/blits/lits"
	"github.com/domino14/blits/search"
	"github.com/domino14/blits/tiles"
)

const scenarioSetup = ".X...X.X.." +
	".........." +
	".........." +
	".........." +
	".........." +
	".........." +
	".........." +
	".........." +
	".........." +
	"..O.O...O."

func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := &config.Config{}
	if err := cfg.Load([]string{"--threads", "1"}); err != nil {
		t.Fatal(err)
	}
	return NewSession(cfg)
}

func TestCommandsRequireGame(t *testing.T) {
	is := is.New(t)
	s := newTestSession(t)
	is.Equal(s.PlayMove("L[00,01,02,10]"), ErrNoGame)
	is.Equal(s.Undo(), ErrNoGame)
	_, err := s.Score()
	is.Equal(err, ErrNoGame)
}

func TestNewGameRandom(t *testing.T) {
	is := is.New(t)
	s := newTestSession(t)
	is.NoErr(s.NewGame(""))
	is.Equal(s.Position().Symbols(lits.PlayerX).Len(), 10)
	is.Equal(s.Position().Turns(), 0)
}

func TestNewGameFromGameString(t *testing.T) {
	is := is.New(t)
	s := newTestSession(t)
	gamestr := scenarioSetup + ";L[00,01,02,10];T[03,04,05,14]"
	is.NoErr(s.NewGame(gamestr))
	is.Equal(s.Position().Turns(), 2)

	notated, err := s.Notate()
	is.NoErr(err)
	is.Equal(notated, gamestr)
}

func TestNewGameReplaysSwap(t *testing.T) {
	is := is.New(t)
	s := newTestSession(t)
	is.NoErr(s.NewGame(scenarioSetup + ";L[00,01,02,10];swap"))
	is.True(s.Position().Swapped())
	is.Equal(s.Position().SideToMove(), lits.PlayerX)
}

func TestSetupPositionFromHash(t *testing.T) {
	is := is.New(t)
	s := newTestSession(t)
	is.NoErr(s.NewGame(scenarioSetup))
	hash := s.Position().Encode()

	s2 := newTestSession(t)
	is.NoErr(s2.SetupPosition(hash))
	is.Equal(s2.Position().Symbols(lits.PlayerX), s.Position().Symbols(lits.PlayerX))
}

func TestUndoRedoRoundTrip(t *testing.T) {
	is := is.New(t)
	s := newTestSession(t)
	is.NoErr(s.NewGame(scenarioSetup))
	is.NoErr(s.PlayMove("L[00,01,02,10]"))
	hashAfter := s.Position().Hash()

	is.NoErr(s.Undo())
	is.Equal(s.Position().Turns(), 0)
	is.NoErr(s.Redo())
	is.Equal(s.Position().Hash(), hashAfter)
	is.Equal(s.Redo(), ErrNoRedo)
}

func TestUndoRestoresSwap(t *testing.T) {
	is := is.New(t)
	s := newTestSession(t)
	is.NoErr(s.NewGame(scenarioSetup))
	is.NoErr(s.PlayMove("L[00,01,02,10]"))
	is.NoErr(s.PlayMove("swap"))
	is.True(s.Position().Swapped())

	is.NoErr(s.Undo())
	is.True(!s.Position().Swapped())
	is.Equal(s.Position().Turns(), 1)
}

func TestPlayClearsRedo(t *testing.T) {
	is := is.New(t)
	s := newTestSession(t)
	is.NoErr(s.NewGame(scenarioSetup))
	is.NoErr(s.PlayMove("L[00,01,02,10]"))
	is.NoErr(s.Undo())
	is.NoErr(s.PlayMove("I[33,43,53,63]"))
	is.Equal(s.Redo(), ErrNoRedo)
}

func TestUndoWithEmptyHistory(t *testing.T) {
	is := is.New(t)
	s := newTestSession(t)
	is.NoErr(s.NewGame(scenarioSetup))
	is.Equal(s.Undo(), board.ErrNoHistory)
}

func TestIllegalMoveSurfaced(t *testing.T) {
	is := is.New(t)
	s := newTestSession(t)
	is.NoErr(s.NewGame(scenarioSetup))
	is.NoErr(s.PlayMove("L[00,01,02,10]"))
	err := s.PlayMove("I[55,56,57,58]")
	is.True(lits.IsIllegalMove(err, lits.ConnectivityViolation))
	// the failed move must not corrupt the undo stack
	is.Equal(s.Position().Turns(), 1)
	is.NoErr(s.Undo())
	is.Equal(s.Position().Turns(), 0)
}

func TestSearchAndPV(t *testing.T) {
	is := is.New(t)
	s := newTestSession(t)
	is.NoErr(s.NewGame(scenarioSetup + ";L[00,01,02,10];T[03,04,05,14]"))

	res, err := s.Search(context.Background(), search.Budget{Depth: 1})
	is.NoErr(err)
	is.True(res.HasMove)

	pv, err := s.PV()
	is.NoErr(err)
	is.Equal(pv.BestMove, res.BestMove)

	// mutating the position makes the PV stale
	is.NoErr(s.PlayMove(res.BestMove.String()))
	_, err = s.PV()
	is.Equal(err, search.ErrNoActiveResult)
}

func TestStartSearchBlocksMutationsImmediately(t *testing.T) {
	is := is.New(t)
	s := newTestSession(t)
	is.NoErr(s.NewGame(scenarioSetup + ";L[00,01,02,10];T[03,04,05,14]"))

	run, err := s.StartSearch(search.Budget{Depth: 1})
	is.NoErr(err)
	// the engine is busy before the runner even executes
	is.Equal(s.PlayMove("I[20,30,40,50]"), search.ErrEngineBusy)
	is.Equal(s.Undo(), search.ErrEngineBusy)
	_, err = s.StartSearch(search.Budget{Depth: 1})
	is.Equal(err, search.ErrEngineBusy)

	res, err := run(context.Background())
	is.NoErr(err)
	is.True(res.HasMove)
	is.NoErr(s.PlayMove(res.BestMove.String()))
}

func TestValidMovesCount(t *testing.T) {
	is := is.New(t)
	s := newTestSession(t)
	is.NoErr(s.NewGame(scenarioSetup))
	moves, err := s.ValidMoves()
	is.NoErr(err)
	is.Equal(len(moves), tiles.NumPlacements)
}

func TestSetupStringRejectsAsymmetric(t *testing.T) {
	is := is.New(t)
	s := newTestSession(t)
	bad := strings.Replace(scenarioSetup, "O", ".", 1)
	is.True(s.NewGame(bad) != nil)
}
