// Package game owns the canonical position of one engine session and
// the search lifecycle around it. All mutation goes through the
// Session, which serializes access: while a search is running the
// position is read-only and mutating calls fail with
// search.ErrEngineBusy.
package game

import (
	"context"
	"errors"
	"strings"

	"github.com/domino14/blits/board"
	"github.com/domino14/blits/config"
	"github.com/domino14/blits/eval"
	"github.com/domino14/blits/lits"
	"github.com/domino14/blits/movegen"
	"github.com/domino14/blits/search"
	"github.com/domino14/blits/tiles"
)

var (
	ErrNoGame = errors.New("no game in progress")
	ErrNoRedo = errors.New("no moves to redo")
)

// Session is the engine-side game state: the canonical position, the
// undo and redo stacks, and the solver.
type Session struct {
	pm     *tiles.PieceMap
	cfg    *config.Config
	solver *search.Solver

	pos    *board.Position
	past   []*board.Position
	future []*board.Position
}

// NewSession builds a session from config: evaluator weights, thread
// count, and the cancellation check cadence all come from cfg.
func NewSession(cfg *config.Config) *Session {
	wts := eval.Weights{
		Material:     cfg.GetFloat64(config.ConfigWeightMaterial),
		Security:     cfg.GetFloat64(config.ConfigWeightSecurity),
		Threat:       cfg.GetFloat64(config.ConfigWeightThreat),
		Connectivity: cfg.GetFloat64(config.ConfigWeightConnectivity),
		Pressure:     cfg.GetFloat64(config.ConfigWeightPressure),
		Diversity:    cfg.GetFloat64(config.ConfigWeightDiversity),
		ThreatRadius: cfg.GetInt(config.ConfigThreatRadius),
		PressureFill: cfg.GetInt(config.ConfigPressureFill),
	}
	return &Session{
		pm:  tiles.Default(),
		cfg: cfg,
		solver: search.NewSolver(eval.New(wts),
			cfg.GetInt(config.ConfigThreads),
			cfg.GetInt(config.ConfigNodeCheckInterval)),
	}
}

// Reconfigure rebuilds the solver from the current config, picking up
// changed weights or thread counts. The position is untouched. Fails
// while a search is running.
func (s *Session) Reconfigure() error {
	if err := s.ensureMutable(); err != nil {
		return err
	}
	fresh := NewSession(s.cfg)
	s.solver = fresh.solver
	return nil
}

// Position returns the canonical position, or nil before the first
// newgame.
func (s *Session) Position() *board.Position { return s.pos }

// Solver returns the session's search engine.
func (s *Session) Solver() *search.Solver { return s.solver }

func (s *Session) ensureStarted() error {
	if s.pos == nil {
		return ErrNoGame
	}
	return nil
}

func (s *Session) ensureMutable() error {
	if s.solver.Searching() {
		return search.ErrEngineBusy
	}
	return nil
}

// NewGame starts a fresh game. With an empty gamestr a random base
// board is generated; otherwise the gamestr (setup fragment plus
// optional moves and swap) is replayed in full.
func (s *Session) NewGame(gamestr string) error {
	if err := s.ensureMutable(); err != nil {
		return err
	}
	if strings.TrimSpace(gamestr) == "" {
		pos, err := board.Generate(s.pm, s.cfg.GetInt(config.ConfigSymbolsPerPlayer))
		if err != nil {
			return err
		}
		s.pos = pos
		s.past = nil
		s.future = nil
		return nil
	}

	fragments := strings.Split(gamestr, ";")
	pos, err := board.ParseSetup(s.pm, strings.TrimSpace(fragments[0]))
	if err != nil {
		return err
	}
	var past []*board.Position
	for _, frag := range fragments[1:] {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}
		past = append(past, pos.Clone())
		if frag == "swap" {
			if err := pos.Swap(); err != nil {
				return err
			}
			continue
		}
		m, err := lits.ParseMove(frag)
		if err != nil {
			return err
		}
		if err := pos.Apply(m); err != nil {
			return err
		}
	}
	s.pos = pos
	s.past = past
	s.future = nil
	return nil
}

// SetupPosition starts a game from a bare board hash or setup string.
func (s *Session) SetupPosition(setup string) error {
	if err := s.ensureMutable(); err != nil {
		return err
	}
	pos, err := board.ParseSetup(s.pm, strings.TrimSpace(setup))
	if err != nil {
		return err
	}
	s.pos = pos
	s.past = nil
	s.future = nil
	return nil
}

// PlayMove applies a move in text form; "swap" plays the pie rule.
// Any change to the position clears the redo stack.
func (s *Session) PlayMove(movestr string) error {
	if err := s.ensureStarted(); err != nil {
		return err
	}
	if err := s.ensureMutable(); err != nil {
		return err
	}
	undo := s.pos.Clone()
	if strings.TrimSpace(movestr) == "swap" {
		if err := s.pos.Swap(); err != nil {
			return err
		}
	} else {
		m, err := lits.ParseMove(strings.TrimSpace(movestr))
		if err != nil {
			return err
		}
		if err := s.pos.Apply(m); err != nil {
			return err
		}
	}
	s.past = append(s.past, undo)
	s.future = nil
	return nil
}

// Undo steps back one action (placement or swap).
func (s *Session) Undo() error {
	if err := s.ensureStarted(); err != nil {
		return err
	}
	if err := s.ensureMutable(); err != nil {
		return err
	}
	if len(s.past) == 0 {
		return board.ErrNoHistory
	}
	s.future = append(s.future, s.pos)
	s.pos = s.past[len(s.past)-1]
	s.past = s.past[:len(s.past)-1]
	return nil
}

// Redo replays the most recently undone action.
func (s *Session) Redo() error {
	if err := s.ensureStarted(); err != nil {
		return err
	}
	if err := s.ensureMutable(); err != nil {
		return err
	}
	if len(s.future) == 0 {
		return ErrNoRedo
	}
	s.past = append(s.past, s.pos)
	s.pos = s.future[len(s.future)-1]
	s.future = s.future[:len(s.future)-1]
	return nil
}

// Search runs the solver against a private copy of the canonical
// position and blocks until done. The canonical position stays
// read-only for the duration.
func (s *Session) Search(ctx context.Context, budget search.Budget) (search.Result, error) {
	if err := s.ensureStarted(); err != nil {
		return search.Result{}, err
	}
	return s.solver.Solve(ctx, s.pos.Clone(), budget)
}

// StartSearch reserves the solver and snapshots the canonical position
// before returning, then hands back a runner the caller may invoke on
// any goroutine. Mutating commands are rejected from the moment
// StartSearch returns, so a background search never races them.
func (s *Session) StartSearch(budget search.Budget) (func(context.Context) (search.Result, error), error) {
	if err := s.ensureStarted(); err != nil {
		return nil, err
	}
	if err := s.solver.Reserve(); err != nil {
		return nil, err
	}
	solver := s.solver
	pos := s.pos.Clone()
	return func(ctx context.Context) (search.Result, error) {
		return solver.SolveReserved(ctx, pos, budget)
	}, nil
}

// PV returns the principal variation of the last search, failing if
// the position has changed since that search finished.
func (s *Session) PV() (search.Result, error) {
	if err := s.ensureStarted(); err != nil {
		return search.Result{}, err
	}
	res, err := s.solver.BestResult()
	if err != nil {
		return search.Result{}, err
	}
	if res.RootHash != s.pos.Hash() {
		return search.Result{}, search.ErrNoActiveResult
	}
	return res, nil
}

// ValidMoves returns the legal moves for the side to move, in the
// generator's best-first order.
func (s *Session) ValidMoves() ([]lits.Move, error) {
	if err := s.ensureStarted(); err != nil {
		return nil, err
	}
	gen := movegen.NewGenerator(s.pm)
	plays := gen.GenAll(s.pos)
	out := make([]lits.Move, len(plays))
	for i, sp := range plays {
		out[i] = sp.Placement.Move()
	}
	return out, nil
}

// Score returns the visible score of the canonical position.
func (s *Session) Score() (int, error) {
	if err := s.ensureStarted(); err != nil {
		return 0, err
	}
	return s.pos.Score(), nil
}

// Notate renders the full game string of the canonical position.
func (s *Session) Notate() (string, error) {
	if err := s.ensureStarted(); err != nil {
		return "", err
	}
	return s.pos.Notate(), nil
}
