// Package search implements the iterative-deepening negamax engine
// with alpha-beta pruning and lazy-SMP style parallelism: helper
// threads run full independent searches over perturbed root orders and
// the engine keeps the deepest completed result. There is no shared
// transposition table; the only cross-thread state is the node counter
// and the best-result slot.
package search

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/blits/board"
	"github.com/domino14/blits/eval"
	"github.com/domino14/blits/lits"
	"github.com/domino14/blits/movegen"
)

var (
	ErrEngineBusy     = errors.New("engine is already searching")
	ErrNoActiveResult = errors.New("no search result available")
)

// maxPlacements bounds the game length: each player holds twenty
// pieces.
const maxPlacements = 2 * lits.NumTiles * lits.PiecesPerKind

const hugeValue = math.MaxFloat64 / 4

// Budget bounds a search by depth, wall clock, or both. Zero means
// unbounded for that dimension; a fully zero budget searches to the
// end of the game.
type Budget struct {
	Depth int
	Time  time.Duration
}

// Result is a completed-depth search snapshot.
type Result struct {
	BestMove lits.Move
	HasMove  bool
	// Swap is set when the best root action is the pie rule rather
	// than a placement; BestMove is zero in that case.
	Swap bool
	// Score is from the root mover's perspective.
	Score float64
	// PV is the best line of placements; when Swap is set it is the
	// continuation after the swap.
	PV    []lits.Move
	Depth int
	Nodes uint64
	// RootHash identifies the position this result belongs to, so
	// callers can detect staleness.
	RootHash uint64
}

// Solver is the search engine. One Solver serves one session; it is
// Idle between Solve calls and rejects overlapping searches.
type Solver struct {
	ev                *eval.Evaluator
	threads           int
	nodeCheckInterval int

	searching atomic.Bool
	nodes     atomic.Uint64

	mu     sync.Mutex
	result *Result
}

// worker is the per-thread search state: a private position, a private
// generator, and a private root move order.
type worker struct {
	s          *Solver
	pos        *board.Position
	gen        *movegen.Generator
	rootMoves  []uint16
	localNodes uint64
}

// NewSolver creates a solver. threads below 1 is clamped to 1.
func NewSolver(ev *eval.Evaluator, threads, nodeCheckInterval int) *Solver {
	if threads < 1 {
		threads = 1
	}
	if nodeCheckInterval < 1 {
		nodeCheckInterval = 2048
	}
	return &Solver{ev: ev, threads: threads, nodeCheckInterval: nodeCheckInterval}
}

// Nodes returns the node count of the current or last search.
func (s *Solver) Nodes() uint64 { return s.nodes.Load() }

// Searching reports whether a search is in flight.
func (s *Solver) Searching() bool { return s.searching.Load() }

// BestResult returns the latest completed-depth result, or
// ErrNoActiveResult if no search has completed a depth yet.
func (s *Solver) BestResult() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, ErrNoActiveResult
	}
	return *s.result, nil
}

// publish installs a completed-depth result if it beats the current
// one: deeper wins, and at equal depth a better score wins.
func (s *Solver) publish(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil && s.result.RootHash == r.RootHash {
		if s.result.Depth > r.Depth {
			return
		}
		if s.result.Depth == r.Depth && s.result.Score >= r.Score {
			return
		}
	}
	s.result = &r
}

// Reserve marks the engine busy before a search starts, so callers
// handing the search to another goroutine can reject conflicting
// commands immediately. A successful Reserve must be followed by
// exactly one SolveReserved call, which releases the engine.
func (s *Solver) Reserve() error {
	if !s.searching.CompareAndSwap(false, true) {
		return ErrEngineBusy
	}
	return nil
}

// Solve runs a full search from root and blocks until the budget is
// exhausted, the game is solved to the horizon, or ctx is cancelled.
// Cancellation is not an error: the best result from the last
// completed depth is returned. Returns ErrEngineBusy if a search is
// already running.
func (s *Solver) Solve(ctx context.Context, root *board.Position, budget Budget) (Result, error) {
	if err := s.Reserve(); err != nil {
		return Result{}, err
	}
	return s.SolveReserved(ctx, root, budget)
}

// SolveReserved is Solve for an engine already reserved with Reserve.
func (s *Solver) SolveReserved(ctx context.Context, root *board.Position, budget Budget) (Result, error) {
	defer s.searching.Store(false)

	s.nodes.Store(0)
	tstart := time.Now()

	if movegen.MoverStuck(root) {
		// nothing to search; report the exact outcome
		r := Result{
			Score:    float64(root.Score() * root.SideToMove().Perspective()),
			Depth:    0,
			RootHash: root.Hash(),
		}
		s.mu.Lock()
		s.result = &r
		s.mu.Unlock()
		return r, nil
	}

	maxDepth := maxPlacements - root.Turns()
	if budget.Depth > 0 && budget.Depth < maxDepth {
		maxDepth = budget.Depth
	}

	searchCtx := ctx
	var cancelBudget context.CancelFunc
	if budget.Time > 0 {
		searchCtx, cancelBudget = context.WithTimeout(ctx, budget.Time)
		defer cancelBudget()
	}

	// reset the slot so a stale result for another position can never
	// leak out of this search
	s.mu.Lock()
	s.result = nil
	s.mu.Unlock()

	done := make(chan struct{})
	g := errgroup.Group{}
	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				n := s.nodes.Load()
				log.Debug().Uint64("nps", n-lastNodes).Msg("nodes-per-second")
				lastNodes = n
			}
		}
	})

	workers := errgroup.Group{}
	for t := 0; t < s.threads; t++ {
		t := t
		workers.Go(func() error {
			w := s.newWorker(root)
			// depth 1 always runs to completion so that a cancelled
			// search still has a best move to report
			firstCtx := context.Background()
			return w.iterativelyDeepen(firstCtx, searchCtx, maxDepth, t)
		})
	}
	err := workers.Wait()
	close(done)
	_ = g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return Result{}, err
	}

	res, rerr := s.BestResult()
	if rerr != nil {
		return Result{}, rerr
	}
	log.Debug().
		Int("depth", res.Depth).
		Float64("score", res.Score).
		Uint64("nodes", res.Nodes).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("solve-returning")
	return res, nil
}

func (s *Solver) newWorker(root *board.Position) *worker {
	w := &worker{
		s:   s,
		pos: root.Clone(),
		gen: movegen.NewGenerator(root.PieceMap()),
	}
	for _, sp := range w.gen.GenAll(w.pos) {
		w.rootMoves = append(w.rootMoves, sp.Placement.ID)
	}
	return w
}

// iterativelyDeepen runs depths 1..maxDepth. Depth 1 uses firstCtx
// (never cancelled); deeper iterations poll searchCtx. Helper threads
// (t > 0) perturb their root order between iterations.
func (w *worker) iterativelyDeepen(firstCtx, searchCtx context.Context, maxDepth, t int) error {
	for depth := 1; depth <= maxDepth; depth++ {
		ctx := searchCtx
		if depth == 1 {
			ctx = firstCtx
		}
		if err := w.searchDepth(ctx, depth); err != nil {
			return err
		}
		if t > 0 && depth < maxDepth {
			w.perturbRoot(t)
		}
	}
	return nil
}

// searchDepth runs one full-window root traversal and publishes the
// completed result.
func (w *worker) searchDepth(ctx context.Context, depth int) error {
	bestValue := -hugeValue
	var bestID uint16
	var bestPV PVLine
	var childPV PVLine
	α, β := -hugeValue, hugeValue

	pm := w.pos.PieceMap()
	swapBest := false
	for _, id := range w.rootMoves {
		pl := pm.Get(id)
		w.pos.PlayPlacement(pl)
		w.countNode()
		value, err := w.negamax(ctx, depth-1, -β, -α, &childPV)
		w.pos.UnplayLast()
		if err != nil {
			return err
		}
		if -value > bestValue {
			bestValue = -value
			bestID = id
			bestPV.Update(pl.Move(), childPV, bestValue)
		}
		if bestValue > α {
			α = bestValue
		}
		childPV.Clear()
	}

	// the pie rule competes with the placements when it is available
	if w.pos.CanSwap() {
		if err := w.pos.Swap(); err != nil {
			return err
		}
		w.countNode()
		value, err := w.negamax(ctx, depth-1, -β, -α, &childPV)
		if uerr := w.pos.Unswap(); uerr != nil {
			return uerr
		}
		if err != nil {
			return err
		}
		if -value > bestValue {
			bestValue = -value
			swapBest = true
			bestPV = childPV.Copy()
		}
	}

	res := Result{
		Score:    bestValue,
		PV:       bestPV.Copy().Moves,
		Depth:    depth,
		Nodes:    w.s.nodes.Load(),
		RootHash: w.pos.Hash(),
	}
	if swapBest {
		res.Swap = true
	} else {
		res.BestMove = pm.Get(bestID).Move()
		res.HasMove = true
	}
	w.s.publish(res)
	log.Debug().Int("depth", depth).Float64("value", bestValue).Msg("depth-completed")
	return nil
}

func (w *worker) negamax(ctx context.Context, depth int, α, β float64, pv *PVLine) (float64, error) {
	moves := w.gen.GenAll(w.pos)
	if len(moves) == 0 {
		// the mover cannot place: game over, exact score
		pv.Clear()
		return float64(w.pos.Score() * w.pos.SideToMove().Perspective()), nil
	}
	if depth == 0 {
		pv.Clear()
		return w.s.ev.ScoreSTM(w.pos), nil
	}

	// the generator's buffer is reused by recursive calls, so keep
	// only the IDs
	ids := make([]uint16, len(moves))
	for i, sp := range moves {
		ids[i] = sp.Placement.ID
	}

	bestValue := -hugeValue
	var childPV PVLine
	pm := w.pos.PieceMap()

	// interior nodes one ply into the game can still swap; the line
	// below a swap has no placement notation, so the PV stops here
	if w.pos.CanSwap() {
		if err := w.pos.Swap(); err != nil {
			return 0, err
		}
		w.countNode()
		value, err := w.negamax(ctx, depth-1, -β, -α, &childPV)
		if uerr := w.pos.Unswap(); uerr != nil {
			return 0, uerr
		}
		if err != nil {
			return 0, err
		}
		if -value > bestValue {
			bestValue = -value
			pv.Clear()
		}
		if bestValue > α {
			α = bestValue
		}
		if bestValue >= β {
			return bestValue, nil
		}
		childPV.Clear()
	}

	for _, id := range ids {
		pl := pm.Get(id)
		w.pos.PlayPlacement(pl)
		w.countNode()
		if err := ctxErrAtCadence(ctx, w.localNodes, w.s.nodeCheckInterval); err != nil {
			w.pos.UnplayLast()
			return 0, err
		}
		value, err := w.negamax(ctx, depth-1, -β, -α, &childPV)
		w.pos.UnplayLast()
		if err != nil {
			return 0, err
		}
		if -value > bestValue {
			bestValue = -value
			pv.Update(pl.Move(), childPV, bestValue)
		}
		if bestValue > α {
			α = bestValue
		}
		if bestValue >= β {
			break // beta cut-off
		}
		childPV.Clear()
	}
	return bestValue, nil
}

func (w *worker) countNode() {
	w.localNodes++
	w.s.nodes.Add(1)
}

// ctxErrAtCadence polls for cancellation every interval nodes, so
// budget overshoot is bounded by the check interval rather than by
// per-node cost.
func ctxErrAtCadence(ctx context.Context, nodes uint64, interval int) error {
	if nodes%uint64(interval) == 0 {
		return ctx.Err()
	}
	return nil
}

// perturbRoot reorders this worker's root moves so helper threads
// explore the tree differently from the main thread. Lower thread
// numbers keep more of the heuristic order.
func (w *worker) perturbRoot(t int) {
	switch {
	case t == 1:
		// keep heuristic order
	case t <= 3:
		topfew := len(w.rootMoves) / 3
		if topfew > 1 {
			frand.Shuffle(topfew, func(i, j int) {
				w.rootMoves[i], w.rootMoves[j] = w.rootMoves[j], w.rootMoves[i]
			})
		}
	default:
		frand.Shuffle(len(w.rootMoves), func(i, j int) {
			w.rootMoves[i], w.rootMoves[j] = w.rootMoves[j], w.rootMoves[i]
		})
	}
}

// SortMovesByScore is a helper for display: it runs a one-ply search
// over every legal move and returns them best-first with their
// one-ply values.
func (s *Solver) SortMovesByScore(p *board.Position) []ScoredMove {
	gen := movegen.NewGenerator(p.PieceMap())
	work := p.Clone()
	var out []ScoredMove
	for _, sp := range gen.GenAll(p) {
		work.PlayPlacement(sp.Placement)
		v := -s.ev.ScoreSTM(work)
		work.UnplayLast()
		out = append(out, ScoredMove{Move: sp.Placement.Move(), Value: v})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// ScoredMove pairs a legal move with its one-ply valuation.
type ScoredMove struct {
	Move  lits.Move
	Value float64
}
