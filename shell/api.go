package shell

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/blits/config"
	"github.com/domino14/blits/game"
	"github.com/domino14/blits/search"
)

// Response is a successful command payload.
type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

// CmdOptions are the "-key value" pairs of a command line.
type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

// asyncSearch tracks one background search. Only the search goroutine
// writes done; the REPL goroutine owns the handle itself.
type asyncSearch struct {
	cancel context.CancelFunc
	done   atomic.Bool
}

func (sc *ShellController) executeLine(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "newgame", "new-game":
		return sc.newGame(cmd)
	case "setup-position", "setup":
		return sc.setupPosition(cmd)
	case "play", "play-move":
		return sc.play(cmd)
	case "swap":
		return sc.playArg("swap")
	case "undo", "undo-move":
		return sc.undo(cmd)
	case "redo":
		return sc.redo(cmd)
	case "bestmove", "gen-move":
		return sc.bestMove(cmd)
	case "cancel-search":
		return sc.cancelSearchCmd(cmd)
	case "pv":
		return sc.pv(cmd)
	case "score":
		return sc.score(cmd)
	case "validmoves", "valid-moves":
		return sc.validMoves(cmd)
	case "show", "display":
		return sc.show(cmd)
	case "set":
		return sc.set(cmd)
	case "options":
		return sc.options(cmd)
	case "info":
		return msg("id blits v" + sc.version), nil
	case "initialize":
		return sc.initialize(cmd)
	case "help":
		return usage()
	case "shutdown", "quit", "exit", "bye":
		return nil, errQuit
	}
	return nil, errors.New("unrecognized command " + cmd.cmd)
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	gamestr := strings.Join(cmd.args, " ")
	if err := sc.session.NewGame(gamestr); err != nil {
		return nil, err
	}
	notated, err := sc.session.Notate()
	if err != nil {
		return nil, err
	}
	return msg(notated), nil
}

func (sc *ShellController) setupPosition(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: setup-position <boardhash>")
	}
	if err := sc.session.SetupPosition(cmd.args[0]); err != nil {
		return nil, err
	}
	notated, err := sc.session.Notate()
	if err != nil {
		return nil, err
	}
	return msg(notated), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("no move provided")
	}
	return sc.playArg(cmd.args[0])
}

func (sc *ShellController) playArg(movestr string) (*Response, error) {
	if err := sc.session.PlayMove(movestr); err != nil {
		return nil, err
	}
	notated, err := sc.session.Notate()
	if err != nil {
		return nil, err
	}
	return msg(notated), nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if err := sc.session.Undo(); err != nil {
		return nil, err
	}
	notated, err := sc.session.Notate()
	if err != nil {
		return nil, err
	}
	return msg(notated), nil
}

func (sc *ShellController) redo(cmd *shellcmd) (*Response, error) {
	if err := sc.session.Redo(); err != nil {
		return nil, err
	}
	notated, err := sc.session.Notate()
	if err != nil {
		return nil, err
	}
	return msg(notated), nil
}

// parseBudget understands "depth <n>" and "time <duration|hh:mm:ss>"
// argument pairs; with no arguments the configured default depth is
// used.
func (sc *ShellController) parseBudget(args []string) (search.Budget, error) {
	if len(args) == 0 {
		return search.Budget{Depth: sc.cfg.GetInt(config.ConfigDefaultPlies)}, nil
	}
	if len(args) != 2 {
		return search.Budget{}, errors.New("usage: bestmove [depth <n> | time <duration>]")
	}
	switch args[0] {
	case "depth":
		d, err := strconv.Atoi(args[1])
		if err != nil || d < 1 {
			return search.Budget{}, errors.New("bad depth " + args[1])
		}
		return search.Budget{Depth: d}, nil
	case "time":
		dur, err := parseSearchTime(args[1])
		if err != nil {
			return search.Budget{}, err
		}
		return search.Budget{Time: dur}, nil
	}
	return search.Budget{}, errors.New("unrecognized search option " + args[0])
}

// parseSearchTime accepts a Go duration ("30s", "2m") or "hh:mm:ss".
func parseSearchTime(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, errors.New("bad time " + s + " (want a duration or hh:mm:ss)")
	}
	var secs int
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, errors.New("bad time " + s)
		}
		secs = secs*60 + v
	}
	if secs == 0 {
		return 0, errors.New("zero search time")
	}
	return time.Duration(secs) * time.Second, nil
}

// bestMove runs a search. By default it blocks and returns the move;
// with "-bg true" the search runs in the background and reports when
// done, so cancel-search can interrupt it.
func (sc *ShellController) bestMove(cmd *shellcmd) (*Response, error) {
	budget, err := sc.parseBudget(cmd.args)
	if err != nil {
		return nil, err
	}
	// the session reserves the solver and snapshots the position before
	// returning, so by the time run executes on another goroutine every
	// mutating command is already being rejected
	run, err := sc.session.StartSearch(budget)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if cmd.options.Bool("bg") {
		handle := &asyncSearch{cancel: cancel}
		sc.search = handle
		go func() {
			defer handle.done.Store(true)
			res, err := run(ctx)
			if err != nil {
				sc.showMessage("err\n" + err.Error() + "\nok")
				return
			}
			sc.showMessage(bestMoveText(res) + "\nok")
			log.Debug().Msg("search thread exiting")
		}()
		return msg("search started"), nil
	}

	defer cancel()
	res, err := run(ctx)
	if err != nil {
		return nil, err
	}
	return msg(bestMoveText(res)), nil
}

func bestMoveText(res search.Result) string {
	if res.Swap {
		return "swap"
	}
	if !res.HasMove {
		return fmt.Sprintf("no move; final score %d", int(res.Score))
	}
	return res.BestMove.String()
}

func (sc *ShellController) cancelSearch() {
	if sc.search != nil {
		sc.search.cancel()
		sc.search = nil
	}
}

func (sc *ShellController) cancelSearchCmd(cmd *shellcmd) (*Response, error) {
	if sc.search == nil || sc.search.done.Load() {
		sc.search = nil
		return nil, errors.New("no search in progress")
	}
	sc.cancelSearch()
	return msg("search cancelled"), nil
}

func (sc *ShellController) pv(cmd *shellcmd) (*Response, error) {
	res, err := sc.session.PV()
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "depth %d; val %.1f", res.Depth, res.Score)
	offset := 0
	if res.Swap {
		sb.WriteString("; 1: swap")
		offset = 1
	}
	for i, m := range res.PV {
		fmt.Fprintf(&sb, "; %d: %s", i+1+offset, m.String())
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) score(cmd *shellcmd) (*Response, error) {
	score, err := sc.session.Score()
	if err != nil {
		return nil, err
	}
	return msg(strconv.Itoa(score)), nil
}

func (sc *ShellController) validMoves(cmd *shellcmd) (*Response, error) {
	moves, err := sc.session.ValidMoves()
	if err != nil {
		return nil, err
	}
	frags := make([]string, len(moves))
	for i, m := range moves {
		frags[i] = m.String()
	}
	// after the opening placement the pie rule is a legal action too
	if sc.session.Position().CanSwap() {
		frags = append(frags, "swap")
	}
	return msg(fmt.Sprintf("%d\n%s", len(frags), strings.Join(frags, "; "))), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	p := sc.session.Position()
	if p == nil {
		return nil, game.ErrNoGame
	}
	var sb strings.Builder
	sb.WriteString(p.DisplayText())
	fmt.Fprintf(&sb, "score %d; %s to move; turn %d",
		p.Score(), p.SideToMove().String(), p.Turns())
	return msg(sb.String()), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: set <key> <value>")
	}
	key, value := cmd.args[0], cmd.args[1]
	sc.cfg.Set(key, value)
	if err := sc.session.Reconfigure(); err != nil {
		return nil, err
	}
	return msg("set " + key + " to " + value), nil
}

func (sc *ShellController) options(cmd *shellcmd) (*Response, error) {
	settings := sc.cfg.AllSettings()
	keys := lo.Keys(settings)
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %v\n", k, settings[k])
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) initialize(cmd *shellcmd) (*Response, error) {
	if sc.session.Solver().Searching() {
		return nil, search.ErrEngineBusy
	}
	sc.session = game.NewSession(sc.cfg)
	return msg("id blits v" + sc.version), nil
}
