// Package shell is the interactive LITS text protocol front end. Each
// command prints its payload followed by an "ok" footer; failures
// print "err" with the message and still close with "ok", so a driver
// can always resynchronize on the footer.
package shell

import (
	"errors"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/blits/config"
	"github.com/domino14/blits/game"
)

var (
	errNoData            = errors.New("no data in command")
	errWrongOptionSyntax = errors.New("options need to come in pairs")
	errQuit              = errors.New("sending quit signal")
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

// extractFields tokenizes a command line. Tokens after the command
// name are positional arguments until the first "-option"; options
// must come in "-key value" pairs.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := strings.ToLower(fields[0])
	var args []string
	options := CmdOptions{}
	// handle options
	lastWasOption := false
	lastOption := ""
	for _, token := range fields[1:] {
		if strings.HasPrefix(token, "-") && len(token) > 1 && !isNumeric(token[1:]) {
			lastWasOption = true
			lastOption = token[1:]
			continue
		}
		if lastWasOption {
			lastWasOption = false
			options[lastOption] = append(options[lastOption], token)
		} else {
			args = append(args, token)
		}
	}
	if lastWasOption {
		// dangling option with no value
		return nil, errWrongOptionSyntax
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != ':' {
			return false
		}
	}
	return len(s) > 0
}

// ShellController drives the readline loop and owns the session.
type ShellController struct {
	l       *readline.Instance
	cfg     *config.Config
	session *game.Session
	version string

	search *asyncSearch
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// NewShellController builds the controller and its readline instance.
func NewShellController(cfg *config.Config, version string) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mblits>\033[0m ",
		HistoryFile:     "/tmp/blits_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	return &ShellController{
		l:       l,
		cfg:     cfg,
		session: game.NewSession(cfg),
		version: version,
	}
}

func (sc *ShellController) out() io.Writer {
	if sc.l != nil {
		return sc.l.Stderr()
	}
	return os.Stderr
}

func (sc *ShellController) showMessage(msg string) {
	io.WriteString(sc.out(), msg)
	io.WriteString(sc.out(), "\n")
}

// respond prints a command outcome with the protocol footer.
func (sc *ShellController) respond(r *Response, err error) {
	if err != nil {
		sc.showMessage("err\n" + err.Error())
	} else if r != nil && r.message != "" {
		sc.showMessage(r.message)
	}
	sc.showMessage("ok")
}

// Loop reads and executes commands until quit or EOF.
func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.executeLine(line)
		if errors.Is(err, errQuit) {
			sig <- syscall.SIGINT
			break
		}
		sc.respond(resp, err)
	}
	log.Debug().Msg("exiting readline loop")
}

// Execute runs a single command line, for one-shot invocations.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.executeLine(strings.TrimSpace(line))
	if errors.Is(err, errQuit) {
		return
	}
	sc.respond(resp, err)
}

// Cleanup cancels any in-flight search.
func (sc *ShellController) Cleanup() {
	sc.cancelSearch()
}
