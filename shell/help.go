package shell

const helpText = `blits command reference

  newgame [gamestring]       start a game; no argument generates a random
                             board, otherwise the gamestring (setup and
                             moves) is replayed in full
  setup-position <hash>      start a game from a 20-character board hash
                             or a 100-character board diagram
  play <move|swap>           apply a move, e.g. play L[00,01,02,10];
                             "play swap" invokes the pie rule
  swap                       shorthand for play swap
  undo                       take back the last action
  redo                       replay the last undone action
  bestmove [depth N|time T]  search for the best move; T is a Go
                             duration ("30s") or hh:mm:ss. Add -bg true
                             to search in the background
  cancel-search              stop a background search
  pv                         principal variation of the last search
  score                      visible score (positive favors X)
  validmoves                 count and list of legal moves, best first;
                             includes swap when the pie rule is legal
  show                       board diagram, score, and side to move
  set <key> <value>          change a setting (see options)
  options                    list all settings
  info                       engine name and version
  initialize                 reset the engine, keeping settings
  quit                       exit
`

func usage() (*Response, error) {
	return msg(helpText), nil
}
