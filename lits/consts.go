package lits

import "fmt"

const (
	// BoardDim is the side length of the square board.
	BoardDim = 10
	// NumCells is the total number of cells on the board.
	NumCells = BoardDim * BoardDim
	// NumRegions is the number of 2x2 regions, indexed by top-left anchor.
	NumRegions = (BoardDim - 1) * (BoardDim - 1)
	// PiecesPerKind is the number of tetrominoes of each kind in a player's bag.
	PiecesPerKind = 5
)

// Player is one of the two sides. X moves first.
type Player uint8

const (
	PlayerX Player = iota
	PlayerO
)

func (p Player) String() string {
	if p == PlayerX {
		return "X"
	}
	return "O"
}

// Other returns the opposing player.
func (p Player) Other() Player {
	return 1 - p
}

// Perspective is the scoring factor for this player. Choosing 1 and -1
// allows for branchless negamax.
func (p Player) Perspective() int {
	if p == PlayerX {
		return 1
	}
	return -1
}

// ParsePlayer parses a setup-string character. The empty-cell markers
// parse to (nil-like) ok=false with no error.
func ParsePlayer(s string) (Player, bool, error) {
	switch s {
	case "x", "X":
		return PlayerX, true, nil
	case "o", "O":
		return PlayerO, true, nil
	case "_", "-", ".":
		return 0, false, nil
	}
	return 0, false, fmt.Errorf("invalid notation %s for player", s)
}

// Tile is one of the four tetromino kinds.
type Tile uint8

const (
	TileL Tile = iota
	TileI
	TileT
	TileS
)

// NumTiles is the number of distinct tetromino kinds.
const NumTiles = 4

func (t Tile) String() string {
	return [...]string{"L", "I", "T", "S"}[t]
}

// AllTiles returns the tile kinds in canonical order.
func AllTiles() [NumTiles]Tile {
	return [NumTiles]Tile{TileL, TileI, TileT, TileS}
}

// ParseTile parses a single tile letter, either case.
func ParseTile(s string) (Tile, error) {
	switch s {
	case "L", "l":
		return TileL, nil
	case "I", "i":
		return TileI, nil
	case "T", "t":
		return TileT, nil
	case "S", "s":
		return TileS, nil
	}
	return 0, fmt.Errorf("invalid notation %s for tile", s)
}
