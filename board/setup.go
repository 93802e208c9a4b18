package board

import (
	"fmt"
	"strings"

	"lukechampine.com/frand"

	"github.com/domino14/blits/lits"
	"github.com/domino14/blits/tiles"
)

// Board hash encoding: the base board's X-symbol set, 100 bits, grouped
// into 20 groups of 5 bits. Group g covers bit indices 5g..5g+4, least
// significant first; each group renders as one character of the base-32
// alphabet below. O symbols are never encoded; they are the 180-degree
// rotation of the X set.
const hashAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUV"

const hashLength = lits.NumCells / 5

// Encode serializes the base X-symbol set as 20 base-32 characters.
func (p *Position) Encode() string {
	x := p.symbols[lits.PlayerX]
	if p.swapped {
		x = p.symbols[lits.PlayerO]
	}
	return EncodeSymbols(x)
}

// EncodeSymbols renders any X-symbol set in board hash form.
func EncodeSymbols(x lits.CellSet) string {
	var sb strings.Builder
	sb.Grow(hashLength)
	for g := 0; g < hashLength; g++ {
		v := 0
		for k := 0; k < 5; k++ {
			if x.HasIndex(5*g + k) {
				v |= 1 << k
			}
		}
		sb.WriteByte(hashAlphabet[v])
	}
	return sb.String()
}

// DecodeSymbols is the exact inverse of EncodeSymbols. Malformed input
// returns an error, never a panic.
func DecodeSymbols(s string) (lits.CellSet, error) {
	var x lits.CellSet
	if len(s) != hashLength {
		return x, fmt.Errorf("board hash must be %d characters, got %d", hashLength, len(s))
	}
	for g := 0; g < hashLength; g++ {
		v := strings.IndexByte(hashAlphabet, s[g])
		if v < 0 {
			return lits.CellSet{}, fmt.Errorf("invalid board hash character %q at offset %d", s[g], g)
		}
		for k := 0; k < 5; k++ {
			if v&(1<<k) != 0 {
				x.SetIndex(5*g + k)
			}
		}
	}
	return x, nil
}

// FromHash builds a position from a 20-character board hash.
func FromHash(pm *tiles.PieceMap, hash string) (*Position, error) {
	x, err := DecodeSymbols(hash)
	if err != nil {
		return nil, err
	}
	return NewPosition(pm, x)
}

// FromSetupString builds a position from the 100-character naive setup
// form (X, O, or one of . - _ per cell, row-major). The O cells must be
// the exact 180-degree rotation of the X cells.
func FromSetupString(pm *tiles.PieceMap, s string) (*Position, error) {
	if len(s) != lits.NumCells {
		return nil, fmt.Errorf("setup string must be %d characters, got %d", lits.NumCells, len(s))
	}
	var x, o lits.CellSet
	for i := 0; i < lits.NumCells; i++ {
		player, present, err := lits.ParsePlayer(string(s[i]))
		if err != nil {
			return nil, err
		}
		if !present {
			continue
		}
		if player == lits.PlayerX {
			x.SetIndex(i)
		} else {
			o.SetIndex(i)
		}
	}
	if o != x.Rotate180() {
		return nil, fmt.Errorf("setup string is not point-symmetric")
	}
	return NewPosition(pm, x)
}

// ParseSetup accepts either the 20-character hash or the 100-character
// naive form.
func ParseSetup(pm *tiles.PieceMap, s string) (*Position, error) {
	switch len(s) {
	case hashLength:
		return FromHash(pm, s)
	case lits.NumCells:
		return FromSetupString(pm, s)
	}
	return nil, fmt.Errorf("unrecognized setup string of length %d", len(s))
}

// Generate builds a random legal base board with the given number of
// symbols per player. X cells are drawn uniformly; each draw excludes
// its own mirror so the rotated O set stays disjoint.
func Generate(pm *tiles.PieceMap, symbolsPerPlayer int) (*Position, error) {
	if symbolsPerPlayer < 1 || symbolsPerPlayer > lits.NumCells/2 {
		return nil, fmt.Errorf("symbols per player must be in 1..%d, got %d", lits.NumCells/2, symbolsPerPlayer)
	}
	var x lits.CellSet
	placed := 0
	for placed < symbolsPerPlayer {
		idx := frand.Intn(lits.NumCells)
		mirror := lits.NumCells - 1 - idx
		if x.HasIndex(idx) || x.HasIndex(mirror) {
			continue
		}
		x.SetIndex(idx)
		placed++
	}
	return NewPosition(pm, x)
}

// SetupString renders the current symbol layout in the naive form. If
// the position was swapped, the rendered symbols are conjugated back so
// the string replays from the original first player's point of view.
func (p *Position) SetupString() string {
	x, o := p.symbols[lits.PlayerX], p.symbols[lits.PlayerO]
	if p.swapped {
		x, o = o, x
	}
	buf := make([]byte, lits.NumCells)
	for i := range buf {
		switch {
		case x.HasIndex(i):
			buf[i] = 'X'
		case o.HasIndex(i):
			buf[i] = 'O'
		default:
			buf[i] = '.'
		}
	}
	return string(buf)
}

// Notate returns the full game notation: the setup fragment followed by
// one fragment per move in order, with the swap recorded after the
// first move if it was played.
func (p *Position) Notate() string {
	fragments := []string{p.SetupString()}
	for i, id := range p.history {
		fragments = append(fragments, p.pm.Get(id).Move().String())
		if i == 0 && p.swapped {
			fragments = append(fragments, "swap")
		}
	}
	return strings.Join(fragments, ";")
}

// DisplayText renders the board for the shell: tiles over symbols over
// empty cells.
func (p *Position) DisplayText() string {
	var sb strings.Builder
	for r := 0; r < lits.BoardDim; r++ {
		for c := 0; c < lits.BoardDim; c++ {
			cell := lits.NewCoord(r, c)
			if kind, ok := p.TileAt(cell); ok {
				sb.WriteString(kind.String())
			} else if p.symbols[lits.PlayerX].Has(cell) {
				sb.WriteByte('x')
			} else if p.symbols[lits.PlayerO].Has(cell) {
				sb.WriteByte('o')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
