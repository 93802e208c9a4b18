// Package zobrist generates 64-bit hashes for LITS positions.
// https://en.wikipedia.org/wiki/Zobrist_hashing
//
// The hash covers the symbol layout, the placed pieces, and the side to
// move. The shell uses it to detect that the position changed since the
// last search (a stale principal variation); the board maintains it
// incrementally on every apply and undo.
package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/blits/lits"
)

const bignum = 1<<63 - 2

// Zobrist holds the random key tables. Initialize must be called before
// hashing.
type Zobrist struct {
	symbolKeys    [lits.NumCells][2]uint64
	placementKeys []uint64
	theirTurn     uint64
}

// Initialize fills the key tables. numPlacements is the size of the
// placement map.
func (z *Zobrist) Initialize(numPlacements int) {
	for i := 0; i < lits.NumCells; i++ {
		for j := 0; j < 2; j++ {
			z.symbolKeys[i][j] = frand.Uint64n(bignum) + 1
		}
	}
	z.placementKeys = make([]uint64, numPlacements)
	for i := range z.placementKeys {
		z.placementKeys[i] = frand.Uint64n(bignum) + 1
	}
	z.theirTurn = frand.Uint64n(bignum) + 1
}

// Hash computes the full hash for a position from scratch.
func (z *Zobrist) Hash(xSymbols, oSymbols lits.CellSet, side lits.Player) uint64 {
	var key uint64
	xSymbols.Each(func(idx int) {
		key ^= z.symbolKeys[idx][lits.PlayerX]
	})
	oSymbols.Each(func(idx int) {
		key ^= z.symbolKeys[idx][lits.PlayerO]
	})
	if side == lits.PlayerO {
		key ^= z.theirTurn
	}
	return key
}

// AddPlacement toggles a placement in or out of the hash and flips the
// turn. XOR associativity makes apply and undo the same operation.
func (z *Zobrist) AddPlacement(key uint64, placementID uint16) uint64 {
	return key ^ z.placementKeys[placementID] ^ z.theirTurn
}

// PlacementKey returns the raw key for one placement, with no turn
// flip. Full-position rehashes compose these with Hash.
func (z *Zobrist) PlacementKey(placementID uint16) uint64 {
	return z.placementKeys[placementID]
}
