package board

import (
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/blits/lits"
	"github.com/domino14/blits/tiles"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	is := is.New(t)
	x := lits.CellSetFromCoords(
		lits.NewCoord(0, 0), lits.NewCoord(2, 7), lits.NewCoord(4, 4), lits.NewCoord(3, 9))

	h := EncodeSymbols(x)
	is.Equal(len(h), hashLength)
	for i := 0; i < len(h); i++ {
		is.True(strings.IndexByte(hashAlphabet, h[i]) >= 0)
	}

	back, err := DecodeSymbols(h)
	is.NoErr(err)
	is.Equal(back, x)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	is := is.New(t)
	_, err := DecodeSymbols("0123")
	is.True(err != nil)
	_, err = DecodeSymbols(strings.Repeat("z", hashLength))
	is.True(err != nil)
}

func TestEmptySymbolsEncodeAsZeros(t *testing.T) {
	is := is.New(t)
	is.Equal(EncodeSymbols(lits.CellSet{}), strings.Repeat("0", hashLength))
}

func TestFromSetupString(t *testing.T) {
	is := is.New(t)
	buf := []byte(strings.Repeat(".", lits.NumCells))
	// X at (0,1) mirrors to O at (9,8)
	buf[1] = 'X'
	buf[98] = 'O'
	p, err := FromSetupString(tiles.Default(), string(buf))
	is.NoErr(err)
	is.True(p.Symbols(lits.PlayerX).Has(lits.NewCoord(0, 1)))
	is.True(p.Symbols(lits.PlayerO).Has(lits.NewCoord(9, 8)))
	is.Equal(p.SetupString(), string(buf))
}

func TestFromSetupStringRejectsAsymmetry(t *testing.T) {
	is := is.New(t)
	buf := []byte(strings.Repeat(".", lits.NumCells))
	buf[1] = 'X' // missing the mirrored O
	_, err := FromSetupString(tiles.Default(), string(buf))
	is.True(err != nil)
}

func TestParseSetupAcceptsBothForms(t *testing.T) {
	is := is.New(t)
	p := scenarioPosition(t)

	fromHash, err := ParseSetup(tiles.Default(), p.Encode())
	is.NoErr(err)
	is.Equal(fromHash.Symbols(lits.PlayerX), p.Symbols(lits.PlayerX))

	fromNaive, err := ParseSetup(tiles.Default(), p.SetupString())
	is.NoErr(err)
	is.Equal(fromNaive.Symbols(lits.PlayerX), p.Symbols(lits.PlayerX))

	_, err = ParseSetup(tiles.Default(), "too-short")
	is.True(err != nil)
}

func TestGenerate(t *testing.T) {
	is := is.New(t)
	for trial := 0; trial < 20; trial++ {
		p, err := Generate(tiles.Default(), 10)
		is.NoErr(err)
		x := p.Symbols(lits.PlayerX)
		is.Equal(x.Len(), 10)
		is.True(!x.Intersects(x.Rotate180()))
	}
	_, err := Generate(tiles.Default(), 0)
	is.True(err != nil)
	_, err = Generate(tiles.Default(), lits.NumCells)
	is.True(err != nil)
}

func TestEncodeStableAcrossSwap(t *testing.T) {
	is := is.New(t)
	p := scenarioPosition(t)
	before := p.Encode()

	is.NoErr(p.Apply(mustMove(t, "L[00,01,02,10]")))
	is.NoErr(p.Swap())
	// the hash always names the base board as dealt
	is.Equal(p.Encode(), before)
}

func TestNotate(t *testing.T) {
	is := is.New(t)
	p := scenarioPosition(t)
	setup := p.SetupString()

	is.NoErr(p.Apply(mustMove(t, "L[00,01,02,10]")))
	is.NoErr(p.Apply(mustMove(t, "T[03,04,05,14]")))
	is.Equal(p.Notate(), setup+";L[00,01,02,10];T[03,04,05,14]")
}

func TestNotateWithSwap(t *testing.T) {
	is := is.New(t)
	p := scenarioPosition(t)
	setup := p.SetupString()

	is.NoErr(p.Apply(mustMove(t, "L[00,01,02,10]")))
	is.NoErr(p.Swap())
	is.NoErr(p.Apply(mustMove(t, "T[03,04,05,14]")))
	is.Equal(p.Notate(), setup+";L[00,01,02,10];swap;T[03,04,05,14]")
}
