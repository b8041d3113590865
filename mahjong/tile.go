package mahjong

import (
	"fmt"
	"strconv"
	"strings"
)

// TileType is the 34-kind encoding: 1m-9m, 1p-9p, 1s-9s, winds, dragons.
type TileType int

const (
	Man1 TileType = iota
	Man2
	Man3
	Man4
	Man5
	Man6
	Man7
	Man8
	Man9
	Pin1
	Pin2
	Pin3
	Pin4
	Pin5
	Pin6
	Pin7
	Pin8
	Pin9
	So1
	So2
	So3
	So4
	So5
	So6
	So7
	So8
	So9
	East
	South
	West
	North
	White
	Green
	Red
	NumTileTypes = 34
)

// t37 adds three synthetic slots for the red-five copies, used only by the
// wall's weighted draw.
const (
	RedMan5 TileType = 34
	RedPin5 TileType = 35
	RedSo5  TileType = 36
	NumT37           = 37
)

var typeNames = [...]string{
	"1m", "2m", "3m", "4m", "5m", "6m", "7m", "8m", "9m",
	"1p", "2p", "3p", "4p", "5p", "6p", "7p", "8p", "9p",
	"1s", "2s", "3s", "4s", "5s", "6s", "7s", "8s", "9s",
	"ew", "sw", "ww", "nw", "wd", "gd", "rd",
}

func (t TileType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("t34(%d)", int(t))
	}
	return typeNames[t]
}

// IsNumbered reports whether the kind belongs to a suit (as opposed to
// winds or dragons).
func (t TileType) IsNumbered() bool { return t >= Man1 && t <= So9 }

// IsHonor reports whether the kind is a wind or dragon.
func (t TileType) IsHonor() bool { return t >= East && t <= Red }

// IsTerminal reports whether the kind is a 1 or 9 of a suit.
func (t TileType) IsTerminal() bool {
	if !t.IsNumbered() {
		return false
	}
	n := int(t) % 9
	return n == 0 || n == 8
}

// IsTerminalOrHonor reports whether the kind counts toward kokushi/chanta/honroto.
func (t TileType) IsTerminalOrHonor() bool { return t.IsTerminal() || t.IsHonor() }

// IsFive reports whether the kind is a 5 of some suit (candidate for red).
func (t TileType) IsFive() bool { return t == Man5 || t == Pin5 || t == So5 }

// Suit identifies which of the three numbered suits a kind belongs to, or -1.
func (t TileType) Suit() int {
	switch {
	case t >= Man1 && t <= Man9:
		return 0
	case t >= Pin1 && t <= Pin9:
		return 1
	case t >= So1 && t <= So9:
		return 2
	default:
		return -1
	}
}

// Number returns 1..9 for numbered kinds, 0 otherwise.
func (t TileType) Number() int {
	if !t.IsNumbered() {
		return 0
	}
	return int(t)%9 + 1
}

// Tile is a unique physical tile, t136 encoded: kind*4 + copy index.
type Tile int

// NewTile builds the t136 for a (kind, copy) pair.
func NewTile(kind TileType, copyIdx int) Tile {
	return Tile(int(kind)*4 + copyIdx)
}

// Type returns the t34 kind for this physical tile.
func (t Tile) Type() TileType { return TileType(int(t) / 4) }

// CopyIndex returns which of the four physical copies this is (0..3).
func (t Tile) CopyIndex() int { return int(t) % 4 }

// IsRedFive reports whether this physical tile is the red-five copy of its kind.
// By convention (matching the wall's accounting) the red copy is copy index 0.
func (t Tile) IsRedFive(rules redFiveSet) bool {
	return t.Type().IsFive() && t.CopyIndex() == 0 && rules.enabled(t.Type())
}

type redFiveSet struct{ on bool }

func (r redFiveSet) enabled(k TileType) bool { return r.on && k.IsFive() }

func (t Tile) String() string { return t.Type().String() }

// T37 maps a physical tile to its weighted-draw slot: the synthetic red
// slots 34/35/36 for a red-five copy, else the plain t34 kind.
func T37(t Tile, useRedFives bool) TileType {
	if useRedFives && t.CopyIndex() == 0 {
		switch t.Type() {
		case Man5:
			return RedMan5
		case Pin5:
			return RedPin5
		case So5:
			return RedSo5
		}
	}
	return t.Type()
}

// ParseTileTypeToken parses one two-character kind token ("1m", "ew", ...).
func ParseTileTypeToken(tok string) (TileType, error) {
	for i, name := range typeNames {
		if name == tok {
			return TileType(i), nil
		}
	}
	return 0, fmt.Errorf("mahjong: unknown tile token %q", tok)
}

// ParseTileString tokenizes a wire-format tile string into t34 kinds.
// Tokens are two characters, optionally space-separated, in the order
// {1m..9m,1p..9p,1s..9s,ew,sw,ww,nw,wd,gd,rd}.
func ParseTileString(s string) ([]TileType, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("mahjong: odd-length tile string %q", s)
	}
	out := make([]TileType, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		k, err := ParseTileTypeToken(s[i : i+2])
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// TileTypesToTiles assigns consecutive t136 copy indices (0,1,2,3,...) to
// a sequence of t34 kinds, tracking how many of each kind have been seen —
// used to materialize a preset hand string into concrete physical tiles.
func TileTypesToTiles(kinds []TileType) []Tile {
	seen := [NumTileTypes]int{}
	out := make([]Tile, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, NewTile(k, seen[k]))
		seen[k]++
	}
	return out
}

// FormatTileTypeString renders t34 kinds back to the two-character wire format.
func FormatTileTypeString(kinds []TileType) string {
	var b strings.Builder
	for _, k := range kinds {
		b.WriteString(k.String())
	}
	return b.String()
}

// FormatTileString renders t136 tiles, appending the copy index as a third
// digit after each kind token. ParseTileString does not accept this
// three-character form.
func FormatTileString(tiles []Tile) string {
	var b strings.Builder
	for _, t := range tiles {
		b.WriteString(t.Type().String())
		b.WriteString(strconv.Itoa(t.CopyIndex()))
	}
	return b.String()
}

// Histogram34 counts tiles by kind; the natural argument to the shanten oracle.
type Histogram34 [NumTileTypes]uint8

// HistogramFromTiles builds a t34 histogram from a slice of physical tiles.
func HistogramFromTiles(tiles []Tile) Histogram34 {
	var h Histogram34
	for _, t := range tiles {
		h[t.Type()]++
	}
	return h
}

// Sum returns the total tile count in the histogram.
func (h Histogram34) Sum() int {
	n := 0
	for _, c := range h {
		n += int(c)
	}
	return n
}
