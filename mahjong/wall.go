package mahjong

import (
	"math/rand"

	"mahjongcore/internal/mlog"
)

// WeightSet gives a per-t37-slot multiplier used by Draw to bias sampling
// (e.g. a caller asking only for tiles that complete a specific wait can
// zero out every other slot). A nil WeightSet is treated as all-ones.
type WeightSet [NumT37]float64

func uniformWeights() WeightSet {
	var w WeightSet
	for i := range w {
		w[i] = 1
	}
	return w
}

// DeadWall holds the 14 tiles set aside at the start of a round: four
// kan-replacement tiles and five dora/five ura-dora indicators, revealed
// progressively as the round proceeds.
type DeadWall struct {
	kanTiles     [4]Tile
	kanUsed      int
	dora         [5]Tile
	doraRevealed int
	uraDora      [5]Tile
	uraRevealed  int
}

// RemainingKanTiles reports how many rinshan replacement tiles are left.
func (d *DeadWall) RemainingKanTiles() int { return len(d.kanTiles) - d.kanUsed }

// DoraIndicators returns the currently revealed dora indicator tiles, in
// reveal order.
func (d *DeadWall) DoraIndicators() []Tile {
	out := make([]Tile, d.doraRevealed)
	copy(out, d.dora[:d.doraRevealed])
	return out
}

// UraDoraIndicators returns the currently revealed ura-dora indicator tiles.
func (d *DeadWall) UraDoraIndicators() []Tile {
	out := make([]Tile, d.uraRevealed)
	copy(out, d.uraDora[:d.uraRevealed])
	return out
}

// Wall is a histogram of remaining per-t37-slot tile counts plus an
// optional preset queue, supporting weighted random draw and reversible
// take/replace for deterministic preset decks.
type Wall struct {
	rng         *rand.Rand
	useRedFives bool
	available   [NumT37]int
	preset      []Tile
	dead        DeadWall
}

// NewWall builds a wall seeded by rng (callers must seed rng themselves for
// determinism) and immediately resets it to a fresh 136-tile distribution.
func NewWall(rng *rand.Rand, useRedFives bool) *Wall {
	w := &Wall{rng: rng, useRedFives: useRedFives}
	w.Reset()
	return w
}

// Reset sets counts to four per kind, moving one copy of each live five to
// its synthetic red slot, then sets aside a fresh dead wall. Any preset
// queue is cleared.
func (w *Wall) Reset() {
	for i := range w.available {
		w.available[i] = 0
	}
	for k := TileType(0); k < NumTileTypes; k++ {
		w.available[k] = 4
	}
	if w.useRedFives {
		for _, k := range [...]TileType{Man5, Pin5, So5} {
			w.available[k] = 3
		}
		w.available[RedMan5] = 1
		w.available[RedPin5] = 1
		w.available[RedSo5] = 1
	}
	w.preset = nil
	w.dead = DeadWall{}

	for i := range w.dead.kanTiles {
		t, err := w.Draw()
		if err != nil {
			panic("mahjong: impossible wall exhaustion building dead wall")
		}
		w.dead.kanTiles[i] = t
	}
	for i := range w.dead.dora {
		t, err := w.Draw()
		if err != nil {
			panic("mahjong: impossible wall exhaustion building dead wall")
		}
		w.dead.dora[i] = t
	}
	for i := range w.dead.uraDora {
		t, err := w.Draw()
		if err != nil {
			panic("mahjong: impossible wall exhaustion building dead wall")
		}
		w.dead.uraDora[i] = t
	}
	w.dead.doraRevealed = 1 // the first indicator is always face-up from the start
}

// SetPreset installs a queue of exact physical tiles to be consumed, in
// order, by subsequent calls to DrawOrPreset ahead of weighted random draw.
// Every tile must still be accounted for in the live histogram (i.e. not
// already allocated to the dead wall); callers build such a queue by first
// calling Reset, then ParseTileString/TileTypesToTiles.
func (w *Wall) SetPreset(tiles []Tile) { w.preset = append([]Tile(nil), tiles...) }

// weight computes the per-slot sampling weight: available * product of
// every supplied weight set's multiplier for that slot.
func (w *Wall) weight(sets []WeightSet) [NumT37]float64 {
	var out [NumT37]float64
	for i := range out {
		out[i] = float64(w.available[i])
	}
	for _, s := range sets {
		for i := range out {
			out[i] *= s[i]
		}
	}
	return out
}

// Draw samples a t136 proportionally to available[i] * Π weightSets[i],
// decrements the chosen slot, and returns a deterministic physical tile:
// the single red copy for a red slot, or kind*4 + (3 - postDecrementCount)
// otherwise, so repeated draws of one kind yield distinct copies in order.
func (w *Wall) Draw(weightSets ...WeightSet) (Tile, error) {
	weights := w.weight(weightSets)
	var total float64
	for _, v := range weights {
		total += v
	}
	if total <= 0 {
		mlog.Warn("wall: no tiles match the requested weights")
		return 0, &RuleError{Kind: ErrNoValidTiles, Msg: "wall: no tiles match the requested weights"}
	}

	r := w.rng.Float64() * total
	chosen := -1
	for i, v := range weights {
		if v <= 0 {
			continue
		}
		if r < v {
			chosen = i
			break
		}
		r -= v
	}
	if chosen == -1 {
		// floating point edge case: fall back to the last nonzero slot
		for i := len(weights) - 1; i >= 0; i-- {
			if weights[i] > 0 {
				chosen = i
				break
			}
		}
	}

	w.available[chosen]--
	return w.resolveSlot(TileType(chosen))
}

func (w *Wall) resolveSlot(slot TileType) (Tile, error) {
	switch slot {
	case RedMan5:
		return NewTile(Man5, 0), nil
	case RedPin5:
		return NewTile(Pin5, 0), nil
	case RedSo5:
		return NewTile(So5, 0), nil
	default:
		remaining := w.available[slot]
		return NewTile(slot, 3-remaining), nil
	}
}

// slotFor maps a physical tile to the t37 slot it is accounted under.
func (w *Wall) slotFor(t Tile) TileType {
	if w.useRedFives && t.CopyIndex() == 0 {
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

// Take consumes one tile from t's t37 slot (used for preset decks), failing
// with NoValidTiles if that slot has no tiles left. The returned physical
// tile follows the same copy-index rule as Draw.
func (w *Wall) Take(t Tile) (Tile, error) {
	slot := w.slotFor(t)
	if w.available[slot] <= 0 {
		mlog.Warn("wall: requested tile %s unavailable", t.String())
		return 0, &RuleError{Kind: ErrNoValidTiles, Msg: "wall: requested tile " + t.String() + " unavailable"}
	}
	w.available[slot]--
	return w.resolveSlot(slot)
}

// Replace is the inverse of Take, restoring the slot's availability.
func (w *Wall) Replace(t Tile) {
	w.available[w.slotFor(t)]++
}

// DrawMany performs n draws, rolling back every prior draw in this call if
// any one of them fails.
func (w *Wall) DrawMany(n int, weightSets ...WeightSet) ([]Tile, error) {
	out := make([]Tile, 0, n)
	for i := 0; i < n; i++ {
		t, err := w.Draw(weightSets...)
		if err != nil {
			for _, drawn := range out {
				w.Replace(drawn)
			}
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// DrawOrPreset pops the next preset tile if one is queued, accounting it
// against the live histogram via Take; otherwise performs a weighted
// random Draw. This is the entry point the round engine's draw_tile uses.
func (w *Wall) DrawOrPreset(weightSets ...WeightSet) (Tile, error) {
	if len(w.preset) > 0 {
		next := w.preset[0]
		t, err := w.Take(next)
		if err != nil {
			return 0, err
		}
		w.preset = w.preset[1:]
		return t, nil
	}
	return w.Draw(weightSets...)
}

// DrawKanTile pulls the next rinshan replacement tile from the dead wall.
func (w *Wall) DrawKanTile() (Tile, error) {
	if w.dead.RemainingKanTiles() == 0 {
		mlog.Warn("wall: no rinshan tiles remain")
		return 0, &RuleError{Kind: ErrNoValidTiles, Msg: "wall: no rinshan tiles remain"}
	}
	t := w.dead.kanTiles[w.dead.kanUsed]
	w.dead.kanUsed++
	return t, nil
}

// RemainingKanTiles reports how many rinshan draws remain.
func (w *Wall) RemainingKanTiles() int { return w.dead.RemainingKanTiles() }

// RevealDoraIndicator flips the next dora indicator face up and returns it.
func (w *Wall) RevealDoraIndicator() (Tile, error) {
	if w.dead.doraRevealed >= len(w.dead.dora) {
		mlog.Warn("wall: no dora indicators remain")
		return 0, &RuleError{Kind: ErrNoValidTiles, Msg: "wall: no dora indicators remain"}
	}
	t := w.dead.dora[w.dead.doraRevealed]
	w.dead.doraRevealed++
	return t, nil
}

// RevealUraDoraIndicator flips the next ura-dora indicator face up.
func (w *Wall) RevealUraDoraIndicator() (Tile, error) {
	if w.dead.uraRevealed >= len(w.dead.uraDora) {
		mlog.Warn("wall: no ura dora indicators remain")
		return 0, &RuleError{Kind: ErrNoValidTiles, Msg: "wall: no ura dora indicators remain"}
	}
	t := w.dead.uraDora[w.dead.uraRevealed]
	w.dead.uraRevealed++
	return t, nil
}

// DoraIndicators returns the currently revealed dora indicators.
func (w *Wall) DoraIndicators() []Tile { return w.dead.DoraIndicators() }

// UraDoraIndicators returns the currently revealed ura-dora indicators.
func (w *Wall) UraDoraIndicators() []Tile { return w.dead.UraDoraIndicators() }

// Remaining returns the total count of tiles still available to be drawn
// from the live wall (excludes the dead wall, which is already set aside).
func (w *Wall) Remaining() int {
	n := 0
	for _, c := range w.available {
		n += c
	}
	return n
}
