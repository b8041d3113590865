package mahjong

import (
	"strconv"
	"strings"

	"github.com/dgraph-io/ristretto"
)

// Candidate is one possible discard from a 14-tile hand together with the
// wait shape it leaves behind.
type Candidate struct {
	DiscardType    TileType
	DiscardOptions []Tile
	Waits          []TileType
	Ukeire         int
}

// kokushiTypes lists the thirteen terminal/honor kinds thirteen-orphans is
// built from.
var kokushiTypes = [13]TileType{
	Man1, Man9, Pin1, Pin9, So1, So9,
	East, South, West, North, White, Green, Red,
}

func isKokushiType(t TileType) bool {
	for _, k := range kokushiTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Searcher answers shanten/ukeire/agari queries over 34-kind histograms,
// memoizing results in a cost-bounded concurrent cache so repeated queries
// against the same hand shape (common across candidate enumeration) don't
// re-run the backtracking search.
type Searcher struct {
	cache *ristretto.Cache
}

// NewSearcher builds a Searcher with a modestly sized cache, enough to hold
// the working set of one round's worth of candidate enumeration.
func NewSearcher() *Searcher {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100_000,
		MaxCost:     10_000,
		BufferItems: 64,
	})
	if err != nil {
		panic(err)
	}
	return &Searcher{cache: c}
}

func hand34Key(h Histogram34, fixedMelds int, tag string) string {
	var b strings.Builder
	b.WriteString(tag)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(fixedMelds))
	b.WriteByte(':')
	for _, c := range h {
		b.WriteByte('0' + c)
	}
	return b.String()
}

func (s *Searcher) cached(key string, compute func() int) int {
	if v, ok := s.cache.Get(key); ok {
		return v.(int)
	}
	v := compute()
	s.cache.Set(key, v, 1)
	return v
}

// ShantenNormal computes distance-to-tenpai for the standard four-melds-
// plus-pair shape via exhaustive meld/partial-meld decomposition.
func (s *Searcher) ShantenNormal(h Histogram34, fixedMelds int) int {
	return s.cached(hand34Key(h, fixedMelds, "n"), func() int {
		return shantenNormal(h, fixedMelds)
	})
}

// ShantenChiitoi computes distance-to-tenpai for seven pairs. Open melds
// make chiitoi unreachable.
func (s *Searcher) ShantenChiitoi(h Histogram34, fixedMelds int) int {
	if fixedMelds > 0 {
		return 8
	}
	return s.cached(hand34Key(h, 0, "c"), func() int {
		return shantenChiitoi(h)
	})
}

// ShantenKokushi computes distance-to-tenpai for thirteen orphans. Open
// melds make kokushi unreachable.
func (s *Searcher) ShantenKokushi(h Histogram34, fixedMelds int) int {
	if fixedMelds > 0 {
		return 8
	}
	return s.cached(hand34Key(h, 0, "k"), func() int {
		return shantenKokushi(h)
	})
}

// ShantenAll is the minimum shanten across all three hand shapes.
func (s *Searcher) ShantenAll(h Histogram34, fixedMelds int) int {
	best := s.ShantenNormal(h, fixedMelds)
	if fixedMelds == 0 {
		if c := s.ShantenChiitoi(h, fixedMelds); c < best {
			best = c
		}
		if k := s.ShantenKokushi(h, fixedMelds); k < best {
			best = k
		}
	}
	return best
}

func shantenNormal(h Histogram34, fixedMelds int) int {
	work := h
	best := 8
	maxMelds := 4 - fixedMelds

	var dfs func(idx, melds, partials int, hasPair bool)
	dfs = func(idx, melds, partials int, hasPair bool) {
		if melds+partials > maxMelds {
			return
		}
		if idx == NumTileTypes {
			t := partials
			p := 0
			if hasPair {
				p = 1
			}
			sh := 8 - 2*(melds+fixedMelds) - t - p
			if sh < best {
				best = sh
			}
			return
		}

		count := int(work[idx])
		if count == 0 {
			dfs(idx+1, melds, partials, hasPair)
			return
		}

		// floater: leave this kind's remaining tiles uncommitted
		dfs(idx+1, melds, partials, hasPair)

		if count >= 3 {
			work[idx] -= 3
			dfs(idx, melds+1, partials, hasPair)
			work[idx] += 3
		}
		if count >= 2 {
			if !hasPair {
				work[idx] -= 2
				dfs(idx, melds, partials, true)
				work[idx] += 2
			}
			work[idx] -= 2
			dfs(idx, melds, partials+1, hasPair)
			work[idx] += 2
		}
		if idx%9 <= 6 && idx < 27 {
			if work[idx] >= 1 && work[idx+1] >= 1 && work[idx+2] >= 1 {
				work[idx]--
				work[idx+1]--
				work[idx+2]--
				dfs(idx, melds+1, partials, hasPair)
				work[idx]++
				work[idx+1]++
				work[idx+2]++
			}
			if work[idx] >= 1 && work[idx+1] >= 1 {
				work[idx]--
				work[idx+1]--
				dfs(idx, melds, partials+1, hasPair)
				work[idx]++
				work[idx+1]++
			}
			if work[idx] >= 1 && work[idx+2] >= 1 {
				work[idx]--
				work[idx+2]--
				dfs(idx, melds, partials+1, hasPair)
				work[idx]++
				work[idx+2]++
			}
		}
	}
	dfs(0, 0, 0, false)
	if best < 0 {
		best = 0
	}
	return best
}

func shantenChiitoi(h Histogram34) int {
	pairs := 0
	kinds := 0
	for _, c := range h {
		if c > 0 {
			kinds++
		}
		if c >= 2 {
			pairs++
		}
	}
	if pairs > 7 {
		pairs = 7
	}
	missing := 7 - kinds
	if missing < 0 {
		missing = 0
	}
	sh := 6 - pairs + missing
	if sh < 0 {
		sh = 0
	}
	return sh
}

func shantenKokushi(h Histogram34) int {
	present := 0
	hasPair := false
	for _, k := range kokushiTypes {
		if h[k] > 0 {
			present++
		}
		if h[k] >= 2 {
			hasPair = true
		}
	}
	p := 0
	if hasPair {
		p = 1
	}
	sh := 13 - present - p
	if sh < 0 {
		sh = 0
	}
	return sh
}

// IsAgariAll reports whether h (14 tiles, minus 3 per fixed meld) is a
// complete winning hand under any of the three shapes.
func (s *Searcher) IsAgariAll(h Histogram34, fixedMelds int) bool {
	if IsAgariNormal(h, fixedMelds) {
		return true
	}
	if fixedMelds > 0 {
		return false
	}
	return IsAgariChiitoi(h) || IsAgariKokushi(h)
}

// IsAgariNormal checks the standard (4-fixedMelds concealed melds + pair)
// decomposition by backtracking.
func IsAgariNormal(h Histogram34, fixedMelds int) bool {
	need := 4 - fixedMelds
	if h.Sum() != need*3+2 {
		return false
	}
	work := h
	for k := TileType(0); k < NumTileTypes; k++ {
		if work[k] < 2 {
			continue
		}
		work[k] -= 2
		if canFormMelds(&work, need) {
			work[k] += 2
			return true
		}
		work[k] += 2
	}
	return false
}

func firstNonzero(h *Histogram34) int {
	for i, c := range h {
		if c > 0 {
			return i
		}
	}
	return -1
}

func canFormMelds(h *Histogram34, need int) bool {
	if need == 0 {
		return firstNonzero(h) == -1
	}
	idx := firstNonzero(h)
	if idx == -1 {
		return false
	}
	if h[idx] >= 3 {
		h[idx] -= 3
		if canFormMelds(h, need-1) {
			h[idx] += 3
			return true
		}
		h[idx] += 3
	}
	if idx%9 <= 6 && idx < 27 && h[idx+1] > 0 && h[idx+2] > 0 {
		h[idx]--
		h[idx+1]--
		h[idx+2]--
		if canFormMelds(h, need-1) {
			h[idx]++
			h[idx+1]++
			h[idx+2]++
			return true
		}
		h[idx]++
		h[idx+1]++
		h[idx+2]++
	}
	return false
}

// IsAgariChiitoi reports seven distinct pairs.
func IsAgariChiitoi(h Histogram34) bool {
	if h.Sum() != 14 {
		return false
	}
	pairs := 0
	for _, c := range h {
		if c == 2 {
			pairs++
		} else if c != 0 {
			return false
		}
	}
	return pairs == 7
}

// IsAgariKokushi reports thirteen orphans (all thirteen terminal/honor
// kinds present, one duplicated).
func IsAgariKokushi(h Histogram34) bool {
	if h.Sum() != 14 {
		return false
	}
	present := 0
	pair := 0
	for k := TileType(0); k < NumTileTypes; k++ {
		c := h[k]
		if c == 0 {
			continue
		}
		if !isKokushiType(k) {
			return false
		}
		present++
		if c == 2 {
			pair++
		} else if c > 2 {
			return false
		}
	}
	return present == 13 && pair == 1
}

// WaitsAndUkeire returns, for a hand already reduced to 13-mod-3 tiles, the
// t34 kinds whose addition strictly decreases shanten and the count of
// physically available copies of those kinds (4 minus own hand minus any
// caller-supplied visible tiles such as discards or dora indicators).
func (s *Searcher) WaitsAndUkeire(h13 Histogram34, fixedMelds int, visible *Histogram34) ([]TileType, int) {
	before := s.ShantenAll(h13, fixedMelds)
	var waits []TileType
	work := h13
	for k := TileType(0); k < NumTileTypes; k++ {
		if work[k] >= 4 {
			continue
		}
		work[k]++
		after := s.ShantenAll(work, fixedMelds)
		if s.IsAgariAll(work, fixedMelds) {
			after = -1
		}
		work[k]--
		if after < before {
			waits = append(waits, k)
		}
	}
	return waits, s.ukeireByWaits(h13, waits, visible)
}

func (s *Searcher) ukeireByWaits(h13 Histogram34, waits []TileType, visible *Histogram34) int {
	total := 0
	for _, w := range waits {
		avail := 4 - int(h13[w])
		if visible != nil {
			avail -= int(visible[w])
		}
		if avail > 0 {
			total += avail
		}
	}
	return total
}

// Hand34FromTiles builds a histogram and a per-kind physical-tile index
// from a slice of t136 tiles, so discard enumeration can report which
// specific copies (e.g. red vs plain five) are available to drop.
func Hand34FromTiles(tiles []Tile) (Histogram34, map[TileType][]Tile) {
	h := HistogramFromTiles(tiles)
	byType := make(map[TileType][]Tile, len(tiles))
	for _, t := range tiles {
		byType[t.Type()] = append(byType[t.Type()], t)
	}
	return h, byType
}

// SeekCandidates enumerates every discard from a 14-tile hand that leaves
// the hand tenpai, together with the resulting waits and ukeire.
func (s *Searcher) SeekCandidates(hand14 []Tile, fixedMelds int, visible *Histogram34) []Candidate {
	h14, byType := Hand34FromTiles(hand14)

	var out []Candidate
	for k := TileType(0); k < NumTileTypes; k++ {
		if h14[k] == 0 {
			continue
		}
		h13 := h14
		h13[k]--
		if s.ShantenAll(h13, fixedMelds) != 0 {
			continue
		}
		waits, ukeire := s.WaitsAndUkeire(h13, fixedMelds, visible)
		if len(waits) == 0 {
			continue
		}
		out = append(out, Candidate{
			DiscardType:    k,
			DiscardOptions: append([]Tile(nil), byType[k]...),
			Waits:          waits,
			Ukeire:         ukeire,
		})
	}
	return out
}
