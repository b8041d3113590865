package mahjong

import (
	"sort"

	"mahjongcore/internal/ruleconfig"
)

// EvalContext carries every situational fact the hand evaluator needs
// beyond the tiles themselves.
type EvalContext struct {
	RoundWind TileType
	SeatWind  TileType

	IsTsumo        bool
	IsRiichi       bool
	IsDoubleRiichi bool
	IsIppatsu      bool
	IsDealer       bool
	IsRinshan      bool
	IsHaitei       bool // last live-wall tile, tsumo
	IsHoutei       bool // last discard of the round, ron
	IsChankan      bool
	IsTenhou       bool
	IsChiihou      bool

	Honba    int
	Kyoutaku int
}

// YakuEntry is one named, scored yaku contributing to a win.
type YakuEntry struct {
	Name    string
	Han     int
	Yakuman bool
}

// CostBreakdown is the payment amounts a winning evaluation resolves to.
type CostBreakdown struct {
	Main            int
	MainBonus       int
	Additional      int
	AdditionalBonus int
	Total           int
	YakuLevel       string // "", "mangan", "haneman", "baiman", "sanbaiman", "yakuman", "double_yakuman"
}

// WinResult is the hand evaluator's successful output.
type WinResult struct {
	Han     int
	Fu      int
	Yaku    []YakuEntry
	Cost    CostBreakdown
	IsOpen  bool
}

// HandEvaluator computes (han, fu, yaku, cost) for a complete 14-tile hand,
// or one of the evaluator error kinds.
type HandEvaluator struct {
	searcher *Searcher
	rules    ruleconfig.Rules
}

// NewHandEvaluator builds an evaluator backed by s for the agari checks it
// needs (kokushi/chiitoi/normal), configured per rules.
func NewHandEvaluator(s *Searcher, rules ruleconfig.Rules) *HandEvaluator {
	return &HandEvaluator{searcher: s, rules: rules}
}

// group is one meld-equivalent in a decomposition: either a concealed
// sequence/triplet found by enumeration, or a fixed (called or kan) meld.
type group struct {
	seq        bool
	low        TileType // sequence: lowest tile; triplet/kan: the tile
	open       bool
	kan        bool
	fromWin    bool
}

type decomposition struct {
	groups    []group
	pair      TileType
	pairIsWin bool
}

func isYaochu(t TileType) bool { return t.IsTerminalOrHonor() }

func (g group) tiles() []TileType {
	if g.seq {
		return []TileType{g.low, g.low + 1, g.low + 2}
	}
	return []TileType{g.low}
}

func (g group) containsType(t TileType) bool {
	if g.seq {
		return t >= g.low && t <= g.low+2
	}
	return t == g.low
}

func (g group) allYaochu() bool {
	for _, t := range g.tiles() {
		if !isYaochu(t) {
			return false
		}
	}
	return true
}

func (g group) allTerminal() bool {
	for _, t := range g.tiles() {
		if !t.IsTerminal() {
			return false
		}
	}
	return true
}

// fixedGroupFromMeld converts a Meld already locked onto the player into a
// decomposition group.
func fixedGroupFromMeld(m Meld) group {
	g := group{open: m.IsOpen(), kan: m.IsKan()}
	switch m.Kind {
	case Chi:
		types := make([]int, len(m.Tiles))
		for i, t := range m.Tiles {
			types[i] = int(t.Type())
		}
		sort.Ints(types)
		g.seq = true
		g.low = TileType(types[0])
	default:
		g.seq = false
		g.low = m.Tiles[0].Type()
	}
	return g
}

// enumerateGroups backtracks every way to split need melds worth of tiles
// out of h, mirroring the shanten oracle's canFormMelds but collecting
// every decomposition instead of stopping at the first.
func enumerateGroups(h Histogram34, need int) [][]group {
	work := h
	var results [][]group

	var dfs func(path []group)
	dfs = func(path []group) {
		if len(path) == need {
			if firstNonzero(&work) == -1 {
				results = append(results, append([]group(nil), path...))
			}
			return
		}
		idx := firstNonzero(&work)
		if idx == -1 {
			return
		}
		if work[idx] >= 3 {
			work[idx] -= 3
			dfs(append(path, group{seq: false, low: TileType(idx)}))
			work[idx] += 3
		}
		if idx%9 <= 6 && idx < 27 && work[idx+1] > 0 && work[idx+2] > 0 {
			work[idx]--
			work[idx+1]--
			work[idx+2]--
			dfs(append(path, group{seq: true, low: TileType(idx)}))
			work[idx]++
			work[idx+1]++
			work[idx+2]++
		}
	}
	dfs(nil)
	return results
}

// enumerateDecompositions returns every valid (groups, pair) split of the
// concealed hand, combined with the already-fixed melds, marking which
// group or the pair contains the winning tile.
func enumerateDecompositions(concealed Histogram34, winType TileType, fixed []Meld) []decomposition {
	need := 4 - len(fixed)
	var out []decomposition

	for k := TileType(0); k < NumTileTypes; k++ {
		if concealed[k] < 2 {
			continue
		}
		rest := concealed
		rest[k] -= 2
		for _, gs := range enumerateGroups(rest, need) {
			d := decomposition{pair: k}
			for _, fm := range fixed {
				d.groups = append(d.groups, fixedGroupFromMeld(fm))
			}
			d.groups = append(d.groups, gs...)

			marked := false
			for i := range d.groups {
				if !marked && d.groups[i].containsType(winType) {
					d.groups[i].fromWin = true
					marked = true
				}
			}
			if !marked && k == winType {
				d.pairIsWin = true
			}
			out = append(out, d)
		}
	}
	return out
}

func roundUpTo(n, step int) int {
	if n%step == 0 {
		return n
	}
	return (n/step + 1) * step
}

// calculateFu scores one decomposition. Pinfu is handled by its fixed
// 20/30 totals at the call site since it overrides the additive formula.
func calculateFu(d decomposition, winType TileType, isTsumo bool, isOpenHand bool, ctx EvalContext) int {
	fu := 20
	if isTsumo {
		fu += 2
	} else if !isOpenHand {
		fu += 10 // menzen-kafu: concealed ron bonus
	}

	if d.pair == East || d.pair == South || d.pair == West || d.pair == North || d.pair == White || d.pair == Green || d.pair == Red {
		pairFu := 0
		if d.pair == ctx.RoundWind {
			pairFu += 2
		}
		if d.pair == ctx.SeatWind {
			pairFu += 2
		}
		if d.pair == White || d.pair == Green || d.pair == Red {
			pairFu += 2
		}
		fu += pairFu
	}

	for _, g := range d.groups {
		if g.seq {
			continue
		}
		ankou := !g.open && !(g.fromWin && !isTsumo)
		switch {
		case g.kan && ankou:
			if g.allYaochu() {
				fu += 32
			} else {
				fu += 16
			}
		case g.kan && !ankou:
			if g.allYaochu() {
				fu += 16
			} else {
				fu += 8
			}
		case ankou:
			if g.allYaochu() {
				fu += 8
			} else {
				fu += 4
			}
		default: // minko (open triplet, or ron-completed concealed triplet)
			if g.allYaochu() {
				fu += 4
			} else {
				fu += 2
			}
		}
	}

	if d.pairIsWin {
		fu += 2 // tanki
	} else {
		for _, g := range d.groups {
			if !g.fromWin {
				continue
			}
			fu += waitShapeFu(g, winType)
		}
	}

	return fu
}

// waitShapeFu scores the closed-wait bonus (kanchan/penchan); ryanmen and
// shanpon (triplet side) score zero additional wait fu.
func waitShapeFu(g group, winType TileType) int {
	if !g.seq {
		return 0
	}
	switch {
	case winType == g.low+1:
		return 2 // kanchan: closed wait on the middle tile
	case winType == g.low && g.low%9 == 6: // _89 waiting on 7
		return 2
	case winType == g.low+2 && g.low%9 == 0: // 12_ waiting on 3
		return 2
	default:
		return 0
	}
}

func isRyanmenWait(g group, winType TileType) bool {
	if !g.seq {
		return false
	}
	return waitShapeFu(g, winType) == 0
}

// isPinfuShape reports whether d, for the given winning tile, qualifies
// for pinfu: all sequences, a non-yakuhai pair, and a two-sided wait.
func isPinfuShape(d decomposition, winType TileType, ctx EvalContext) bool {
	for _, g := range d.groups {
		if !g.seq {
			return false
		}
	}
	if d.pair == East || d.pair == South || d.pair == West || d.pair == North {
		if d.pair == ctx.RoundWind || d.pair == ctx.SeatWind {
			return false
		}
	}
	if d.pair == White || d.pair == Green || d.pair == Red {
		return false
	}
	if d.pairIsWin {
		return false
	}
	for _, g := range d.groups {
		if g.fromWin {
			return isRyanmenWait(g, winType)
		}
	}
	return false
}

func nextDoraKind(indicator TileType) TileType {
	if indicator.IsNumbered() {
		n := indicator.Number()
		suitStart := indicator - TileType(n-1)
		next := n%9 + 1
		return suitStart + TileType(next-1)
	}
	if indicator >= East && indicator <= North {
		if indicator == North {
			return East
		}
		return indicator + 1
	}
	if indicator == Red {
		return White
	}
	return indicator + 1
}

func countDora(all Histogram34, indicators []Tile) int {
	total := 0
	for _, ind := range indicators {
		total += int(all[nextDoraKind(ind.Type())])
	}
	return total
}

func countAkaDora(tiles []Tile) int {
	n := 0
	for _, t := range tiles {
		if t.Type().IsFive() && t.CopyIndex() == 0 {
			n++
		}
	}
	return n
}

func levelName(han int) string {
	switch {
	case han >= 11:
		return "sanbaiman"
	case han >= 8:
		return "baiman"
	case han >= 6:
		return "haneman"
	case han >= 5:
		return "mangan"
	default:
		return ""
	}
}

func basePoints(han, fu int) int {
	if han >= 5 {
		switch levelName(han) {
		case "mangan":
			return 2000
		case "haneman":
			return 3000
		case "baiman":
			return 4000
		case "sanbaiman":
			return 6000
		}
	}
	base := fu << uint(2+han)
	if base > 2000 {
		return 2000
	}
	return base
}

func computeCost(han, fu int, isDealer, isTsumo bool, honba, kyoutaku int) CostBreakdown {
	base := basePoints(han, fu)
	level := levelName(han)
	if han >= 5 && level == "" {
		level = "mangan"
	}
	return paymentsFromBase(base, isDealer, isTsumo, honba, kyoutaku, level)
}

func computeYakumanCost(mult int, isDealer, isTsumo bool, honba, kyoutaku int) CostBreakdown {
	level := "yakuman"
	if mult >= 2 {
		level = "double_yakuman"
	}
	return paymentsFromBase(8000*mult, isDealer, isTsumo, honba, kyoutaku, level)
}

func paymentsFromBase(base int, isDealer, isTsumo bool, honba, kyoutaku int, level string) CostBreakdown {
	if isDealer {
		if isTsumo {
			each := roundUpTo(base*2, 100)
			total := each*3 + honba*300 + kyoutaku*1000
			return CostBreakdown{Main: each, MainBonus: honba * 100, Additional: each, AdditionalBonus: honba * 100, Total: total, YakuLevel: level}
		}
		main := roundUpTo(base*6, 100)
		return CostBreakdown{Main: main, MainBonus: honba * 300, Total: main + honba*300 + kyoutaku*1000, YakuLevel: level}
	}
	if isTsumo {
		dealerPay := roundUpTo(base*2, 100)
		otherPay := roundUpTo(base, 100)
		total := dealerPay + otherPay*2 + honba*300 + kyoutaku*1000
		return CostBreakdown{Main: dealerPay, MainBonus: honba * 100, Additional: otherPay, AdditionalBonus: honba * 100, Total: total, YakuLevel: level}
	}
	main := roundUpTo(base*4, 100)
	return CostBreakdown{Main: main, MainBonus: honba * 300, Total: main + honba*300 + kyoutaku*1000, YakuLevel: level}
}

func scoreEstimate(han, fu int) int { return basePoints(han, fu) * (4 + han) }

// chiitoiYaku evaluates the handful of yaku compatible with a seven-pairs
// shape, which the normal group-decomposition registry doesn't model.
func chiitoiYaku(all Histogram34, tiles []Tile, ctx EvalContext) []YakuEntry {
	entries := []YakuEntry{{Name: "Chiitoitsu", Han: 2}}
	if ctx.IsDoubleRiichi {
		entries = append(entries, YakuEntry{Name: "Double Riichi", Han: 2})
	} else if ctx.IsRiichi {
		entries = append(entries, YakuEntry{Name: "Riichi", Han: 1})
	}
	if ctx.IsIppatsu {
		entries = append(entries, YakuEntry{Name: "Ippatsu", Han: 1})
	}
	if ctx.IsTsumo {
		entries = append(entries, YakuEntry{Name: "Menzen Tsumo", Han: 1})
	}
	if ctx.IsHaitei {
		entries = append(entries, YakuEntry{Name: "Haitei", Han: 1})
	}
	if ctx.IsHoutei {
		entries = append(entries, YakuEntry{Name: "Houtei", Han: 1})
	}
	tanyao := true
	for k := TileType(0); k < NumTileTypes; k++ {
		if all[k] > 0 && k.IsTerminalOrHonor() {
			tanyao = false
			break
		}
	}
	if tanyao {
		entries = append(entries, YakuEntry{Name: "Tanyao", Han: 1})
	}
	if suit, hasHonor, ok := singleSuitUsed(all); ok && suit != -1 {
		if hasHonor {
			entries = append(entries, YakuEntry{Name: "Honitsu", Han: 3})
		} else {
			entries = append(entries, YakuEntry{Name: "Chinitsu", Han: 6})
		}
	}
	return entries
}

// kokushiYaku builds the single yaku entry for thirteen orphans, detecting
// the thirteen-wait (double yakuman) case: the pre-win 13 tiles held all
// thirteen kinds with no duplicate, i.e. the wait was on any of the 13.
func kokushiYaku(all Histogram34, winType TileType) []YakuEntry {
	pre := all
	pre[winType]--
	thirteenWait := true
	for _, k := range kokushiTypes {
		if pre[k] != 1 {
			thirteenWait = false
			break
		}
	}
	if thirteenWait {
		return []YakuEntry{{Name: "Kokushi Musou Juusanmen", Han: 26, Yakuman: true}}
	}
	return []YakuEntry{{Name: "Kokushi Musou", Han: 13, Yakuman: true}}
}

// Evaluate scores a complete hand: concealedTiles is the closed portion of
// the hand including the winning tile; melds are the already-fixed calls
// and kans. Returns a RuleError of NotWinning/NotCorrect/NoYaku on failure.
func (e *HandEvaluator) Evaluate(concealedTiles []Tile, winTile Tile, melds []Meld, doraIndicators, uraDoraIndicators []Tile, ctx EvalContext) (*WinResult, error) {
	concealedHist := HistogramFromTiles(concealedTiles)
	allTiles := append(append([]Tile(nil), concealedTiles...), flattenMeldTiles(melds)...)
	all := HistogramFromTiles(allTiles)
	isOpen := false
	for _, m := range melds {
		if m.Kind != ClosedKan {
			isOpen = true
		}
	}

	if len(melds) == 0 && IsAgariKokushi(all) {
		entries := kokushiYaku(all, winType(winTile))
		mult := 1
		if entries[0].Han == 26 {
			mult = 2
		}
		cost := computeYakumanCost(mult, ctx.IsDealer, ctx.IsTsumo, ctx.Honba, ctx.Kyoutaku)
		return &WinResult{Han: entries[0].Han, Fu: 0, Yaku: entries, Cost: cost, IsOpen: isOpen}, nil
	}

	if len(melds) == 0 && IsAgariChiitoi(all) {
		entries := chiitoiYaku(all, allTiles, ctx)
		han := 0
		for _, y := range entries {
			han += y.Han
		}
		han += countDora(all, doraIndicators)
		if ctx.IsRiichi {
			han += countDora(all, uraDoraIndicators)
		}
		if e.rules.UseRedFives {
			han += countAkaDora(allTiles)
		}
		fu := 25
		cost := computeCost(han, fu, ctx.IsDealer, ctx.IsTsumo, ctx.Honba, ctx.Kyoutaku)
		return &WinResult{Han: han, Fu: fu, Yaku: entries, Cost: cost, IsOpen: isOpen}, nil
	}

	if !IsAgariNormal(concealedHist, len(melds)) {
		return nil, &RuleError{Kind: ErrNotWinning, Msg: "hand is not a complete winning shape"}
	}

	decomps := enumerateDecompositions(concealedHist, winType(winTile), melds)
	if len(decomps) == 0 {
		return nil, &RuleError{Kind: ErrNotCorrect, Msg: "no valid meld decomposition found"}
	}

	type scored struct {
		entries []YakuEntry
		hasYaku bool
		fu      int
		han     int
		score   int
	}
	var best *scored
	for _, d := range decomps {
		f := handFacts{all: all, d: d, winType: winType(winTile), isTsumo: ctx.IsTsumo, isOpen: isOpen, ctx: ctx, fixed: melds}
		entries, hasYaku := GetHanFuAndYaku(f, e.rules)
		if !hasYaku {
			continue
		}

		anyYakuman := false
		for _, y := range entries {
			if y.Yakuman {
				anyYakuman = true
			}
		}

		fu := calculateFu(d, winType(winTile), ctx.IsTsumo, isOpen, ctx)
		pinfu := false
		for _, y := range entries {
			if y.Name == "Pinfu" {
				pinfu = true
			}
		}
		if pinfu {
			if ctx.IsTsumo {
				fu = 20
			} else {
				fu = 30
			}
		} else {
			fu = roundUpTo(fu, 10)
		}

		han := 0
		for _, y := range entries {
			han += y.Han
		}

		sc := han*1000 + fu
		if anyYakuman {
			sc = 1_000_000 + han
		}
		cand := &scored{entries: entries, hasYaku: hasYaku, fu: fu, han: han, score: sc}
		if best == nil || cand.score > best.score {
			best = cand
		}
	}

	if best == nil {
		return nil, &RuleError{Kind: ErrNoYaku, Msg: "hand has no yaku"}
	}

	anyYakuman := false
	yakumanMult := 0
	for _, y := range best.entries {
		if y.Yakuman {
			anyYakuman = true
			yakumanMult += y.Han / 13
		}
	}
	if anyYakuman {
		cost := computeYakumanCost(yakumanMult, ctx.IsDealer, ctx.IsTsumo, ctx.Honba, ctx.Kyoutaku)
		return &WinResult{Han: best.han, Fu: best.fu, Yaku: best.entries, Cost: cost, IsOpen: isOpen}, nil
	}

	han := best.han
	han += countDora(all, doraIndicators)
	if ctx.IsRiichi {
		han += countDora(all, uraDoraIndicators)
	}
	if e.rules.UseRedFives {
		han += countAkaDora(allTiles)
	}
	cost := computeCost(han, best.fu, ctx.IsDealer, ctx.IsTsumo, ctx.Honba, ctx.Kyoutaku)
	return &WinResult{Han: han, Fu: best.fu, Yaku: best.entries, Cost: cost, IsOpen: isOpen}, nil
}

func winType(t Tile) TileType { return t.Type() }

func flattenMeldTiles(melds []Meld) []Tile {
	var out []Tile
	for _, m := range melds {
		out = append(out, m.Tiles...)
	}
	return out
}
