package mahjong

import "mahjongcore/internal/ruleconfig"

// handFacts precomputes the properties yaku checkers read repeatedly, so
// the registry doesn't re-derive them per entry.
type handFacts struct {
	all       Histogram34 // every tile in the hand: concealed + melds + winning tile
	d         decomposition
	winType   TileType
	isTsumo   bool
	isOpen    bool
	ctx       EvalContext
	fixed     []Meld
}

func combinedHistogram(concealed Histogram34, melds []Meld) Histogram34 {
	h := concealed
	for _, m := range melds {
		for _, t := range m.Tiles {
			h[t.Type()]++
		}
	}
	return h
}

func singleSuitUsed(h Histogram34) (suit int, hasHonor bool, ok bool) {
	suit = -1
	for k := TileType(0); k < NumTileTypes; k++ {
		if h[k] == 0 {
			continue
		}
		if k.IsHonor() {
			hasHonor = true
			continue
		}
		s := k.Suit()
		if suit == -1 {
			suit = s
		} else if suit != s {
			return -1, hasHonor, false
		}
	}
	return suit, hasHonor, suit != -1 || hasHonor
}

type yakuCheck func(f handFacts, rules ruleconfig.Rules) (han int, yakuman bool, double bool, ok bool)

type yakuDef struct {
	name  string
	check yakuCheck
}

var yakuRegistry = []yakuDef{
	{"Double Riichi", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		return 2, false, false, f.ctx.IsDoubleRiichi
	}},
	{"Riichi", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		return 1, false, false, f.ctx.IsRiichi && !f.ctx.IsDoubleRiichi
	}},
	{"Ippatsu", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		return 1, false, false, f.ctx.IsIppatsu
	}},
	{"Menzen Tsumo", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		return 1, false, false, f.isTsumo && !f.isOpen
	}},
	{"Pinfu", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		return 1, false, false, !f.isOpen && isPinfuShape(f.d, f.winType, f.ctx)
	}},
	{"Tanyao", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		if !r.OpenTanyao && f.isOpen {
			return 0, false, false, false
		}
		for k := TileType(0); k < NumTileTypes; k++ {
			if f.all[k] > 0 && k.IsTerminalOrHonor() {
				return 0, false, false, false
			}
		}
		return 1, false, false, true
	}},
	{"Yakuhai", checkYakuhai},
	{"Sanshoku Doujun", checkSanshokuDoujun},
	{"Ittsu", checkIttsu},
	{"Chanta", checkChantaJunchan},
	{"Honroto", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		for k := TileType(0); k < NumTileTypes; k++ {
			if f.all[k] > 0 && !k.IsTerminalOrHonor() {
				return 0, false, false, false
			}
		}
		allTriplets := true
		for _, g := range f.d.groups {
			if g.seq {
				allTriplets = false
			}
		}
		if !allTriplets && !IsAgariChiitoi(f.all) {
			return 0, false, false, false
		}
		return 2, false, false, true
	}},
	{"Honitsu/Chinitsu", checkFlush},
	{"Toitoi", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		for _, g := range f.d.groups {
			if g.seq {
				return 0, false, false, false
			}
		}
		return 2, false, false, true
	}},
	{"Sanankou", checkSanankou},
	{"Sankantsu", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		n := 0
		for _, g := range f.d.groups {
			if g.kan {
				n++
			}
		}
		return 2, false, false, n >= 3
	}},
	{"Iipeikou/Ryanpeikou", checkPeikou},
	{"Chuurenpoutou", checkChuuren},
	{"Suuankou", checkSuuankou},
	{"Daisangen", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		n := 0
		for _, d := range [...]TileType{White, Green, Red} {
			for _, g := range f.d.groups {
				if !g.seq && g.low == d {
					n++
				}
			}
		}
		return 0, true, false, n == 3
	}},
	{"Shousuushi/Daisuushi", checkWindYakuman},
	{"Tsuuiisou", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		for k := TileType(0); k < NumTileTypes; k++ {
			if f.all[k] > 0 && !k.IsHonor() {
				return 0, false, false, false
			}
		}
		return 0, true, false, true
	}},
	{"Chinroutou", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		for k := TileType(0); k < NumTileTypes; k++ {
			if f.all[k] > 0 && !k.IsTerminal() {
				return 0, false, false, false
			}
		}
		return 0, true, false, true
	}},
	{"Ryuuiisou", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		green := map[TileType]bool{So2: true, So3: true, So4: true, So6: true, So8: true, Green: true}
		for k := TileType(0); k < NumTileTypes; k++ {
			if f.all[k] > 0 && !green[k] {
				return 0, false, false, false
			}
		}
		return 0, true, false, true
	}},
	{"Haitei", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		return 1, false, false, f.ctx.IsHaitei
	}},
	{"Houtei", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		return 1, false, false, f.ctx.IsHoutei
	}},
	{"Rinshan Kaihou", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		return 1, false, false, f.ctx.IsRinshan
	}},
	{"Chankan", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		return 1, false, false, f.ctx.IsChankan
	}},
	{"Tenhou", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		return 0, true, false, f.ctx.IsTenhou
	}},
	{"Chiihou", func(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
		return 0, true, false, f.ctx.IsChiihou
	}},
}

func checkYakuhai(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
	han := 0
	for _, g := range f.d.groups {
		if g.seq {
			continue
		}
		switch g.low {
		case White, Green, Red:
			han++
		case f.ctx.RoundWind:
			han++
		case f.ctx.SeatWind:
			han++
		}
	}
	return han, false, false, han > 0
}

func checkSanshokuDoujun(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
	seen := map[int]map[int]bool{}
	for _, g := range f.d.groups {
		if !g.seq {
			continue
		}
		suit := g.low.Suit()
		num := g.low.Number()
		if seen[num] == nil {
			seen[num] = map[int]bool{}
		}
		seen[num][suit] = true
	}
	for _, suits := range seen {
		if len(suits) == 3 {
			if f.isOpen {
				return 1, false, false, true
			}
			return 2, false, false, true
		}
	}
	return 0, false, false, false
}

func checkIttsu(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
	have := map[int]map[int]bool{0: {}, 1: {}, 2: {}}
	for _, g := range f.d.groups {
		if !g.seq {
			continue
		}
		have[g.low.Suit()][g.low.Number()] = true
	}
	for _, nums := range have {
		if nums[1] && nums[4] && nums[7] {
			if f.isOpen {
				return 1, false, false, true
			}
			return 2, false, false, true
		}
	}
	return 0, false, false, false
}

func checkChantaJunchan(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
	junchan := true
	for _, g := range f.d.groups {
		if g.seq {
			if !(g.low.Number() == 1 || g.low.Number() == 7) {
				return 0, false, false, false
			}
			continue
		}
		if !g.low.IsTerminalOrHonor() {
			return 0, false, false, false
		}
		if g.low.IsHonor() {
			junchan = false
		}
	}
	if !f.d.pair.IsTerminalOrHonor() {
		return 0, false, false, false
	}
	if f.d.pair.IsHonor() {
		junchan = false
	}
	if junchan {
		if f.isOpen {
			return 2, false, false, true
		}
		return 3, false, false, true
	}
	if f.isOpen {
		return 1, false, false, true
	}
	return 2, false, false, true
}

func checkFlush(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
	_, hasHonor, ok := singleSuitUsed(f.all)
	if !ok {
		return 0, false, false, false
	}
	if hasHonor {
		if f.isOpen {
			return 2, false, false, true
		}
		return 3, false, false, true
	}
	if f.isOpen {
		return 5, false, false, true
	}
	return 6, false, false, true
}

func checkSanankou(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
	n := 0
	for _, g := range f.d.groups {
		if g.seq {
			continue
		}
		ankou := !g.open && !(g.fromWin && !f.isTsumo)
		if ankou {
			n++
		}
	}
	return 2, false, false, n >= 3
}

func checkSuuankou(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
	n := 0
	for _, g := range f.d.groups {
		if g.seq {
			return 0, false, false, false
		}
		ankou := !g.open && !(g.fromWin && !f.isTsumo)
		if ankou {
			n++
		}
	}
	if n != 4 {
		return 0, false, false, false
	}
	if f.d.pairIsWin {
		return 0, true, true, true // suuankou tanki: double yakuman
	}
	return 0, true, false, true
}

func checkPeikou(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
	if f.isOpen {
		return 0, false, false, false
	}
	counts := map[TileType]int{}
	for _, g := range f.d.groups {
		if g.seq {
			counts[g.low]++
		}
	}
	pairs := 0
	for _, c := range counts {
		pairs += c / 2
	}
	switch pairs {
	case 0:
		return 0, false, false, false
	case 1:
		return 1, false, false, true
	default:
		return 3, false, false, true // ryanpeikou
	}
}

func checkChuuren(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
	suit, hasHonor, ok := singleSuitUsed(f.all)
	if !ok || hasHonor || len(f.fixed) > 0 {
		return 0, false, false, false
	}
	base := [9]int{3, 1, 1, 1, 1, 1, 1, 1, 3}
	pre := f.all
	pre[f.winType]--
	for i := 0; i < 9; i++ {
		k := TileType(suit*9 + i)
		want := base[i]
		got := int(pre[k])
		if got != want && got != want-1 {
			return 0, false, false, false
		}
		if got == want-1 && TileType(suit*9+i) != f.winType {
			return 0, false, false, false
		}
	}
	pure := true
	for i := 0; i < 9; i++ {
		k := TileType(suit*9 + i)
		if int(pre[k]) != base[i] {
			pure = false
		}
	}
	if pure {
		return 0, true, true, true // junsei chuurenpoutou: double yakuman
	}
	return 0, true, false, true
}

func checkWindYakuman(f handFacts, r ruleconfig.Rules) (int, bool, bool, bool) {
	winds := [...]TileType{East, South, West, North}
	triplets := 0
	for _, w := range winds {
		for _, g := range f.d.groups {
			if !g.seq && g.low == w {
				triplets++
			}
		}
	}
	if triplets == 4 {
		return 0, true, true, true // daisuushi: double yakuman
	}
	if triplets == 3 {
		for _, w := range winds {
			if f.d.pair == w {
				return 0, true, false, true // shousuushi
			}
		}
	}
	return 0, false, false, false
}

// GetHanFuAndYaku evaluates every registered yaku against one decomposition
// and returns the accumulated entries and whether any of them is a "real"
// yaku (as opposed to dora, which never satisfies the no-yaku requirement).
func GetHanFuAndYaku(f handFacts, rules ruleconfig.Rules) ([]YakuEntry, bool) {
	var entries []YakuEntry
	hasYaku := false
	sawDoubleRiichi := false
	for _, def := range yakuRegistry {
		han, yakuman, double, ok := def.check(f, rules)
		if !ok {
			continue
		}
		if def.name == "Double Riichi" {
			sawDoubleRiichi = true
		}
		if def.name == "Riichi" && sawDoubleRiichi {
			continue
		}
		entry := YakuEntry{Name: def.name, Han: han, Yakuman: yakuman}
		if yakuman {
			mult := 1
			if double {
				mult = 2
			}
			entry.Han = 13 * mult
		}
		entries = append(entries, entry)
		hasYaku = true
	}
	return entries, hasYaku
}
