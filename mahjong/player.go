package mahjong

// Player holds one seat's mutable state. It survives across rounds; the
// per-round fields are wiped by ResetRound at the start of each deal.
type Player struct {
	Name string
	Seat int

	Points int

	Hand     []Tile
	Melds    []Meld
	Discards []Discard

	Shanten int
	Ukeire  []TileType

	LatestDraw             Tile
	HasLatestDraw          bool
	LatestDrawWasDeadWall  bool

	Riichi         bool
	DoubleRiichi   bool
	Ippatsu        bool
	TempFuriten    bool
	HasPendingDora bool

	// KuikaeForbidden holds the t34 kinds this seat may not discard this
	// turn as a result of the call it just made; cleared on its next discard.
	KuikaeForbidden []TileType
}

// NewPlayer builds a seat with the given starting points; hand/round state
// is populated later by ResetRound + the deal.
func NewPlayer(name string, seat, points int) *Player {
	return &Player{Name: name, Seat: seat, Points: points}
}

// ResetRound clears every per-round field, leaving Name/Seat/Points intact.
func (p *Player) ResetRound() {
	p.Hand = nil
	p.Melds = nil
	p.Discards = nil
	p.Shanten = 0
	p.Ukeire = nil
	p.HasLatestDraw = false
	p.LatestDrawWasDeadWall = false
	p.Riichi = false
	p.DoubleRiichi = false
	p.Ippatsu = false
	p.TempFuriten = false
	p.HasPendingDora = false
	p.KuikaeForbidden = nil
}

// HasTile reports whether t136 t is physically present in the hand.
func (p *Player) HasTile(t Tile) bool {
	for _, h := range p.Hand {
		if h == t {
			return true
		}
	}
	return false
}

// RemoveTile removes the first matching physical tile from the hand.
func (p *Player) RemoveTile(t Tile) bool {
	for i, h := range p.Hand {
		if h == t {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// AddTile appends a physical tile to the hand (a draw, or restoring a
// tile declined from a call).
func (p *Player) AddTile(t Tile) { p.Hand = append(p.Hand, t) }

// FixedMeldCount returns how many melds (fixed groups) the player has
// locked, counting only open ones plus closed kans — the figure the
// shanten oracle needs as fixedMelds.
func (p *Player) FixedMeldCount() int { return len(p.Melds) }

// IsOpen reports whether the hand has any meld other than a closed kan,
// which would disqualify it from a closed-hand-only yaku (riichi,
// menzen-tsumo, pinfu, iipeikou, chiitoi, kokushi double-wait context).
func (p *Player) IsOpen() bool {
	for _, m := range p.Melds {
		if m.Kind != ClosedKan {
			return true
		}
	}
	return false
}

// Hand34 returns the concealed hand as a t34 histogram.
func (p *Player) Hand34() Histogram34 { return HistogramFromTiles(p.Hand) }

// DiscardedKinds returns the set of t34 kinds this player has ever
// discarded, used by the furiten check.
func (p *Player) DiscardedKinds() map[TileType]bool {
	out := make(map[TileType]bool, len(p.Discards))
	for _, d := range p.Discards {
		out[d.Tile.Type()] = true
	}
	return out
}

// IsFuriten reports whether ron is currently blocked: either a temporary
// penalty from declining a win, or shanten==0 with some ukeire kind
// already present among this player's own discards.
func (p *Player) IsFuriten() bool {
	if p.TempFuriten {
		return true
	}
	if p.Shanten != 0 {
		return false
	}
	discarded := p.DiscardedKinds()
	for _, w := range p.Ukeire {
		if discarded[w] {
			return true
		}
	}
	return false
}

// RecalculateShantenAndUkeire refreshes Shanten/Ukeire against the
// concealed hand using s, accounting for already-fixed melds.
func (p *Player) RecalculateShantenAndUkeire(s *Searcher) {
	h := p.Hand34()
	fixed := p.FixedMeldCount()
	p.Shanten = s.ShantenAll(h, fixed)
	waits, _ := s.WaitsAndUkeire(h, fixed, nil)
	p.Ukeire = waits
}
