package mahjong

// MeldKind enumerates the five ways a set of tiles can be locked together.
type MeldKind int

const (
	Chi MeldKind = iota
	Pon
	ClosedKan
	OpenKan
	AddedKan
)

func (k MeldKind) String() string {
	switch k {
	case Chi:
		return "chi"
	case Pon:
		return "pon"
	case ClosedKan:
		return "closed_kan"
	case OpenKan:
		return "open_kan"
	case AddedKan:
		return "added_kan"
	default:
		return "unknown"
	}
}

// NoSeat marks the absence of a seat reference (called_from on a closed kan,
// called_by on an uncalled discard).
const NoSeat = -1

// Meld is an immutable-after-creation record of a called or closed set.
// A Pon may be Promote'd to AddedKan in place (the source tiles grow by
// one and Kind flips) rather than being replaced by a new record, matching
// real play where the meld's identity persists across the upgrade.
type Meld struct {
	Kind       MeldKind
	Tiles      []Tile
	CalledFrom int  // seat the tile was called from, or NoSeat
	CalledTile Tile
	hasCalled  bool
}

// NewCalledMeld builds a chi/pon/open_kan record.
func NewCalledMeld(kind MeldKind, tiles []Tile, calledFrom int, calledTile Tile) Meld {
	return Meld{Kind: kind, Tiles: append([]Tile(nil), tiles...), CalledFrom: calledFrom, CalledTile: calledTile, hasCalled: true}
}

// NewClosedKan builds a closed-kan record (no called_from).
func NewClosedKan(tiles []Tile) Meld {
	return Meld{Kind: ClosedKan, Tiles: append([]Tile(nil), tiles...), CalledFrom: NoSeat}
}

// IsKan reports whether the meld is any of the three kan variants.
func (m Meld) IsKan() bool { return m.Kind == ClosedKan || m.Kind == OpenKan || m.Kind == AddedKan }

// IsOpen reports whether the meld is visible to all players (everything
// but a closed kan).
func (m Meld) IsOpen() bool { return m.Kind != ClosedKan }

// PromoteToAddedKan appends the fourth tile to an existing pon, flipping it
// to an added kan in place; returns false if m is not a pon.
func (m *Meld) PromoteToAddedKan(t Tile) bool {
	if m.Kind != Pon {
		return false
	}
	m.Tiles = append(m.Tiles, t)
	m.Kind = AddedKan
	return true
}

// Discard is an append-only record; calls mark CalledBy rather than
// removing the entry, so the discard pile always reflects full round history.
type Discard struct {
	Tile        Tile
	IsTsumogiri bool
	IsRiichi    bool
	CalledBy    int // seat that called this discard, or NoSeat
}

// Wait describes the outcome of evaluating a tenpai hand against the
// shanten oracle: which kinds complete it, whether each carries a yaku,
// and whether declaring on it would currently be blocked by furiten.
type Wait struct {
	Tiles     []TileType
	HasYaku   map[TileType]bool
	IsFuriten bool
}
