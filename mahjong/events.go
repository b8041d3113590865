package mahjong

// Event is a tagged variant over every fact or pending decision the round
// engine can emit. ForPlayer projects a full-information event down to
// what a given seat is allowed to see (own hand only, tile identity hidden
// for other seats' draws, and so on).
type Event interface {
	Kind() string
	ForPlayer(seat int) Event
}

// QueryEvent is a pending decision: the engine suspends until the driver
// resolves it (or, for optional queries, implicitly declines it by taking
// some other action).
type QueryEvent interface {
	Event
	Optional() bool
}

// NewGameEvent announces the four seats and their starting points.
type NewGameEvent struct {
	PlayerNames [4]string
	Points      [4]int
}

func (e NewGameEvent) Kind() string          { return "new_game" }
func (e NewGameEvent) ForPlayer(int) Event   { return e }

// NewRoundEvent announces a deal. Projected, it reveals only the viewing
// seat's own hand; the other three hands are hidden (nil).
type NewRoundEvent struct {
	Wind  TileType
	Round int
	Bonus int
	Hands [4][]Tile
}

func (e NewRoundEvent) Kind() string { return "new_round" }
func (e NewRoundEvent) ForPlayer(seat int) Event {
	proj := e
	for i := range proj.Hands {
		if i != seat {
			proj.Hands[i] = nil
		}
	}
	return proj
}

// TileEvent reports a draw. Projected to any seat but the drawer, the
// tile identity is hidden (only that a draw happened is visible).
type TileEvent struct {
	Seat int
	Tile Tile
	Hidden bool
}

func (e TileEvent) Kind() string { return "tile" }
func (e TileEvent) ForPlayer(seat int) Event {
	if seat != e.Seat {
		e.Hidden = true
		e.Tile = 0
	}
	return e
}

// DiscardEvent reports a discard; always fully visible.
type DiscardEvent struct {
	Seat        int
	Tile        Tile
	IsTsumogiri bool
	IsRiichi    bool
}

func (e DiscardEvent) Kind() string        { return "discard" }
func (e DiscardEvent) ForPlayer(int) Event { return e }

// CallEvent reports a completed chi/pon/kan.
type CallEvent struct {
	Seat int
	Meld Meld
}

func (e CallEvent) Kind() string        { return "call" }
func (e CallEvent) ForPlayer(int) Event { return e }

// DoraEvent reports a newly revealed dora indicator.
type DoraEvent struct {
	Tile Tile
	Ura  bool
}

func (e DoraEvent) Kind() string        { return "dora" }
func (e DoraEvent) ForPlayer(int) Event { return e }

// FuritenEvent is seat-scoped furiten-state-change notice.
type FuritenEvent struct {
	Seat      int
	IsFuriten bool
}

func (e FuritenEvent) Kind() string        { return "furiten" }
func (e FuritenEvent) ForPlayer(int) Event { return e }

// Win carries one winner's full settlement record.
type Win struct {
	Seat     int
	Hand     []Tile
	Melds    []Meld
	WinTile  Tile
	IsTsumo  bool
	DoraInds []Tile
	UraInds  []Tile
	Result   WinResult
	Points   [4]int // points after this settlement
}

// WinEvent reports one win (ron emits one per caller on a multi-ron).
type WinEvent struct{ Win Win }

func (e WinEvent) Kind() string        { return "win" }
func (e WinEvent) ForPlayer(int) Event { return e }

// DrawKind enumerates exhaustive and abortive draw reasons.
type DrawKind string

const (
	DrawExhaustive    DrawKind = "exhaustive"
	DrawNineTerminal  DrawKind = "nine_terminal"
	DrawFourWind      DrawKind = "four_wind"
	DrawFourRiichi    DrawKind = "four_riichi"
	DrawFourKan       DrawKind = "four_kan"
	DrawNagashiMangan DrawKind = "nagashi_mangan"
)

// DrawEvent reports an exhaustive or abortive draw.
type DrawEvent struct {
	DrawKind DrawKind
	Hands    [4][]Tile
	Tenpai   [4]bool
	Nagashi  [4]bool
	Points   [4]int
}

func (e DrawEvent) Kind() string { return "draw" }
func (e DrawEvent) ForPlayer(seat int) Event {
	proj := e
	for i := range proj.Hands {
		if i != seat {
			proj.Hands[i] = nil
		}
	}
	return proj
}

// GameOverEvent reports final standings.
type GameOverEvent struct{ Points [4]int }

func (e GameOverEvent) Kind() string        { return "game_over" }
func (e GameOverEvent) ForPlayer(int) Event { return e }

// DiscardQuery lists the tiles a seat may currently discard, excluding any
// kuikae restriction, plus the resulting wait were riichi declared on it.
type DiscardQuery struct {
	Seat    int
	Allowed []Tile
	Waits   map[Tile][]TileType
}

func (e DiscardQuery) Kind() string        { return "discard_query" }
func (e DiscardQuery) Optional() bool      { return false }
func (e DiscardQuery) ForPlayer(seat int) Event {
	if seat != e.Seat {
		return nil
	}
	return e
}

// RiichiQuery lists droppable tiles that would leave the hand tenpai.
type RiichiQuery struct {
	Seat    int
	Allowed []Tile
	Waits   map[Tile][]TileType
}

func (e RiichiQuery) Kind() string   { return "riichi_query" }
func (e RiichiQuery) Optional() bool { return true }
func (e RiichiQuery) ForPlayer(seat int) Event {
	if seat != e.Seat {
		return nil
	}
	return e
}

// DrawQuery offers the nine-terminal abortive draw.
type DrawQuery struct{ Seat int }

func (e DrawQuery) Kind() string   { return "draw_query" }
func (e DrawQuery) Optional() bool { return true }
func (e DrawQuery) ForPlayer(seat int) Event {
	if seat != e.Seat {
		return nil
	}
	return e
}

// TsumoQuery offers a self-draw win.
type TsumoQuery struct{ Seat int }

func (e TsumoQuery) Kind() string   { return "tsumo_query" }
func (e TsumoQuery) Optional() bool { return true }
func (e TsumoQuery) ForPlayer(seat int) Event {
	if seat != e.Seat {
		return nil
	}
	return e
}

// RonQuery offers a win on another seat's discard.
type RonQuery struct {
	Seat       int
	FromSeat   int
	IsChankan  bool
	ChankanTile Tile
}

func (e RonQuery) Kind() string   { return "ron_query" }
func (e RonQuery) Optional() bool { return true }
func (e RonQuery) ForPlayer(seat int) Event {
	if seat != e.Seat {
		return nil
	}
	return e
}

// CallQueryKind enumerates the three non-win call types.
type CallQueryKind string

const (
	CallChi     CallQueryKind = "chi"
	CallPon     CallQueryKind = "pon"
	CallOpenKan CallQueryKind = "kan"
)

// CallQuery offers one or more ways to call the just-discarded tile.
type CallQuery struct {
	Seat       int
	Kind_      CallQueryKind
	Choices    [][]Tile // each choice is the full tile set of the resulting meld
	FromSeat   int
	DiscardIdx int
}

func (e CallQuery) Kind() string   { return "call_query" }
func (e CallQuery) Optional() bool { return true }
func (e CallQuery) ForPlayer(seat int) Event {
	if seat != e.Seat {
		return nil
	}
	return e
}

// ClosedKanQuery offers a closed or added kan on the drawing seat's own turn.
type ClosedKanQuery struct {
	Seat    int
	Added   bool
	Tiles   []Tile
}

func (e ClosedKanQuery) Kind() string   { return "kan_query" }
func (e ClosedKanQuery) Optional() bool { return true }
func (e ClosedKanQuery) ForPlayer(seat int) Event {
	if seat != e.Seat {
		return nil
	}
	return e
}

// EventBus buffers outbound facts and pending decisions. A query is
// pending if any remains buffered; the round engine's continuation does
// not run again until the buffer is drained to empty by driver actions.
type EventBus struct {
	events  []Event
	queries []QueryEvent
}

// Emit appends a fact event.
func (b *EventBus) Emit(ev Event) { b.events = append(b.events, ev) }

// EmitQuery appends a pending decision.
func (b *EventBus) EmitQuery(q QueryEvent) { b.queries = append(b.queries, q) }

// PopEvents drains and returns every buffered fact event.
func (b *EventBus) PopEvents() []Event {
	out := b.events
	b.events = nil
	return out
}

// PendingQueries returns the currently buffered (undrained) queries.
func (b *EventBus) PendingQueries() []QueryEvent { return b.queries }

// HasPendingQueries reports whether the engine must still suspend.
func (b *EventBus) HasPendingQueries() bool { return len(b.queries) > 0 }

// ClearQueries drops every pending query, e.g. once a mandatory action
// (discard, call execution) implicitly declines the rest.
func (b *EventBus) ClearQueries() { b.queries = nil }

// RemoveQueriesForSeat drops every pending query belonging to seat, used
// once that seat has taken its action.
func (b *EventBus) RemoveQueriesForSeat(seat int) {
	kept := b.queries[:0]
	for _, q := range b.queries {
		if projected := q.ForPlayer(seat); projected == nil {
			kept = append(kept, q)
		}
	}
	b.queries = kept
}
