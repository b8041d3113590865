package mahjong

import (
	"math/rand"
	"testing"

	"mahjongcore/internal/ruleconfig"
)

// newTestRound builds a Round whose entire initial deal is pinned by a
// preset tile queue. It tops up the wall's availability for every kind the
// preset will draw, undoing whatever the dead wall's own random draw
// happened to consume, so the scenario is fully deterministic regardless
// of RNG seed.
func newTestRound(t *testing.T, presetKinds []TileType) *Round {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	wall := NewWall(rng, false)
	for _, k := range presetKinds {
		wall.available[k] = 4
	}
	wall.SetPreset(TileTypesToTiles(presetKinds))

	searcher := NewSearcher()
	rules := ruleconfig.Default()
	rules.UseRedFives = false
	evaluator := NewHandEvaluator(searcher, rules)

	players := [4]*Player{
		NewPlayer("P0", 0, rules.InitialPoints),
		NewPlayer("P1", 1, rules.InitialPoints),
		NewPlayer("P2", 2, rules.InitialPoints),
		NewPlayer("P3", 3, rules.InitialPoints),
	}

	r := NewRound(RoundConfig{
		Players: players, Wall: wall, Searcher: searcher, Evaluator: evaluator,
		Rules: rules, Wind: East, RoundNum: 1, DealerSeat: 0,
	})
	if err := r.DealHands(); err != nil {
		t.Fatalf("DealHands failed: %v", err)
	}
	return r
}

// declineIfArbitrating clears and declines pending call-arbitration queries
// (ron/pon/chi/kan) left over after a discard, if any are pending. It must
// not fire for a fresh turn's own draw/discard queries, which the driver
// resolves by acting, not declining.
func declineIfArbitrating(t *testing.T, r *Round) {
	t.Helper()
	if r.pending.kind != pendingDiscardArbitration {
		return
	}
	if err := r.DeclineCalls(); err != nil {
		t.Fatalf("decline failed: %v", err)
	}
}

func findTileOfType(hand []Tile, kind TileType) Tile {
	for _, t := range hand {
		if t.Type() == kind {
			return t
		}
	}
	return -1
}

// Scattered, non-overlapping, non-tenpai hands so no seat can chi/pon/kan/
// ron on an honor discard; each seat holds exactly one East tile.
var fourWindDealerKinds = []TileType{Man2, Man3, Man4, Man5, Man6, Man7, Man8, Man9, Pin2, Pin3, Pin4, Pin6, East}
var fourWindOtherKinds = []TileType{Man1, Man9, Pin1, Pin9, So1, So9, East, South, West, North, White, Green, Man5}

func TestRound_DealHandsAndTurnAdvances(t *testing.T) {
	preset := append(append([]TileType{}, fourWindDealerKinds...), fourWindOtherKinds...)
	preset = append(preset, fourWindOtherKinds...)
	preset = append(preset, fourWindOtherKinds...)
	preset = append(preset, Pin8) // dealer's 14th tile

	r := newTestRound(t, preset)

	queries := r.PendingQueries()
	var dq *DiscardQuery
	for _, q := range queries {
		if d, ok := q.(DiscardQuery); ok {
			d := d
			dq = &d
		}
	}
	if dq == nil || dq.Seat != 0 {
		t.Fatalf("expected a discard query for seat 0 after dealing, got %v", queries)
	}

	discard := findTileOfType(r.players[0].Hand, Pin8)
	if discard < 0 {
		t.Fatalf("dealer hand missing drawn tile Pin8")
	}
	if err := r.DiscardTile(0, discard, false); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	declineIfArbitrating(t, r)

	found := false
	for _, q := range r.PendingQueries() {
		if d, ok := q.(DiscardQuery); ok && d.Seat == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected turn to advance to seat 1, pending=%v", r.PendingQueries())
	}
}

func TestRound_FourWindAbortiveDraw(t *testing.T) {
	preset := append(append([]TileType{}, fourWindDealerKinds...), fourWindOtherKinds...)
	preset = append(preset, fourWindOtherKinds...)
	preset = append(preset, fourWindOtherKinds...)
	preset = append(preset, Pin8)

	r := newTestRound(t, preset)

	for seat := 0; seat < 4; seat++ {
		east := findTileOfType(r.players[seat].Hand, East)
		if east < 0 {
			t.Fatalf("seat %d hand missing an East tile", seat)
		}
		if err := r.DiscardTile(seat, east, false); err != nil {
			t.Fatalf("seat %d discard failed: %v", seat, err)
		}
		if r.Finished() {
			break
		}
		declineIfArbitrating(t, r)
	}

	if !r.Finished() {
		t.Fatalf("expected the round to end in a four-wind abortive draw")
	}
	if !r.DealerRetains() {
		t.Fatalf("an abortive draw should retain the dealer")
	}
}

func TestWall_TakeReplaceRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	w := NewWall(rng, false)
	w.available[Man1] = 4

	tile := NewTile(Man1, 0)
	before := w.available[Man1]
	got, err := w.Take(tile)
	if err != nil {
		t.Fatalf("take failed: %v", err)
	}
	if got != tile {
		t.Fatalf("take returned %v, want %v", got, tile)
	}
	if w.available[Man1] != before-1 {
		t.Fatalf("take did not decrement availability")
	}
	w.Replace(tile)
	if w.available[Man1] != before {
		t.Fatalf("replace did not restore availability: got %d want %d", w.available[Man1], before)
	}
}

func TestKuikaeForbidden_RyanmenBlocksBothEnds(t *testing.T) {
	// Hand holds 4m5m, chi'd the 6m: ryanmen, so 3m (the other completion)
	// is also forbidden alongside the called kind itself.
	forbidden := kuikaeForbidden([2]TileType{Man4, Man5}, Man6)
	want := map[TileType]bool{Man6: true, Man3: true}
	if len(forbidden) != len(want) {
		t.Fatalf("expected %d forbidden kinds, got %v", len(want), forbidden)
	}
	for _, k := range forbidden {
		if !want[k] {
			t.Fatalf("unexpected forbidden kind %v", k)
		}
	}
}

// TestRound_DeclineCallIsPerSeat pins down call-priority arbitration's
// selective-decline path: a pending ron at one seat blocks a pending pon at
// another, but declining only the ron seat's query lets the pon through
// without disturbing it.
func TestRound_DeclineCallIsPerSeat(t *testing.T) {
	r := newTestRound(t, append(append([]TileType{}, fourWindDealerKinds...), fourWindOtherKinds...))

	discardedKind := Man5
	r.pendingDiscard = &pendingDiscardInfo{seat: 0, tile: NewTile(discardedKind, 2)}
	r.pending = pendingState{kind: pendingDiscardArbitration}
	r.ronEligible = []int{2}
	r.bus.EmitQuery(RonQuery{Seat: 2, FromSeat: 0})

	ponTiles := []Tile{NewTile(discardedKind, 0), NewTile(discardedKind, 1)}
	r.players[3].Hand = append(r.players[3].Hand, ponTiles...)
	r.bus.EmitQuery(CallQuery{Seat: 3, Kind_: CallPon, Choices: [][]Tile{ponTiles}, FromSeat: 0, DiscardIdx: 0})

	if err := r.CallPon(3, ponTiles); err == nil {
		t.Fatalf("expected pon to be blocked while a ron query is still pending")
	}

	if err := r.DeclineCall(2); err != nil {
		t.Fatalf("DeclineCall(2) failed: %v", err)
	}
	if !r.HasPendingQueries() {
		t.Fatalf("seat 3's pon query must survive seat 2's decline")
	}

	if err := r.CallPon(3, ponTiles); err != nil {
		t.Fatalf("expected pon to succeed once the competing ron query is declined: %v", err)
	}
	if r.activeSeat != 3 {
		t.Fatalf("expected seat 3 to become active after its pon, got %d", r.activeSeat)
	}
}

func TestRound_DeclineCallRejectsSeatWithNoQuery(t *testing.T) {
	r := newTestRound(t, append(append([]TileType{}, fourWindDealerKinds...), fourWindOtherKinds...))
	r.pendingDiscard = &pendingDiscardInfo{seat: 0, tile: NewTile(Man5, 2)}
	r.pending = pendingState{kind: pendingDiscardArbitration}
	r.bus.EmitQuery(RonQuery{Seat: 2, FromSeat: 0})

	if err := r.DeclineCall(1); err == nil {
		t.Fatalf("expected an error declining for a seat with no pending query")
	}
}

func TestKuikaeForbidden_KanchanOnlyBlocksCalledKind(t *testing.T) {
	// Hand holds 4m6m (kanchan), chi'd the 5m: only 5m is forbidden.
	forbidden := kuikaeForbidden([2]TileType{Man4, Man6}, Man5)
	if len(forbidden) != 1 || forbidden[0] != Man5 {
		t.Fatalf("expected only the called kind forbidden, got %v", forbidden)
	}
}
