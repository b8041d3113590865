package mahjong

import "testing"

func TestPlayer_HasAddRemoveTile(t *testing.T) {
	p := NewPlayer("P", 0, 25000)
	tile := NewTile(Man1, 0)
	p.AddTile(tile)
	if !p.HasTile(tile) {
		t.Fatalf("expected hand to contain the added tile")
	}
	if !p.RemoveTile(tile) {
		t.Fatalf("expected RemoveTile to find and remove the tile")
	}
	if p.HasTile(tile) {
		t.Fatalf("tile should be gone after RemoveTile")
	}
	if p.RemoveTile(tile) {
		t.Fatalf("removing an absent tile should report false")
	}
}

func TestPlayer_IsOpen(t *testing.T) {
	p := NewPlayer("P", 0, 25000)
	if p.IsOpen() {
		t.Fatalf("fresh player should not be open")
	}
	p.Melds = []Meld{NewClosedKan(tilesOf(Man1, Man1, Man1, Man1))}
	if p.IsOpen() {
		t.Fatalf("a closed kan alone must not count as an open hand")
	}
	p.Melds = append(p.Melds, NewCalledMeld(Pon, tilesOf(Pin5, Pin5, Pin5), 1, NewTile(Pin5, 0)))
	if !p.IsOpen() {
		t.Fatalf("a pon must make the hand open")
	}
}

func TestPlayer_IsFuriten_TempFlag(t *testing.T) {
	p := NewPlayer("P", 0, 25000)
	p.TempFuriten = true
	if !p.IsFuriten() {
		t.Fatalf("temp furiten flag must force furiten regardless of shanten/ukeire")
	}
}

func TestPlayer_IsFuriten_OwnDiscardAmongWaits(t *testing.T) {
	s := NewSearcher()
	p := NewPlayer("P", 0, 25000)
	p.Hand = tilesOf(Pin1, Pin2, Pin3, So1, So2, So3, Man7, Man8, Man9, East, East, East, Man5)
	p.RecalculateShantenAndUkeire(s)
	if p.Shanten != 0 {
		t.Fatalf("expected this hand to be tenpai, got shanten=%d", p.Shanten)
	}
	if len(p.Ukeire) == 0 {
		t.Fatalf("expected a non-empty wait set")
	}
	p.Discards = append(p.Discards, Discard{Tile: NewTile(p.Ukeire[0], 0)})
	if !p.IsFuriten() {
		t.Fatalf("discarding a winning tile while tenpai must set furiten")
	}
}

func TestPlayer_IsFuriten_NotTenpai(t *testing.T) {
	p := NewPlayer("P", 0, 25000)
	p.Shanten = 2
	p.Ukeire = []TileType{Man5}
	p.Discards = []Discard{{Tile: NewTile(Man5, 0)}}
	if p.IsFuriten() {
		t.Fatalf("furiten only applies to a tenpai hand")
	}
}

func TestPlayer_ResetRound(t *testing.T) {
	p := NewPlayer("P", 0, 25000)
	p.Hand = tilesOf(Man1, Man2, Man3)
	p.Riichi = true
	p.DoubleRiichi = true
	p.Shanten = 0
	p.Discards = []Discard{{Tile: NewTile(Man1, 0)}}
	p.ResetRound()
	if p.Hand != nil || p.Riichi || p.DoubleRiichi || p.Discards != nil {
		t.Fatalf("ResetRound left stale per-round state: %+v", p)
	}
	if p.Name != "P" || p.Seat != 0 || p.Points != 25000 {
		t.Fatalf("ResetRound must not touch identity/points: %+v", p)
	}
}
