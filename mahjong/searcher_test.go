package mahjong

import "testing"

func tilesOf(kinds ...TileType) []Tile {
	out := make([]Tile, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, NewTile(k, 0))
	}
	return out
}

func TestSearcher_KokushiShantenAndAgari(t *testing.T) {
	s := NewSearcher()
	h13, _ := Hand34FromTiles(tilesOf(
		Man1, Man9, Pin1, Pin9, So1, So9,
		East, South, West, North, White, Green, Red,
	))
	if got := s.ShantenAll(h13, 0); got != 0 {
		t.Fatalf("kokushi shanten expected 0, got %d", got)
	}
	h14 := h13
	h14[Man1]++
	if !s.IsAgariAll(h14, 0) {
		t.Fatalf("kokushi agari expected true")
	}
}

func TestSearcher_ChiitoiShantenAndWaits(t *testing.T) {
	s := NewSearcher()
	h13, _ := Hand34FromTiles(tilesOf(
		Man1, Man1, Man2, Man2, Man3, Man3,
		Pin1, Pin1, Pin2, Pin2, So1, So1, East,
	))
	if got := s.ShantenAll(h13, 0); got != 0 {
		t.Fatalf("chiitoi shanten expected 0, got %d", got)
	}
	waits, ukeire := s.WaitsAndUkeire(h13, 0, nil)
	if len(waits) != 1 || waits[0] != East {
		t.Fatalf("chiitoi waits expected [East], got %v", waits)
	}
	if ukeire != 3 {
		t.Fatalf("chiitoi ukeire expected 3, got %d", ukeire)
	}
}

func TestSearcher_NormalAgariWithFixedMelds(t *testing.T) {
	s := NewSearcher()
	h11, _ := Hand34FromTiles(tilesOf(
		Pin1, Pin2, Pin3, So1, So2, So3, Man7, Man8, Man9, East, East,
	))
	if !s.IsAgariAll(h11, 1) {
		t.Fatalf("normal agari with fixedMelds=1 expected true")
	}
}

func TestSearcher_SeekCandidatesRyanmen(t *testing.T) {
	s := NewSearcher()
	hand14 := tilesOf(
		Man1, Man2, Man3, Pin1, Pin2, Pin3, So1, So2, So3,
		Man7, Man8, East, East, So1,
	)
	cands := s.SeekCandidates(hand14, 0, nil)
	found := false
	for _, c := range cands {
		if c.DiscardType == So1 {
			found = true
			if len(c.Waits) != 2 {
				t.Fatalf("expected a two-sided wait discarding the extra So1, got %v", c.Waits)
			}
		}
	}
	if !found {
		t.Fatalf("expected discarding the extra So1 to appear as a tenpai candidate")
	}
}

func TestTile_T34StringRoundTrip(t *testing.T) {
	const wire = "1m2m3m4p5p6p7s8s9sewwd"
	kinds, err := ParseTileString(wire)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := FormatTileTypeString(kinds); got != wire {
		t.Fatalf("round trip mismatch: got %q want %q", got, wire)
	}
}
