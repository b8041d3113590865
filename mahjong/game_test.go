package mahjong

import (
	"math/rand"
	"testing"

	"mahjongcore/internal/ruleconfig"
)

func TestNextWindAndOrdinal(t *testing.T) {
	order := []TileType{East, South, West, North, East}
	for i := 0; i < len(order)-1; i++ {
		if got := nextWind(order[i]); got != order[i+1] {
			t.Fatalf("nextWind(%v) = %v, want %v", order[i], got, order[i+1])
		}
	}
	for i, w := range []TileType{East, South, West, North} {
		if windOrdinal(w) != i {
			t.Fatalf("windOrdinal(%v) = %d, want %d", w, windOrdinal(w), i)
		}
	}
}

func TestGame_AdvanceDealerRotation(t *testing.T) {
	rules := ruleconfig.Default()
	rng := rand.New(rand.NewSource(1))
	g := NewGame([4]string{"A", "B", "C", "D"}, rules, rng)

	r, err := g.StartNextRound()
	if err != nil {
		t.Fatalf("StartNextRound failed: %v", err)
	}
	// Non-dealer win: dealer rotates, round number advances, honba resets.
	r.finished = true
	r.dealerRetains = false
	r.players[1].Points += 1000

	over, err := g.Advance()
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if over {
		t.Fatalf("game should not be over after one hand")
	}
	sit := g.CurrentSituation()
	if sit.DealerSeat != 1 {
		t.Fatalf("expected dealer to rotate to seat 1, got %d", sit.DealerSeat)
	}
	if sit.Bonus != 0 {
		t.Fatalf("expected honba to reset to 0 on dealer rotation, got %d", sit.Bonus)
	}
	if sit.RoundNum != 2 {
		t.Fatalf("expected round number to advance to 2, got %d", sit.RoundNum)
	}
	if g.Points()[1] != rules.InitialPoints+1000 {
		t.Fatalf("expected seat 1's points to carry over, got %d", g.Points()[1])
	}
}

func TestGame_AdvanceDealerRetainsAddsHonba(t *testing.T) {
	rules := ruleconfig.Default()
	rng := rand.New(rand.NewSource(1))
	g := NewGame([4]string{"A", "B", "C", "D"}, rules, rng)

	r, err := g.StartNextRound()
	if err != nil {
		t.Fatalf("StartNextRound failed: %v", err)
	}
	r.finished = true
	r.dealerRetains = true

	if _, err := g.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	sit := g.CurrentSituation()
	if sit.DealerSeat != 0 {
		t.Fatalf("dealer should stay at seat 0 on a bonus round, got %d", sit.DealerSeat)
	}
	if sit.Bonus != 1 {
		t.Fatalf("expected honba to increment to 1, got %d", sit.Bonus)
	}
	if sit.RoundNum != 1 {
		t.Fatalf("round number must not advance on a dealer-retain round, got %d", sit.RoundNum)
	}
}

func TestGame_AdvanceEndsGameOnLowPoints(t *testing.T) {
	rules := ruleconfig.Default()
	rng := rand.New(rand.NewSource(1))
	g := NewGame([4]string{"A", "B", "C", "D"}, rules, rng)

	r, err := g.StartNextRound()
	if err != nil {
		t.Fatalf("StartNextRound failed: %v", err)
	}
	r.finished = true
	r.dealerRetains = false
	r.players[2].Points = rules.GameOverPoints - 1

	over, err := g.Advance()
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if !over {
		t.Fatalf("expected the game to end once a seat drops below GameOverPoints")
	}
	if !g.Over() {
		t.Fatalf("Over() should reflect the same conclusion as Advance's return value")
	}
}

func TestGame_AdvanceEndsGameAfterHandsPerGame(t *testing.T) {
	rules := ruleconfig.Default()
	rules.HandsPerGame = 1
	rng := rand.New(rand.NewSource(1))
	g := NewGame([4]string{"A", "B", "C", "D"}, rules, rng)

	r, err := g.StartNextRound()
	if err != nil {
		t.Fatalf("StartNextRound failed: %v", err)
	}
	r.finished = true
	r.dealerRetains = false

	over, err := g.Advance()
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if !over {
		t.Fatalf("expected the game to end once HandsPerGame hands have been played")
	}
}

func TestGame_AdvanceBeforeFinishedIsAnError(t *testing.T) {
	rules := ruleconfig.Default()
	rng := rand.New(rand.NewSource(1))
	g := NewGame([4]string{"A", "B", "C", "D"}, rules, rng)

	if _, err := g.StartNextRound(); err != nil {
		t.Fatalf("StartNextRound failed: %v", err)
	}
	if _, err := g.Advance(); err == nil {
		t.Fatalf("expected Advance to reject an unfinished round")
	}
}
