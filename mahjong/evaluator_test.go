package mahjong

import (
	"testing"

	"mahjongcore/internal/ruleconfig"
)

func newTestEvaluator() *HandEvaluator {
	rules := ruleconfig.Default()
	rules.UseRedFives = false
	return NewHandEvaluator(NewSearcher(), rules)
}

func TestEvaluator_RiichiTsumoSimpleHand(t *testing.T) {
	e := newTestEvaluator()
	// 123m 456m 789m 123p 55s, tsumo on the pair's second 5s.
	concealed := tilesOf(
		Man1, Man2, Man3, Man4, Man5, Man6, Man7, Man8, Man9,
		Pin1, Pin2, Pin3, So5, So5,
	)
	winTile := concealed[len(concealed)-1]
	ctx := EvalContext{IsTsumo: true, IsRiichi: true, RoundWind: East, SeatWind: East}

	res, err := e.Evaluate(concealed, winTile, nil, nil, nil, ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Han < 2 {
		t.Fatalf("expected at least riichi + menzen tsumo (2 han), got %d: %+v", res.Han, res.Yaku)
	}
	foundRiichi := false
	for _, y := range res.Yaku {
		if y.Name == "Riichi" {
			foundRiichi = true
		}
	}
	if !foundRiichi {
		t.Fatalf("expected a Riichi yaku entry, got %+v", res.Yaku)
	}
}

func TestEvaluator_NoYakuFailsClosed(t *testing.T) {
	e := newTestEvaluator()
	// 123m 456m 123p 789p 55s, ron on the 5s (a tanki wait, so no pinfu),
	// no riichi and no other yaku: it should be rejected as no-yaku.
	concealed := tilesOf(
		Man1, Man2, Man3, Man4, Man5, Man6, Pin7, Pin8, Pin9,
		Pin1, Pin2, Pin3, So5, So5,
	)
	winTile := concealed[len(concealed)-1]
	ctx := EvalContext{IsTsumo: false, RoundWind: East, SeatWind: South}

	_, err := e.Evaluate(concealed, winTile, nil, nil, nil, ctx)
	if err == nil {
		t.Fatalf("expected a no-yaku error for a yaku-less ron")
	}
	re, ok := err.(*RuleError)
	if !ok || re.Kind != ErrNoYaku {
		t.Fatalf("expected ErrNoYaku, got %v", err)
	}
}

func TestEvaluator_Chiitoi(t *testing.T) {
	e := newTestEvaluator()
	concealed := tilesOf(
		Man1, Man1, Man2, Man2, Man3, Man3,
		Pin1, Pin1, Pin2, Pin2, So1, So1, East, East,
	)
	winTile := concealed[len(concealed)-1]
	ctx := EvalContext{IsTsumo: true}

	res, err := e.Evaluate(concealed, winTile, nil, nil, nil, ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Fu != 25 {
		t.Fatalf("chiitoi must always score 25 fu, got %d", res.Fu)
	}
	if res.Han < 2 {
		t.Fatalf("expected at least the chiitoi yaku's 2 han, got %d", res.Han)
	}
}

func TestEvaluator_Kokushi(t *testing.T) {
	e := newTestEvaluator()
	// The pair (1m) is already held; the win is on Red, a single wait.
	concealed := tilesOf(
		Man1, Man1, Man9, Pin1, Pin9, So1, So9,
		East, South, West, North, White, Green, Red,
	)
	winTile := concealed[len(concealed)-1]
	ctx := EvalContext{IsTsumo: true}

	res, err := e.Evaluate(concealed, winTile, nil, nil, nil, ctx)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Han != 13 {
		t.Fatalf("expected a single (non-double-wait) kokushi to score 13 han, got %d", res.Han)
	}
	if res.Cost.YakuLevel != "yakuman" {
		t.Fatalf("expected yakuman cost level, got %q", res.Cost.YakuLevel)
	}
}
