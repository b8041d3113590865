package mahjong

import (
	"math/rand"

	"mahjongcore/internal/mlog"
	"mahjongcore/internal/ruleconfig"
)

// Game owns the four seats across an entire session and advances wind,
// round number, honba and dealer retention between deals. A Round only
// knows about the single deal it is playing; Game is what decides whether
// there is a next one.
type Game struct {
	players [4]*Player
	wall    *Wall
	searcher *Searcher
	evaluator *HandEvaluator
	rules   ruleconfig.Rules
	rng     *rand.Rand

	wind         TileType
	roundNum     int
	bonus        int
	dealerSeat   int
	riichiSticks int

	current *Round
	over    bool
}

// NewGame seeds a fresh session with four named seats and a deterministic
// RNG (pass a seeded *rand.Rand for reproducible deals).
func NewGame(names [4]string, rules ruleconfig.Rules, rng *rand.Rand) *Game {
	g := &Game{
		rules: rules,
		rng:   rng,
		wind:  East,
	}
	for i := 0; i < 4; i++ {
		g.players[i] = NewPlayer(names[i], i, rules.InitialPoints)
	}
	g.searcher = NewSearcher()
	g.evaluator = NewHandEvaluator(g.searcher, rules)
	return g
}

// StartNextRound deals a fresh Round and returns it. Call this once at game
// start and again every time the previous Round reports Finished.
func (g *Game) StartNextRound() (*Round, error) {
	if g.over {
		return nil, invalidAction("game is already over")
	}
	g.wall = NewWall(g.rng, g.rules.UseRedFives)
	g.wall.Reset()

	g.current = NewRound(RoundConfig{
		Players:      g.players,
		Wall:         g.wall,
		Searcher:     g.searcher,
		Evaluator:    g.evaluator,
		Rules:        g.rules,
		Wind:         g.wind,
		RoundNum:     g.roundNum + 1,
		Bonus:        g.bonus,
		RiichiSticks: g.riichiSticks,
		DealerSeat:   g.dealerSeat,
	})
	if err := g.current.DealHands(); err != nil {
		return nil, err
	}
	return g.current, nil
}

// Advance folds a finished Round's outcome back into session state
// (honba, dealer rotation, wind progression, riichi sticks carried to the
// next deal) and reports whether the game has ended.
func (g *Game) Advance() (bool, error) {
	if g.current == nil || !g.current.Finished() {
		return false, invalidAction("current round has not finished")
	}
	r := g.current
	g.riichiSticks = r.RiichiSticks()

	for i, p := range g.players {
		p.Points = r.Points()[i]
	}

	for _, p := range g.players {
		if p.Points < g.rules.GameOverPoints {
			g.over = true
		}
	}

	if r.DealerRetains() {
		g.bonus++
	} else {
		g.bonus = 0
		g.dealerSeat = (g.dealerSeat + 1) % 4
		g.roundNum++
		if g.roundNum >= 4 {
			g.roundNum = 0
			g.wind = nextWind(g.wind)
		}
	}

	handsPlayed := windOrdinal(g.wind)*4 + g.roundNum
	if handsPlayed >= g.rules.HandsPerGame {
		g.over = true
	}
	if g.over {
		mlog.Info("game over: final points %v", g.Points())
	}
	return g.over, nil
}

// Points returns the current per-seat point totals.
func (g *Game) Points() [4]int {
	var p [4]int
	for i, pl := range g.players {
		p[i] = pl.Points
	}
	return p
}

// Over reports whether the session has concluded.
func (g *Game) Over() bool { return g.over }

// Situation summarizes the state a driver needs to label the next deal.
type Situation struct {
	Wind         TileType
	RoundNum     int
	Bonus        int
	DealerSeat   int
	RiichiSticks int
}

// CurrentSituation reports the wind/round/honba/dealer the next
// StartNextRound call will deal into.
func (g *Game) CurrentSituation() Situation {
	return Situation{Wind: g.wind, RoundNum: g.roundNum + 1, Bonus: g.bonus, DealerSeat: g.dealerSeat, RiichiSticks: g.riichiSticks}
}

func nextWind(w TileType) TileType {
	switch w {
	case East:
		return South
	case South:
		return West
	case West:
		return North
	default:
		return East
	}
}

func windOrdinal(w TileType) int {
	switch w {
	case East:
		return 0
	case South:
		return 1
	case West:
		return 2
	default:
		return 3
	}
}
