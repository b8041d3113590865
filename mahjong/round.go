package mahjong

import (
	"sort"

	"github.com/google/uuid"

	"mahjongcore/internal/mlog"
	"mahjongcore/internal/ruleconfig"
)

// RoundConfig seeds one deal: the four seats (which persist across rounds),
// a wall already reset for this deal, the shared oracle/evaluator, and the
// round-scoped state a Game controller hands down (wind, round number,
// honba, carried-over riichi sticks, dealer seat).
type RoundConfig struct {
	Players      [4]*Player
	Wall         *Wall
	Searcher     *Searcher
	Evaluator    *HandEvaluator
	Rules        ruleconfig.Rules
	Wind         TileType
	RoundNum     int
	Bonus        int
	RiichiSticks int
	DealerSeat   int
}

type pendingDiscardInfo struct {
	seat int
	tile Tile
}

type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingDiscardArbitration
	pendingChankan
)

// pendingState is the single deferred-continuation slot the engine carries
// between a driver call and the next: a tagged variant over what remains to
// be finished once the pending queries drain to empty.
type pendingState struct {
	kind      pendingKind
	kanSeat   int
	kanClosed bool
}

type kanCandidate struct {
	added bool
	tiles []Tile
}

// Round drives one deal from initial hands through win or draw. It is
// strictly single-threaded and cooperative: every exported method either
// completes a mutation and returns, or buffers queries onto the bus and
// waits for the next driver call.
type Round struct {
	id        string
	bus       *EventBus
	players   [4]*Player
	wall      *Wall
	searcher  *Searcher
	evaluator *HandEvaluator
	rules     ruleconfig.Rules

	wind         TileType
	roundNum     int
	bonus        int
	dealerSeat   int
	activeSeat   int
	remainingDraws int
	riichiSticks int

	anyCallsThisRound      bool
	discardCountThisRound  int
	seatDiscardCount       [4]int
	firstDiscardTile       [4]Tile

	pendingDiscard *pendingDiscardInfo
	ronEligible    []int
	pending        pendingState

	finished      bool
	dealerRetains bool
}

// NewRound builds a Round ready for DealHands.
func NewRound(cfg RoundConfig) *Round {
	return &Round{
		id:             uuid.NewString(),
		bus:            &EventBus{},
		players:        cfg.Players,
		wall:           cfg.Wall,
		searcher:       cfg.Searcher,
		evaluator:      cfg.Evaluator,
		rules:          cfg.Rules,
		wind:           cfg.Wind,
		roundNum:       cfg.RoundNum,
		bonus:          cfg.Bonus,
		dealerSeat:     cfg.DealerSeat,
		activeSeat:     cfg.DealerSeat,
		remainingDraws: 70,
		riichiSticks:   cfg.RiichiSticks,
	}
}

// DealHands deals 13 tiles to each seat, emits new_round, and draws the
// dealer's fourteenth tile.
func (r *Round) DealHands() error {
	for _, p := range r.players {
		p.ResetRound()
	}
	for i := 0; i < 4; i++ {
		tiles := make([]Tile, 0, 13)
		for n := 0; n < 13; n++ {
			t, err := r.wall.DrawOrPreset()
			if err != nil {
				return err
			}
			tiles = append(tiles, t)
		}
		r.players[i].Hand = tiles
		r.players[i].RecalculateShantenAndUkeire(r.searcher)
	}
	var hands [4][]Tile
	for i, p := range r.players {
		hands[i] = append([]Tile(nil), p.Hand...)
	}
	r.bus.Emit(NewRoundEvent{Wind: r.wind, Round: r.roundNum, Bonus: r.bonus, Hands: hands})
	mlog.Info("round %s dealt: wind=%s round=%d bonus=%d dealer=%d", r.id, r.wind, r.roundNum, r.bonus, r.dealerSeat)
	return r.DrawTile(r.dealerSeat, false)
}

// ID returns this round's unique identifier, stable for its whole lifetime.
func (r *Round) ID() string { return r.id }

// PopEvents drains every fact event emitted since the last call.
func (r *Round) PopEvents() []Event { return r.bus.PopEvents() }

// PendingQueries returns the currently buffered queries.
func (r *Round) PendingQueries() []QueryEvent { return r.bus.PendingQueries() }

// HasPendingQueries reports whether the engine is suspended awaiting input.
func (r *Round) HasPendingQueries() bool { return r.bus.HasPendingQueries() }

// Finished reports whether the round has concluded (win or any draw).
func (r *Round) Finished() bool { return r.finished }

// DealerRetains reports whether the next round should be a bonus round with
// the same dealer (set once Finished is true).
func (r *Round) DealerRetains() bool { return r.dealerRetains }

// Points returns the current per-seat point totals.
func (r *Round) Points() [4]int {
	var p [4]int
	for i, pl := range r.players {
		p[i] = pl.Points
	}
	return p
}

// RiichiSticks returns the number of unclaimed riichi sticks carried by
// this round (to hand to the next round's RoundConfig on a draw).
func (r *Round) RiichiSticks() int { return r.riichiSticks }

// Bonus returns the current honba count.
func (r *Round) Bonus() int { return r.bonus }

// RunContinuation executes the deferred post-arbitration tail once every
// pending query has drained. It is a no-op if nothing is pending.
func (r *Round) RunContinuation() error {
	if r.bus.HasPendingQueries() {
		return invalidAction("queries still pending")
	}
	switch r.pending.kind {
	case pendingDiscardArbitration:
		return r.runPostDiscardContinuation()
	case pendingChankan:
		return r.finishPendingKan()
	default:
		return nil
	}
}

// DeclineCalls is the explicit "nobody calls" driver action: it clears
// whatever is currently buffered and runs the matching continuation.
func (r *Round) DeclineCalls() error {
	if r.pending.kind == pendingNone {
		return invalidAction("no pending calls to decline")
	}
	r.bus.ClearQueries()
	return r.RunContinuation()
}

// DeclineCall lets one seat decline its own pending query (ron, pon, kan,
// or chi) without disturbing any other seat's. This is what lets a lower-
// priority call through once the higher-priority one has been declined:
// seat A declining its ron clears only seat A's RonQuery, so seat B's
// pending pon on the same discard remains callable. The matching
// continuation only runs once every seat's query has drained this way.
func (r *Round) DeclineCall(seat int) error {
	if r.pending.kind == pendingNone {
		return invalidAction("no pending calls to decline")
	}
	declined := false
	for _, q := range r.bus.PendingQueries() {
		if q.ForPlayer(seat) != nil {
			declined = true
			break
		}
	}
	if !declined {
		return invalidAction("seat has no pending call to decline")
	}
	r.bus.RemoveQueriesForSeat(seat)
	if r.bus.HasPendingQueries() {
		return nil
	}
	return r.RunContinuation()
}

// SetTilePreset installs a queue of exact tiles, parsed from the wire tile
// string format, to be drawn in order ahead of weighted random draw.
func (r *Round) SetTilePreset(t34String string) error {
	kinds, err := ParseTileString(t34String)
	if err != nil {
		return invalidAction(err.Error())
	}
	r.wall.SetPreset(TileTypesToTiles(kinds))
	return nil
}

// DrawTile pulls one tile for seat (from the dead wall when deadWall is
// true), appends it to the hand, and issues every optional/mandatory query
// it opens up.
func (r *Round) DrawTile(seat int, deadWall bool) error {
	if r.remainingDraws == 0 {
		return r.resolveExhaustiveDraw()
	}
	if !deadWall || r.rules.DeadWallDrawsCountDown {
		r.remainingDraws--
	}

	var t Tile
	var err error
	if deadWall {
		t, err = r.wall.DrawKanTile()
	} else {
		t, err = r.wall.DrawOrPreset()
	}
	if err != nil {
		return r.resolveExhaustiveDraw()
	}

	p := r.players[seat]
	p.AddTile(t)
	p.LatestDraw = t
	p.HasLatestDraw = true
	p.LatestDrawWasDeadWall = deadWall
	p.RecalculateShantenAndUkeire(r.searcher)
	r.activeSeat = seat

	r.bus.Emit(TileEvent{Seat: seat, Tile: t})
	r.issueDrawQueries(seat)
	return nil
}

func (r *Round) issueDrawQueries(seat int) {
	p := r.players[seat]

	if len(p.Discards) == 0 && !r.anyCallsThisRound && countDistinctTerminalHonor(p.Hand) >= 9 {
		r.bus.EmitQuery(DrawQuery{Seat: seat})
	}

	ctx := r.evalContextFor(seat, true)
	ctx.IsHaitei = r.remainingDraws == 0 && !p.LatestDrawWasDeadWall
	if len(p.Discards) == 0 && !r.anyCallsThisRound {
		if r.isDealer(seat) {
			ctx.IsTenhou = true
		} else {
			ctx.IsChiihou = true
		}
	}
	if _, err := r.evaluator.Evaluate(p.Hand, p.LatestDraw, p.Melds, r.wall.DoraIndicators(), nil, ctx); err == nil {
		r.bus.EmitQuery(TsumoQuery{Seat: seat})
	}

	for _, cand := range r.kanCandidates(seat) {
		r.bus.EmitQuery(ClosedKanQuery{Seat: seat, Added: cand.added, Tiles: cand.tiles})
	}

	if rq, ok := r.buildRiichiQuery(seat); ok {
		r.bus.EmitQuery(rq)
	}

	r.bus.EmitQuery(r.buildDiscardQuery(seat))
}

// DiscardTile validates and applies a discard (optionally declaring
// riichi), then opens call arbitration for the other three seats.
func (r *Round) DiscardTile(seat int, t Tile, riichi bool) error {
	if seat != r.activeSeat {
		return invalidAction("not this seat's turn")
	}
	p := r.players[seat]
	if !p.HasTile(t) {
		return invalidAction("tile not in hand")
	}
	if p.Riichi && t != p.LatestDraw {
		return invalidAction("riichi locks the discard to the drawn tile")
	}
	for _, k := range p.KuikaeForbidden {
		if t.Type() == k {
			return invalidAction("kuikae: this kind cannot be discarded this turn")
		}
	}
	if riichi {
		if p.IsOpen() {
			return invalidAction("cannot riichi with an open hand")
		}
		if p.Riichi {
			return invalidAction("already in riichi")
		}
		if p.Points < 1000 {
			return invalidAction("insufficient points to riichi")
		}
		if r.remainingDraws < 4 {
			return invalidAction("not enough draws left to riichi")
		}
		h13 := HistogramFromTiles(removeOne(p.Hand, t))
		if r.searcher.ShantenAll(h13, p.FixedMeldCount()) != 0 {
			return invalidAction("that discard does not leave the hand tenpai")
		}
	}

	wasFuriten := p.IsFuriten()
	isTsumogiri := p.HasLatestDraw && p.LatestDraw == t
	p.RemoveTile(t)
	p.Discards = append(p.Discards, Discard{Tile: t, IsTsumogiri: isTsumogiri, IsRiichi: riichi, CalledBy: NoSeat})
	r.bus.Emit(DiscardEvent{Seat: seat, Tile: t, IsTsumogiri: isTsumogiri, IsRiichi: riichi})

	if !p.Riichi {
		p.TempFuriten = false
	}
	p.Ippatsu = false
	p.KuikaeForbidden = nil
	p.LatestDrawWasDeadWall = false
	p.RecalculateShantenAndUkeire(r.searcher)

	r.discardCountThisRound++
	r.seatDiscardCount[seat]++
	if r.seatDiscardCount[seat] == 1 {
		r.firstDiscardTile[seat] = t
	}

	if riichi {
		p.Riichi = true
		p.Points -= 1000
		r.riichiSticks++
		if r.seatDiscardCount[seat] == 1 && !r.anyCallsThisRound {
			p.DoubleRiichi = true
		}
	}

	if r.checkFourWindAbort() {
		r.emitAbortiveDraw(DrawFourWind)
		return nil
	}

	nowFuriten := p.IsFuriten()
	if nowFuriten != wasFuriten {
		r.bus.Emit(FuritenEvent{Seat: seat, IsFuriten: nowFuriten})
	}

	if p.HasPendingDora {
		ind, err := r.wall.RevealDoraIndicator()
		if err == nil {
			r.bus.Emit(DoraEvent{Tile: ind})
		}
		p.HasPendingDora = false
	}

	r.pendingDiscard = &pendingDiscardInfo{seat: seat, tile: t}
	r.ronEligible = nil
	r.issueCallArbitrationQueries(seat, t)
	if r.bus.HasPendingQueries() {
		r.pending = pendingState{kind: pendingDiscardArbitration}
		return nil
	}
	return r.runPostDiscardContinuation()
}

func (r *Round) issueCallArbitrationQueries(discarder int, tile Tile) {
	kind := tile.Type()
	fourRiichi := r.allFourInRiichi()
	suppressNonRon := fourRiichi || (r.totalKans() >= 4 && !r.allKansOneSeat())

	for offset := 1; offset <= 3; offset++ {
		seat := (discarder + offset) % 4
		p := r.players[seat]

		if !p.IsFuriten() {
			ctx := r.evalContextFor(seat, false)
			hand14 := append(append([]Tile(nil), p.Hand...), tile)
			if _, err := r.evaluator.Evaluate(hand14, tile, p.Melds, r.wall.DoraIndicators(), nil, ctx); err == nil {
				r.bus.EmitQuery(RonQuery{Seat: seat, FromSeat: discarder})
				r.ronEligible = append(r.ronEligible, seat)
			} else if IsKind(err, ErrNoYaku) {
				p.TempFuriten = true
			}
		}

		if suppressNonRon || p.Riichi || r.remainingDraws <= 0 {
			continue
		}

		if countType(p.Hand, kind) >= 2 {
			if choices := ponChoices(p.Hand, kind); len(choices) > 0 {
				r.bus.EmitQuery(CallQuery{Seat: seat, Kind_: CallPon, Choices: choices, FromSeat: discarder, DiscardIdx: len(r.players[discarder].Discards) - 1})
			}
		}
		if countType(p.Hand, kind) >= 3 && r.totalKans() < 4 {
			if choice := kanChoice(p.Hand, kind); len(choice) == 3 {
				r.bus.EmitQuery(CallQuery{Seat: seat, Kind_: CallOpenKan, Choices: [][]Tile{choice}, FromSeat: discarder, DiscardIdx: len(r.players[discarder].Discards) - 1})
			}
		}
		if offset == 1 && kind.IsNumbered() {
			if choices := chiChoices(p.Hand, kind); len(choices) > 0 {
				r.bus.EmitQuery(CallQuery{Seat: seat, Kind_: CallChi, Choices: choices, FromSeat: discarder, DiscardIdx: len(r.players[discarder].Discards) - 1})
			}
		}
	}
}

func (r *Round) runPostDiscardContinuation() error {
	if r.pendingDiscard == nil {
		return invalidAction("no discard pending")
	}
	discarder := r.pendingDiscard.seat
	r.applyDeclinedRonFuriten()
	r.pending = pendingState{}
	r.pendingDiscard = nil

	if r.allFourInRiichi() {
		r.emitAbortiveDraw(DrawFourRiichi)
		return nil
	}
	if r.totalKans() == 4 && !r.allKansOneSeat() {
		r.emitAbortiveDraw(DrawFourKan)
		return nil
	}
	return r.DrawTile((discarder+1)%4, false)
}

func (r *Round) applyDeclinedRonFuriten() {
	for _, seat := range r.ronEligible {
		p := r.players[seat]
		if !p.TempFuriten {
			p.TempFuriten = true
			r.bus.Emit(FuritenEvent{Seat: seat, IsFuriten: true})
		}
	}
	r.ronEligible = nil
}

func (r *Round) hasPendingRonQuery() bool {
	for _, q := range r.bus.PendingQueries() {
		if _, ok := q.(RonQuery); ok {
			return true
		}
	}
	return false
}

func (r *Round) hasPendingCallKind(kind CallQueryKind) bool {
	for _, q := range r.bus.PendingQueries() {
		if cq, ok := q.(CallQuery); ok && cq.Kind_ == kind {
			return true
		}
	}
	return false
}

// CallChi executes a sequence call by the seat immediately clockwise from
// the discarder, using handTiles (the two tiles supplied from hand; the
// called tile completes the third).
func (r *Round) CallChi(caller int, handTiles []Tile) error {
	if r.pendingDiscard == nil {
		return invalidAction("no discard to call")
	}
	discarder := r.pendingDiscard.seat
	calledTile := r.pendingDiscard.tile
	if caller != (discarder+1)%4 {
		return invalidAction("only the next seat may chi")
	}
	if r.hasPendingRonQuery() {
		return invalidAction("ron takes priority over chi")
	}
	if r.hasPendingCallKind(CallPon) || r.hasPendingCallKind(CallOpenKan) {
		return invalidAction("pon/kan takes priority over chi")
	}
	if len(handTiles) != 2 {
		return invalidAction("chi needs exactly two hand tiles")
	}
	p := r.players[caller]
	for _, t := range handTiles {
		if !p.HasTile(t) {
			return invalidAction("tile not in hand")
		}
	}
	a, b := handTiles[0].Type(), handTiles[1].Type()
	calledKind := calledTile.Type()
	if a.Suit() == -1 || a.Suit() != b.Suit() || a.Suit() != calledKind.Suit() {
		return invalidAction("chi tiles must share a suit")
	}
	nums := []int{a.Number(), b.Number(), calledKind.Number()}
	sort.Ints(nums)
	if nums[1] != nums[0]+1 || nums[2] != nums[1]+1 {
		return invalidAction("not a valid sequence")
	}

	for _, t := range handTiles {
		p.RemoveTile(t)
	}
	meld := NewCalledMeld(Chi, append(append([]Tile(nil), handTiles...), calledTile), discarder, calledTile)
	p.Melds = append(p.Melds, meld)
	r.markDiscardCalled(discarder, calledTile, caller)
	r.bus.Emit(CallEvent{Seat: caller, Meld: meld})
	r.clearIppatsuAll()
	r.anyCallsThisRound = true
	p.KuikaeForbidden = kuikaeForbidden([2]TileType{a, b}, calledKind)
	r.activeSeat = caller
	r.bus.ClearQueries()
	r.applyDeclinedRonFuriten()
	r.pendingDiscard = nil
	r.pending = pendingState{}
	p.RecalculateShantenAndUkeire(r.searcher)
	r.bus.EmitQuery(r.buildDiscardQuery(caller))
	return nil
}

// CallPon executes a triplet call by any other seat.
func (r *Round) CallPon(caller int, tiles []Tile) error {
	if r.pendingDiscard == nil {
		return invalidAction("no discard to call")
	}
	discarder := r.pendingDiscard.seat
	calledTile := r.pendingDiscard.tile
	if caller == discarder {
		return invalidAction("cannot call own discard")
	}
	if r.hasPendingRonQuery() {
		return invalidAction("ron takes priority over pon")
	}
	if len(tiles) != 2 {
		return invalidAction("pon needs exactly two hand tiles")
	}
	kind := calledTile.Type()
	p := r.players[caller]
	for _, t := range tiles {
		if t.Type() != kind || !p.HasTile(t) {
			return invalidAction("invalid pon tiles")
		}
	}

	for _, t := range tiles {
		p.RemoveTile(t)
	}
	meld := NewCalledMeld(Pon, append(append([]Tile(nil), tiles...), calledTile), discarder, calledTile)
	p.Melds = append(p.Melds, meld)
	r.markDiscardCalled(discarder, calledTile, caller)
	r.bus.Emit(CallEvent{Seat: caller, Meld: meld})
	r.clearIppatsuAll()
	r.anyCallsThisRound = true
	p.KuikaeForbidden = []TileType{kind}
	r.activeSeat = caller
	r.bus.ClearQueries()
	r.applyDeclinedRonFuriten()
	r.pendingDiscard = nil
	r.pending = pendingState{}
	p.RecalculateShantenAndUkeire(r.searcher)
	r.bus.EmitQuery(r.buildDiscardQuery(caller))
	return nil
}

// CallOpenKan executes a quad call directly off a discard.
func (r *Round) CallOpenKan(caller int, tiles []Tile) error {
	if r.pendingDiscard == nil {
		return invalidAction("no discard to call")
	}
	discarder := r.pendingDiscard.seat
	calledTile := r.pendingDiscard.tile
	if caller == discarder {
		return invalidAction("cannot call own discard")
	}
	if r.hasPendingRonQuery() {
		return invalidAction("ron takes priority over kan")
	}
	if len(tiles) != 3 {
		return invalidAction("open kan needs exactly three hand tiles")
	}
	kind := calledTile.Type()
	p := r.players[caller]
	for _, t := range tiles {
		if t.Type() != kind || !p.HasTile(t) {
			return invalidAction("invalid kan tiles")
		}
	}
	if r.totalKans() >= 4 {
		return invalidAction("four kans already called")
	}

	for _, t := range tiles {
		p.RemoveTile(t)
	}
	meld := NewCalledMeld(OpenKan, append(append([]Tile(nil), tiles...), calledTile), discarder, calledTile)
	p.Melds = append(p.Melds, meld)
	r.markDiscardCalled(discarder, calledTile, caller)
	r.bus.Emit(CallEvent{Seat: caller, Meld: meld})
	r.clearIppatsuAll()
	r.anyCallsThisRound = true
	p.HasPendingDora = true
	r.activeSeat = caller
	r.bus.ClearQueries()
	r.applyDeclinedRonFuriten()
	r.pendingDiscard = nil
	r.pending = pendingState{}
	return r.DrawTile(caller, true)
}

// CallClosedOrAddedKan executes a kan on the drawing seat's own turn: a
// closed kan when tiles has all four copies from hand, or an added kan
// promoting an existing pon when tiles has the single matching hand copy.
func (r *Round) CallClosedOrAddedKan(seat int, tiles []Tile) error {
	if seat != r.activeSeat {
		return invalidAction("not this seat's turn")
	}
	p := r.players[seat]

	switch len(tiles) {
	case 4:
		kind := tiles[0].Type()
		for _, t := range tiles {
			if t.Type() != kind || !p.HasTile(t) {
				return invalidAction("invalid closed kan tiles")
			}
		}
		if p.Riichi {
			if !r.rules.RiichiAnkanAllowed {
				return invalidAction("closed kan forbidden while in riichi")
			}
			if r.rules.RiichiAnkanRequiresSameWait && !r.closedKanKeepsWait(seat, kind) {
				return invalidAction("closed kan would change the wait")
			}
		}
		if r.totalKans() >= 4 {
			return invalidAction("four kans already called")
		}
		for _, t := range tiles {
			p.RemoveTile(t)
		}
		meld := NewClosedKan(append([]Tile(nil), tiles...))
		p.Melds = append(p.Melds, meld)
		r.bus.Emit(CallEvent{Seat: seat, Meld: meld})
		r.clearIppatsuAll()
		r.anyCallsThisRound = true
		r.ronEligible = nil
		if r.chankanEligibleClosedKan(seat, kind) {
			r.issueChankanQueries(seat, tiles[0], true)
		}
		return r.afterKan(seat, true)

	case 1:
		kind := tiles[0].Type()
		idx := -1
		for i, m := range p.Melds {
			if m.Kind == Pon && len(m.Tiles) > 0 && m.Tiles[0].Type() == kind {
				idx = i
				break
			}
		}
		if idx == -1 {
			return invalidAction("no matching pon to promote")
		}
		if !p.HasTile(tiles[0]) {
			return invalidAction("tile not in hand")
		}
		p.RemoveTile(tiles[0])
		p.Melds[idx].PromoteToAddedKan(tiles[0])
		r.bus.Emit(CallEvent{Seat: seat, Meld: p.Melds[idx]})
		r.clearIppatsuAll()
		r.ronEligible = nil
		r.issueChankanQueries(seat, tiles[0], false)
		return r.afterKan(seat, false)

	default:
		return invalidAction("kan requires four tiles (closed) or one tile (added)")
	}
}

func (r *Round) afterKan(seat int, closed bool) error {
	if r.bus.HasPendingQueries() {
		r.pending = pendingState{kind: pendingChankan, kanSeat: seat, kanClosed: closed}
		return nil
	}
	r.applyDeclinedRonFuriten()
	return r.finishKanMutation(seat, closed)
}

func (r *Round) finishPendingKan() error {
	r.applyDeclinedRonFuriten()
	seat, closed := r.pending.kanSeat, r.pending.kanClosed
	r.pending = pendingState{}
	return r.finishKanMutation(seat, closed)
}

func (r *Round) finishKanMutation(seat int, closed bool) error {
	if closed {
		ind, err := r.wall.RevealDoraIndicator()
		if err == nil {
			r.bus.Emit(DoraEvent{Tile: ind})
		}
	} else {
		r.players[seat].HasPendingDora = true
	}
	return r.DrawTile(seat, true)
}

func (r *Round) issueChankanQueries(seat int, tile Tile, closedOnly bool) {
	kind := tile.Type()
	for i, p := range r.players {
		if i == seat || p.IsFuriten() {
			continue
		}
		var ok bool
		if closedOnly {
			h := p.Hand34()
			h[kind]++
			ok = IsAgariKokushi(h)
		} else {
			ctx := r.evalContextFor(i, false)
			ctx.IsChankan = true
			hand14 := append(append([]Tile(nil), p.Hand...), tile)
			_, err := r.evaluator.Evaluate(hand14, tile, p.Melds, r.wall.DoraIndicators(), nil, ctx)
			ok = err == nil
		}
		if ok {
			r.bus.EmitQuery(RonQuery{Seat: i, FromSeat: seat, IsChankan: true, ChankanTile: tile})
			r.ronEligible = append(r.ronEligible, i)
		}
	}
}

// Do9TileDraw resolves the nine-terminal abortive draw for seat.
func (r *Round) Do9TileDraw(seat int) error {
	p := r.players[seat]
	if len(p.Discards) != 0 || r.anyCallsThisRound {
		return invalidAction("nine-terminal draw is no longer available")
	}
	if countDistinctTerminalHonor(p.Hand) < 9 {
		return invalidAction("hand does not hold nine distinct terminals or honors")
	}
	r.emitAbortiveDraw(DrawNineTerminal)
	return nil
}

// DoTsumo resolves a self-draw win for seat using its latest draw.
func (r *Round) DoTsumo(seat int) error {
	p := r.players[seat]
	if !p.HasLatestDraw {
		return invalidAction("no tile drawn to tsumo with")
	}

	ctx := r.evalContextFor(seat, true)
	ctx.IsHaitei = r.remainingDraws == 0 && !p.LatestDrawWasDeadWall
	ctx.Honba = r.bonus
	ctx.Kyoutaku = r.riichiSticks
	if len(p.Discards) == 0 && !r.anyCallsThisRound {
		if r.isDealer(seat) {
			ctx.IsTenhou = true
		} else {
			ctx.IsChiihou = true
		}
	}
	if _, err := r.evaluator.Evaluate(p.Hand, p.LatestDraw, p.Melds, r.wall.DoraIndicators(), nil, ctx); err != nil {
		return err
	}

	var ura []Tile
	if p.Riichi {
		for i := 0; i < len(r.wall.DoraIndicators()); i++ {
			t, err := r.wall.RevealUraDoraIndicator()
			if err != nil {
				break
			}
			ura = append(ura, t)
		}
	}

	res, err := r.evaluator.Evaluate(p.Hand, p.LatestDraw, p.Melds, r.wall.DoraIndicators(), ura, ctx)
	if err != nil {
		return err
	}

	if r.isDealer(seat) {
		each := res.Cost.Main + res.Cost.MainBonus
		for i := range r.players {
			if i != seat {
				r.players[i].Points -= each
				r.players[seat].Points += each
			}
		}
	} else {
		dealerPay := res.Cost.Main + res.Cost.MainBonus
		r.players[r.dealerSeat].Points -= dealerPay
		r.players[seat].Points += dealerPay
		otherPay := res.Cost.Additional + res.Cost.AdditionalBonus
		for i := range r.players {
			if i != seat && i != r.dealerSeat {
				r.players[i].Points -= otherPay
				r.players[seat].Points += otherPay
			}
		}
	}
	r.players[seat].Points += r.riichiSticks * 1000
	r.riichiSticks = 0

	win := Win{
		Seat: seat, Hand: append([]Tile(nil), p.Hand...), Melds: append([]Meld(nil), p.Melds...),
		IsTsumo: true, DoraInds: r.wall.DoraIndicators(), UraInds: ura, Result: *res,
	}
	for i, pl := range r.players {
		win.Points[i] = pl.Points
	}
	r.bus.Emit(WinEvent{Win: win})

	r.finished = true
	r.dealerRetains = r.isDealer(seat)
	r.bus.ClearQueries()
	mlog.Info("round %s ends: seat %d tsumo, %d han %d fu", r.id, seat, res.Han, res.Fu)
	return nil
}

// DoRon resolves a win on discarder's tile for one or more callers
// (multi-ron), or a chankan robbery when chankanTile is non-nil.
func (r *Round) DoRon(callers []int, discarder int, chankanTile *Tile) error {
	if len(callers) == 0 {
		return invalidAction("ron needs at least one caller")
	}
	isChankan := chankanTile != nil
	var winTile Tile
	if isChankan {
		winTile = *chankanTile
		if !r.tileIsDiscarderKanTile(discarder, winTile) {
			return invalidAction("chankan tile does not belong to a kan meld")
		}
	} else {
		if r.pendingDiscard == nil || r.pendingDiscard.seat != discarder {
			return invalidAction("no discard to ron")
		}
		winTile = r.pendingDiscard.tile
	}
	for _, c := range callers {
		if c == discarder {
			return invalidAction("caller cannot equal discarder")
		}
		if r.players[c].IsFuriten() {
			return invalidAction("caller is furiten")
		}
		ctx := r.evalContextFor(c, false)
		ctx.IsChankan = isChankan
		hand14 := append(append([]Tile(nil), r.players[c].Hand...), winTile)
		if _, err := r.evaluator.Evaluate(hand14, winTile, r.players[c].Melds, r.wall.DoraIndicators(), nil, ctx); err != nil {
			return err
		}
	}

	recipient := callers[0]
	best := (recipient - discarder + 4) % 4
	for _, c := range callers[1:] {
		d := (c - discarder + 4) % 4
		if d < best {
			best, recipient = d, c
		}
	}

	if !isChankan && len(r.players[discarder].Discards) > 0 {
		last := r.players[discarder].Discards[len(r.players[discarder].Discards)-1]
		if last.IsRiichi {
			r.players[discarder].Points += 1000
			r.players[discarder].Riichi = false
			r.riichiSticks--
		}
	}

	anyRiichiCaller := false
	for _, c := range callers {
		if r.players[c].Riichi {
			anyRiichiCaller = true
		}
	}
	var uraIndicators []Tile
	if anyRiichiCaller {
		for i := 0; i < len(r.wall.DoraIndicators()); i++ {
			t, err := r.wall.RevealUraDoraIndicator()
			if err != nil {
				break
			}
			uraIndicators = append(uraIndicators, t)
		}
	}

	results := make(map[int]*WinResult, len(callers))
	for _, c := range callers {
		p := r.players[c]
		ctx := r.evalContextFor(c, false)
		ctx.IsChankan = isChankan
		if c == recipient {
			ctx.Honba = r.bonus
			ctx.Kyoutaku = r.riichiSticks
		} else {
			ctx.Honba = 0
			ctx.Kyoutaku = 0
		}
		var ura []Tile
		if p.Riichi {
			ura = uraIndicators
		}
		hand14 := append(append([]Tile(nil), p.Hand...), winTile)
		res, err := r.evaluator.Evaluate(hand14, winTile, p.Melds, r.wall.DoraIndicators(), ura, ctx)
		if err != nil {
			return err
		}
		results[c] = res
	}

	dealerAmongCallers := false
	for _, c := range callers {
		res := results[c]
		r.players[discarder].Points -= res.Cost.Total
		r.players[c].Points += res.Cost.Total
		if c == r.dealerSeat {
			dealerAmongCallers = true
		}

		win := Win{
			Seat: c, Hand: append([]Tile(nil), r.players[c].Hand...), Melds: append([]Meld(nil), r.players[c].Melds...),
			WinTile: winTile, DoraInds: r.wall.DoraIndicators(), UraInds: uraIndicators, Result: *res,
		}
		for i, pl := range r.players {
			win.Points[i] = pl.Points
		}
		r.bus.Emit(WinEvent{Win: win})
	}

	r.riichiSticks = 0
	r.finished = true
	r.dealerRetains = dealerAmongCallers
	r.bus.ClearQueries()
	mlog.Info("round %s ends: ron on seat %d by %v", r.id, discarder, callers)
	return nil
}

func (r *Round) resolveExhaustiveDraw() error {
	var tenpai [4]bool
	for i, p := range r.players {
		tenpai[i] = r.searcher.ShantenAll(p.Hand34(), p.FixedMeldCount()) == 0
	}

	var nagashi [4]bool
	anyNagashi := false
	for i, p := range r.players {
		ok := len(p.Discards) > 0
		for _, d := range p.Discards {
			if d.CalledBy != NoSeat || !d.Tile.Type().IsTerminalOrHonor() {
				ok = false
				break
			}
		}
		nagashi[i] = ok
		if ok {
			anyNagashi = true
		}
	}

	if anyNagashi {
		for i := range r.players {
			if !nagashi[i] {
				continue
			}
			if r.isDealer(i) {
				for j := range r.players {
					if j != i {
						r.players[j].Points -= 4000
						r.players[i].Points += 4000
					}
				}
			} else {
				for j := range r.players {
					if j == i {
						continue
					}
					amount := 2000
					r.players[j].Points -= amount
					r.players[i].Points += amount
				}
			}
		}
	} else {
		nTenpai := 0
		for _, t := range tenpai {
			if t {
				nTenpai++
			}
		}
		if nTenpai >= 1 && nTenpai <= 3 {
			gain := 3000 / nTenpai
			lose := 3000 / (4 - nTenpai)
			for i := range r.players {
				if tenpai[i] {
					r.players[i].Points += gain
				} else {
					r.players[i].Points -= lose
				}
			}
		}
	}

	var points [4]int
	var hands [4][]Tile
	for i, p := range r.players {
		points[i] = p.Points
		hands[i] = append([]Tile(nil), p.Hand...)
	}
	r.bus.Emit(DrawEvent{DrawKind: DrawExhaustive, Hands: hands, Tenpai: tenpai, Nagashi: nagashi, Points: points})

	r.finished = true
	r.dealerRetains = tenpai[r.dealerSeat]
	r.bus.ClearQueries()
	mlog.Info("round %s ends: exhaustive draw, dealer tenpai=%v", r.id, r.dealerRetains)
	return nil
}

func (r *Round) emitAbortiveDraw(kind DrawKind) {
	var hands [4][]Tile
	var points [4]int
	for i, p := range r.players {
		hands[i] = append([]Tile(nil), p.Hand...)
		points[i] = p.Points
	}
	r.bus.Emit(DrawEvent{DrawKind: kind, Hands: hands, Points: points})
	r.finished = true
	r.dealerRetains = true
	r.bus.ClearQueries()
	mlog.Info("round %s ends: abortive draw (%s)", r.id, kind)
}

func (r *Round) evalContextFor(seat int, isTsumo bool) EvalContext {
	p := r.players[seat]
	return EvalContext{
		RoundWind: r.wind,
		SeatWind:  r.seatWind(seat),
		IsTsumo:   isTsumo,
		IsRiichi:  p.Riichi, IsDoubleRiichi: p.DoubleRiichi, IsIppatsu: p.Ippatsu,
		IsDealer: r.isDealer(seat),
		IsRinshan: isTsumo && p.HasLatestDraw && p.LatestDrawWasDeadWall,
		IsHoutei: !isTsumo && r.remainingDraws == 0,
		Honba:    r.bonus,
		Kyoutaku: r.riichiSticks,
	}
}

func (r *Round) seatWind(seat int) TileType {
	return East + TileType((seat-r.dealerSeat+4)%4)
}

func (r *Round) isDealer(seat int) bool { return seat == r.dealerSeat }

func (r *Round) totalKans() int {
	n := 0
	for _, p := range r.players {
		for _, m := range p.Melds {
			if m.IsKan() {
				n++
			}
		}
	}
	return n
}

func (r *Round) allKansOneSeat() bool {
	owner := -1
	for i, p := range r.players {
		for _, m := range p.Melds {
			if m.IsKan() {
				if owner == -1 {
					owner = i
				} else if owner != i {
					return false
				}
			}
		}
	}
	return true
}

func (r *Round) allFourInRiichi() bool {
	for _, p := range r.players {
		if !p.Riichi {
			return false
		}
	}
	return true
}

func (r *Round) checkFourWindAbort() bool {
	if r.anyCallsThisRound || r.discardCountThisRound != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if r.seatDiscardCount[i] != 1 {
			return false
		}
	}
	kind := r.firstDiscardTile[0].Type()
	if kind < East || kind > North {
		return false
	}
	for i := 1; i < 4; i++ {
		if r.firstDiscardTile[i].Type() != kind {
			return false
		}
	}
	return true
}

func (r *Round) clearIppatsuAll() {
	for _, p := range r.players {
		p.Ippatsu = false
	}
}

func (r *Round) markDiscardCalled(discarder int, tile Tile, caller int) {
	ds := r.players[discarder].Discards
	for i := len(ds) - 1; i >= 0; i-- {
		if ds[i].Tile == tile && ds[i].CalledBy == NoSeat {
			ds[i].CalledBy = caller
			return
		}
	}
}

func (r *Round) tileIsDiscarderKanTile(discarder int, tile Tile) bool {
	for _, m := range r.players[discarder].Melds {
		if !m.IsKan() {
			continue
		}
		for _, t := range m.Tiles {
			if t == tile {
				return true
			}
		}
	}
	return false
}

func (r *Round) chankanEligibleClosedKan(seat int, kind TileType) bool {
	if !r.rules.ChankanOnClosedKanForKokushi || !isKokushiType(kind) {
		return false
	}
	for i, p := range r.players {
		if i == seat {
			continue
		}
		h := p.Hand34()
		h[kind]++
		if IsAgariKokushi(h) {
			return true
		}
	}
	return false
}

func (r *Round) closedKanKeepsWait(seat int, kind TileType) bool {
	p := r.players[seat]
	before := p.Hand34()
	fixed := p.FixedMeldCount()
	pre := before
	if p.HasLatestDraw {
		pre[p.LatestDraw.Type()]--
	}
	waitsBefore, _ := r.searcher.WaitsAndUkeire(pre, fixed, nil)
	after := before
	after[kind] -= 4
	waitsAfter, _ := r.searcher.WaitsAndUkeire(after, fixed+1, nil)
	return sameTileTypeSet(waitsBefore, waitsAfter)
}

func (r *Round) kanCandidates(seat int) []kanCandidate {
	p := r.players[seat]
	if p.Riichi && !r.rules.RiichiAnkanAllowed {
		return nil
	}
	h, byType := Hand34FromTiles(p.Hand)
	var out []kanCandidate
	for k := TileType(0); k < NumTileTypes; k++ {
		if h[k] != 4 {
			continue
		}
		if p.Riichi && r.rules.RiichiAnkanRequiresSameWait && !r.closedKanKeepsWait(seat, k) {
			continue
		}
		if r.totalKans() >= 4 {
			continue
		}
		out = append(out, kanCandidate{added: false, tiles: append([]Tile(nil), byType[k]...)})
	}
	if !p.Riichi {
		for _, m := range p.Melds {
			if m.Kind != Pon {
				continue
			}
			kind := m.Tiles[0].Type()
			if len(byType[kind]) > 0 && r.totalKans() < 4 {
				out = append(out, kanCandidate{added: true, tiles: []Tile{byType[kind][0]}})
			}
		}
	}
	return out
}

func (r *Round) buildDiscardQuery(seat int) DiscardQuery {
	p := r.players[seat]
	var allowed []Tile
	if p.Riichi {
		allowed = []Tile{p.LatestDraw}
	} else {
		forbidden := map[TileType]bool{}
		for _, k := range p.KuikaeForbidden {
			forbidden[k] = true
		}
		for _, t := range p.Hand {
			if !forbidden[t.Type()] {
				allowed = append(allowed, t)
			}
		}
	}
	waits := map[Tile][]TileType{}
	for _, c := range r.searcher.SeekCandidates(p.Hand, p.FixedMeldCount(), nil) {
		for _, t := range c.DiscardOptions {
			waits[t] = c.Waits
		}
	}
	return DiscardQuery{Seat: seat, Allowed: allowed, Waits: waits}
}

func (r *Round) buildRiichiQuery(seat int) (RiichiQuery, bool) {
	p := r.players[seat]
	if p.IsOpen() || p.Riichi || p.Points < 1000 || r.remainingDraws < 4 {
		return RiichiQuery{}, false
	}
	cands := r.searcher.SeekCandidates(p.Hand, 0, nil)
	if len(cands) == 0 {
		return RiichiQuery{}, false
	}
	var allowed []Tile
	waits := map[Tile][]TileType{}
	for _, c := range cands {
		for _, t := range c.DiscardOptions {
			allowed = append(allowed, t)
			waits[t] = c.Waits
		}
	}
	return RiichiQuery{Seat: seat, Allowed: allowed, Waits: waits}, true
}

func countDistinctTerminalHonor(hand []Tile) int {
	seen := map[TileType]bool{}
	for _, t := range hand {
		if t.Type().IsTerminalOrHonor() {
			seen[t.Type()] = true
		}
	}
	return len(seen)
}

func countType(hand []Tile, kind TileType) int {
	n := 0
	for _, t := range hand {
		if t.Type() == kind {
			n++
		}
	}
	return n
}

func removeOne(tiles []Tile, t Tile) []Tile {
	out := make([]Tile, 0, len(tiles))
	removed := false
	for _, x := range tiles {
		if !removed && x == t {
			removed = true
			continue
		}
		out = append(out, x)
	}
	return out
}

func sameTileTypeSet(a, b []TileType) bool {
	if len(a) != len(b) {
		return false
	}
	seen := map[TileType]bool{}
	for _, x := range a {
		seen[x] = true
	}
	for _, x := range b {
		if !seen[x] {
			return false
		}
	}
	return true
}

func uniqueCopiesFirst(tiles []Tile) []Tile {
	var out []Tile
	haveRed, havePlain := false, false
	for _, t := range tiles {
		if t.Type().IsFive() && t.CopyIndex() == 0 {
			if !haveRed {
				out = append(out, t)
				haveRed = true
			}
		} else if !havePlain {
			out = append(out, t)
			havePlain = true
		}
	}
	return out
}

func chiChoices(hand []Tile, calledKind TileType) [][]Tile {
	if !calledKind.IsNumbered() {
		return nil
	}
	_, byType := Hand34FromTiles(hand)
	n := calledKind.Number()
	base := calledKind - TileType(n-1)

	var out [][]Tile
	tryPair := func(lo, hi int) {
		if lo < 1 || hi > 9 {
			return
		}
		ka, kb := base+TileType(lo-1), base+TileType(hi-1)
		copA, copB := uniqueCopiesFirst(byType[ka]), uniqueCopiesFirst(byType[kb])
		for _, ta := range copA {
			for _, tb := range copB {
				out = append(out, []Tile{ta, tb})
			}
		}
	}
	tryPair(n-2, n-1)
	tryPair(n-1, n+1)
	tryPair(n+1, n+2)
	return out
}

func ponChoices(hand []Tile, kind TileType) [][]Tile {
	_, byType := Hand34FromTiles(hand)
	var red Tile
	hasRed := false
	var plains []Tile
	for _, t := range byType[kind] {
		if t.Type().IsFive() && t.CopyIndex() == 0 {
			red, hasRed = t, true
		} else {
			plains = append(plains, t)
		}
	}
	var out [][]Tile
	if len(plains) >= 2 {
		out = append(out, []Tile{plains[0], plains[1]})
	}
	if hasRed && len(plains) >= 1 {
		out = append(out, []Tile{red, plains[0]})
	}
	return out
}

func kanChoice(hand []Tile, kind TileType) []Tile {
	_, byType := Hand34FromTiles(hand)
	return append([]Tile(nil), byType[kind]...)
}

// kuikaeForbidden returns the t34 kinds a chi caller may not discard this
// turn: the called kind always, plus (for a ryanmen-shaped call) the
// symmetric kind on the wait's other side.
func kuikaeForbidden(handKinds [2]TileType, calledKind TileType) []TileType {
	lo, hi := handKinds[0], handKinds[1]
	if hi < lo {
		lo, hi = hi, lo
	}
	out := []TileType{calledKind}
	if hi != lo+1 {
		return out
	}
	switch {
	case calledKind == hi+1:
		if lo.Number() > 1 {
			out = append(out, lo-1)
		}
	case calledKind == lo-1:
		if hi.Number() < 9 {
			out = append(out, hi+1)
		}
	}
	return out
}
