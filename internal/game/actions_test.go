package game

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dkarger/felt/internal/catalog"
	"github.com/dkarger/felt/internal/deck"
	"github.com/dkarger/felt/internal/effects"
	"github.com/dkarger/felt/internal/poker"
	"github.com/dkarger/felt/internal/rng"
	"github.com/dkarger/felt/internal/shop"
)

func newTestEngine(t *testing.T, seed uint64) *Engine {
	t.Helper()
	data, err := catalog.Load("")
	if err != nil {
		t.Fatalf("load balance: %v", err)
	}
	return New(data, rng.NewSeeded(seed), NewEmitter(zerolog.Nop()), zerolog.Nop())
}

func iptr(v int) *int { return &v }

func TestStartGameDefaults(t *testing.T) {
	e := newTestEngine(t, 1)
	if err := e.StartGame(nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	s := e.Session()
	if s.Phase != PhaseSlot {
		t.Fatalf("phase %s", s.Phase)
	}
	if s.Round != 1 || s.Turn != 1 {
		t.Fatalf("round %d turn %d", s.Round, s.Turn)
	}
	if s.Gold != 10 || s.TargetScore != 300 {
		t.Fatalf("gold %d target %d", s.Gold, s.TargetScore)
	}
	if s.HandsRemaining != 4 || s.DiscardsRemaining != 3 || s.HandSize != 8 {
		t.Fatalf("counters: %d/%d/%d", s.HandsRemaining, s.DiscardsRemaining, s.HandSize)
	}
	if s.SlotSpinsLeft != 1 {
		t.Fatalf("spins %d", s.SlotSpinsLeft)
	}
	if s.Deck == nil || s.Deck.Size() != 52 {
		t.Fatal("fresh deck missing")
	}
	if len(s.Hand) != 0 {
		t.Fatal("hand is drawn after the reels, not at start")
	}
}

func TestStartGameConfigOverrides(t *testing.T) {
	e := newTestEngine(t, 1)
	cfg := &Config{
		StartingGold: iptr(25),
		Hands:        iptr(2),
		RoundTargets: []int{100, 999},
	}
	if err := e.StartGame(cfg); err != nil {
		t.Fatalf("start: %v", err)
	}
	s := e.Session()
	if s.Gold != 25 || s.HandsRemaining != 2 || s.TargetScore != 100 {
		t.Fatalf("overrides not applied: gold %d hands %d target %d", s.Gold, s.HandsRemaining, s.TargetScore)
	}
}

func TestActionsOutsidePhaseAreNoOps(t *testing.T) {
	e := newTestEngine(t, 1)
	calls := []struct {
		name string
		fn   func() error
	}{
		{"spinSlot", e.SpinSlot},
		{"playHand", e.PlayHand},
		{"discard", e.DiscardSelected},
		{"spinRoulette", e.SpinRoulette},
		{"skipRoulette", e.SkipRoulette},
		{"reroll", e.RerollShop},
		{"leaveShop", e.LeaveShop},
		{"select", func() error { return e.SelectCard("hearts-2") }},
		{"deselect", func() error { return e.DeselectCard("hearts-2") }},
		{"buy", func() error { return e.BuyItem("shop-0") }},
	}
	for _, c := range calls {
		if err := c.fn(); !errors.Is(err, ErrWrongPhase) {
			t.Fatalf("%s in idle: %v", c.name, err)
		}
		if e.Session().Phase != PhaseIdle {
			t.Fatalf("%s mutated the phase", c.name)
		}
	}

	e.session.Phase = PhasePlay
	if err := e.StartGame(nil); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("startGame mid-run: %v", err)
	}
}

func TestSpinSlotAdvancesThroughDraw(t *testing.T) {
	e := newTestEngine(t, 3)
	if err := e.StartGame(nil); err != nil {
		t.Fatal(err)
	}
	if err := e.SpinSlot(); err != nil {
		t.Fatalf("spin: %v", err)
	}
	s := e.Session()
	if s.Phase != PhasePlay {
		t.Fatalf("phase after last spin: %s", s.Phase)
	}
	if s.SlotResult == nil {
		t.Fatal("spin result not recorded")
	}
	if len(s.Hand) < s.HandSize {
		t.Fatalf("hand not filled: %d < %d", len(s.Hand), s.HandSize)
	}
	if err := e.SpinSlot(); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("spin after advancing: %v", err)
	}
}

func TestSpinSlotWithoutSpins(t *testing.T) {
	e := newTestEngine(t, 3)
	if err := e.StartGame(nil); err != nil {
		t.Fatal(err)
	}
	e.session.SlotSpinsLeft = 0
	if err := e.SpinSlot(); !errors.Is(err, ErrNoSpins) {
		t.Fatalf("want ErrNoSpins, got %v", err)
	}
	if e.session.Phase != PhaseSlot {
		t.Fatal("failed spin must not advance")
	}
}

func TestSelectionLifecycle(t *testing.T) {
	e := newTestEngine(t, 4)
	if err := e.StartGame(nil); err != nil {
		t.Fatal(err)
	}
	if err := e.SpinSlot(); err != nil {
		t.Fatal(err)
	}
	s := e.Session()

	if err := e.SelectCard("not-a-card"); !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("unknown id: %v", err)
	}
	id := s.Hand[0].ID
	if err := e.SelectCard(id); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := e.SelectCard(id); err != nil {
		t.Fatalf("reselect must be idempotent: %v", err)
	}
	if len(s.Selected) != 1 {
		t.Fatalf("selection grew on reselect: %v", s.Selected)
	}
	for _, c := range s.Hand[1:5] {
		if err := e.SelectCard(c.ID); err != nil {
			t.Fatalf("select %s: %v", c.ID, err)
		}
	}
	if err := e.SelectCard(s.Hand[5].ID); !errors.Is(err, ErrSelectionLimit) {
		t.Fatalf("sixth card: %v", err)
	}
	if err := e.DeselectCard(s.Hand[5].ID); !errors.Is(err, ErrNotSelected) {
		t.Fatalf("deselect unselected: %v", err)
	}
	if err := e.DeselectCard(id); err != nil {
		t.Fatalf("deselect: %v", err)
	}
	if len(s.Selected) != 4 {
		t.Fatalf("selection after deselect: %v", s.Selected)
	}
}

func TestDiscardSelected(t *testing.T) {
	e := newTestEngine(t, 5)
	if err := e.StartGame(nil); err != nil {
		t.Fatal(err)
	}
	if err := e.SpinSlot(); err != nil {
		t.Fatal(err)
	}
	s := e.Session()

	if err := e.DiscardSelected(); !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("discard empty selection: %v", err)
	}

	before := len(s.Hand)
	if err := e.SelectCard(s.Hand[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := e.SelectCard(s.Hand[1].ID); err != nil {
		t.Fatal(err)
	}
	if err := e.DiscardSelected(); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if len(s.Hand) != before {
		t.Fatalf("discard must redraw like for like: %d != %d", len(s.Hand), before)
	}
	if s.DiscardsRemaining != 2 || len(s.Selected) != 0 {
		t.Fatalf("discard bookkeeping: %d remaining, selected %v", s.DiscardsRemaining, s.Selected)
	}
	if s.Phase != PhasePlay {
		t.Fatal("discard must not advance the phase")
	}

	s.DiscardsRemaining = 0
	if err := e.SelectCard(s.Hand[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := e.DiscardSelected(); !errors.Is(err, ErrNoDiscards) {
		t.Fatalf("exhausted discards: %v", err)
	}
}

func TestPlayHandScoresPair(t *testing.T) {
	e := newTestEngine(t, 6)
	s := e.session
	s.Phase = PhasePlay
	s.Round, s.Turn = 1, 1
	s.TargetScore = 300
	s.HandsRemaining = 2
	s.SlotSpinsLeft = 0
	s.Deck = &deck.Deck{}
	s.Hand = []deck.Card{
		{ID: "hearts-2", Rank: 2, Suit: deck.Hearts},
		{ID: "spades-2", Rank: 2, Suit: deck.Spades},
		{ID: "clubs-5", Rank: 5, Suit: deck.Clubs},
	}
	s.Selected = []string{"hearts-2", "spades-2"}

	if err := e.PlayHand(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if s.Phase != PhaseRoulette {
		t.Fatalf("phase after play: %s", s.Phase)
	}
	if s.HandResult.Category != poker.Pair {
		t.Fatalf("category %s", s.HandResult.Category)
	}
	// pair base 10 chips x2 mult, plus 2+2 card chips
	if s.Score.FinalScore != 28 {
		t.Fatalf("score %d, want 28", s.Score.FinalScore)
	}
	if s.HandsRemaining != 1 {
		t.Fatalf("hands remaining %d", s.HandsRemaining)
	}
	if len(s.Hand) != 1 || s.Hand[0].ID != "clubs-5" {
		t.Fatalf("played cards must leave the hand: %v", s.Hand)
	}
	if len(s.Deck.DiscardPile) != 2 {
		t.Fatalf("played cards must hit the discard pile: %d", len(s.Deck.DiscardPile))
	}

	// score lands on the round total only after the wheel
	if s.CurrentScore != 0 {
		t.Fatalf("premature score application: %d", s.CurrentScore)
	}
	if err := e.SkipRoulette(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if s.CurrentScore != 28 {
		t.Fatalf("skipped wheel keeps the score unmultiplied: %d", s.CurrentScore)
	}
	if s.Phase != PhaseSlot || s.Turn != 2 {
		t.Fatalf("next turn: phase %s turn %d", s.Phase, s.Turn)
	}
}

func TestPlayHandEmptySelection(t *testing.T) {
	e := newTestEngine(t, 6)
	s := e.session
	s.Phase = PhasePlay
	s.Deck = &deck.Deck{}
	s.Hand = []deck.Card{{ID: "hearts-2", Rank: 2, Suit: deck.Hearts}}
	if err := e.PlayHand(); !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("empty play: %v", err)
	}
	if s.Phase != PhasePlay {
		t.Fatal("failed play must not advance")
	}
}

func TestCardEnhancementsAndTriggers(t *testing.T) {
	e := newTestEngine(t, 7)
	e.rng = rng.Fixed(0.9) // glass roll, no shatter
	s := e.session
	s.Phase = PhasePlay
	s.Round, s.Turn = 1, 1
	s.TargetScore = 300
	s.HandsRemaining = 3
	s.Deck = &deck.Deck{}
	s.Hand = []deck.Card{
		{ID: "hearts-2", Rank: 2, Suit: deck.Hearts, Enhancement: deck.EnhanceGold, TriggerRoulette: true},
		{ID: "spades-2", Rank: 2, Suit: deck.Spades, TriggerSlot: true},
		{ID: "clubs-9", Rank: 9, Suit: deck.Clubs, Enhancement: deck.EnhanceSteel},
	}
	s.Selected = []string{"hearts-2", "spades-2"}

	if err := e.PlayHand(); err != nil {
		t.Fatalf("play: %v", err)
	}
	// pair 14 chips, mult 2 * steel 1.2 -> floor(33.6)
	if s.Score.FinalScore != 33 {
		t.Fatalf("score %d, want 33", s.Score.FinalScore)
	}
	if s.Gold != 3 {
		t.Fatalf("gold card payout: %d", s.Gold)
	}
	if s.PendingSpins != 1 || s.BonusSafeZone != 5 {
		t.Fatalf("trigger flags: spins %d safeZone %v", s.PendingSpins, s.BonusSafeZone)
	}

	if err := e.SkipRoulette(); err != nil {
		t.Fatal(err)
	}
	// the banked trigger spin joins next turn's allowance
	if s.SlotSpinsLeft != 2 || s.PendingSpins != 0 {
		t.Fatalf("banked spin: left %d pending %d", s.SlotSpinsLeft, s.PendingSpins)
	}
}

func TestGlassShatter(t *testing.T) {
	e := newTestEngine(t, 7)
	e.rng = rng.Fixed(0.1) // under the shatter threshold
	s := e.session
	s.Phase = PhasePlay
	s.Round, s.Turn = 1, 1
	s.TargetScore = 300
	s.HandsRemaining = 3
	s.Deck = &deck.Deck{}
	s.Hand = []deck.Card{
		{ID: "hearts-2", Rank: 2, Suit: deck.Hearts, Enhancement: deck.EnhanceGlass},
		{ID: "spades-2", Rank: 2, Suit: deck.Spades},
	}
	s.Selected = []string{"hearts-2", "spades-2"}

	if err := e.PlayHand(); err != nil {
		t.Fatalf("play: %v", err)
	}
	// pair 14 chips, mult 2 * glass 1.5
	if s.Score.FinalScore != 42 {
		t.Fatalf("score %d, want 42", s.Score.FinalScore)
	}
	// the shattered card leaves the game instead of the discard pile
	if len(s.Deck.DiscardPile) != 1 || s.Deck.DiscardPile[0].ID != "spades-2" {
		t.Fatalf("discard pile after shatter: %v", s.Deck.DiscardPile)
	}
}

func TestSpinRouletteMultipliesScore(t *testing.T) {
	e := newTestEngine(t, 8)
	e.rng = rng.Fixed(0.99) // lands on the 5x segment
	s := e.session
	s.Phase = PhaseRoulette
	s.Round, s.Turn = 1, 1
	s.TargetScore = 10000
	s.HandsRemaining = 2
	s.Deck = &deck.Deck{}
	s.Score = &poker.Calculation{FinalScore: 100}

	var spins []RouletteSpinPayload
	e.Events().Subscribe(EvRouletteSpin, func(ev Event) {
		spins = append(spins, ev.Payload.(RouletteSpinPayload))
	})

	if err := e.SpinRoulette(); err != nil {
		t.Fatalf("spin: %v", err)
	}
	if len(spins) != 1 || spins[0].Result.Segment.ID != "five" {
		t.Fatalf("segment: %+v", spins)
	}
	if s.CurrentScore != 500 {
		t.Fatalf("multiplied score %d", s.CurrentScore)
	}
	if s.Phase != PhaseSlot || s.Turn != 2 {
		t.Fatalf("next turn: %s/%d", s.Phase, s.Turn)
	}
}

func TestFreeSpinRerollsBust(t *testing.T) {
	e := newTestEngine(t, 8)
	e.rng = rng.Fixed(0.1, 0.99) // bust first, then 5x
	s := e.session
	s.Phase = PhaseRoulette
	s.Round, s.Turn = 1, 1
	s.TargetScore = 10000
	s.HandsRemaining = 2
	s.Deck = &deck.Deck{}
	s.Score = &poker.Calculation{FinalScore: 100}
	s.FreeSpins = 1

	var spins []RouletteSpinPayload
	e.Events().Subscribe(EvRouletteSpin, func(ev Event) {
		spins = append(spins, ev.Payload.(RouletteSpinPayload))
	})

	if err := e.SpinRoulette(); err != nil {
		t.Fatal(err)
	}
	if len(spins) != 1 || spins[0].Result.Segment.ID != "five" {
		t.Fatalf("free spin must reroll a losing segment: %+v", spins)
	}
	if s.CurrentScore != 500 {
		t.Fatalf("score %d", s.CurrentScore)
	}
}

func TestRoundSuccessPaysOutAndOpensShop(t *testing.T) {
	e := newTestEngine(t, 9)
	s := e.session
	s.Phase = PhaseRoulette
	s.Round, s.Turn = 1, 3
	s.TargetScore = 300
	s.CurrentScore = 280
	s.HandsRemaining = 1
	s.Gold = 10
	s.Deck = deck.NewStandard(rng.NewSeeded(9))
	s.Hand = s.Deck.Draw(3, rng.NewSeeded(9))
	s.Score = &poker.Calculation{FinalScore: 30}

	var ended []RoundEndPayload
	e.Events().Subscribe(EvRoundEnd, func(ev Event) {
		ended = append(ended, ev.Payload.(RoundEndPayload))
	})

	if err := e.SkipRoulette(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if s.Phase != PhaseShop {
		t.Fatalf("phase %s", s.Phase)
	}
	// flat 4 plus one unused hand, no interest voucher
	if s.Gold != 15 {
		t.Fatalf("round payout: gold %d", s.Gold)
	}
	if s.Shop == nil || len(s.Shop.Items) != 4 {
		t.Fatal("shop not generated")
	}
	if len(s.Hand) != 0 || s.Deck.Size() != 52 {
		t.Fatalf("held cards must return to the deck: hand %d, size %d", len(s.Hand), s.Deck.Size())
	}
	if len(ended) != 1 || !ended[0].Success || ended[0].Score != 310 {
		t.Fatalf("round end event: %+v", ended)
	}
}

func TestRoundSuccessInterest(t *testing.T) {
	e := newTestEngine(t, 9)
	s := e.session
	s.Phase = PhaseRoulette
	s.Round = 1
	s.TargetScore = 300
	s.CurrentScore = 300
	s.HandsRemaining = 1
	s.Gold = 10
	s.Vouchers = []string{"savings_account"}
	s.Deck = deck.NewStandard(rng.NewSeeded(9))
	s.Score = &poker.Calculation{FinalScore: 0}

	if err := e.SkipRoulette(); err != nil {
		t.Fatal(err)
	}
	// 10 + 4 + 1 unused hand = 15, then floor(15 * 0.2) interest
	if s.Gold != 18 {
		t.Fatalf("interest payout: gold %d", s.Gold)
	}
}

func TestRoundBoundaryAfterPlayedHand(t *testing.T) {
	// near the target with one hand left: a pair of twos (28) clears the
	// remaining 20 and the skip routes straight into the shop
	e := newTestEngine(t, 14)
	s := e.session
	s.Phase = PhasePlay
	s.Round, s.Turn = 1, 4
	s.TargetScore = 300
	s.CurrentScore = 280
	s.HandsRemaining = 1
	s.Gold = 10
	s.Deck = &deck.Deck{}
	s.Hand = []deck.Card{
		{ID: "hearts-2", Rank: 2, Suit: deck.Hearts},
		{ID: "spades-2", Rank: 2, Suit: deck.Spades},
	}
	s.Selected = []string{"hearts-2", "spades-2"}

	if err := e.PlayHand(); err != nil {
		t.Fatal(err)
	}
	if err := e.SkipRoulette(); err != nil {
		t.Fatal(err)
	}
	if s.CurrentScore != 308 || s.Phase != PhaseShop {
		t.Fatalf("cleared round: score %d phase %s", s.CurrentScore, s.Phase)
	}

	// the same setup with a hand too weak to close the gap runs out of hands
	e2 := newTestEngine(t, 14)
	s2 := e2.session
	s2.Phase = PhasePlay
	s2.Round, s2.Turn = 1, 4
	s2.TargetScore = 300
	s2.CurrentScore = 280
	s2.HandsRemaining = 1
	s2.Deck = &deck.Deck{}
	s2.Hand = []deck.Card{{ID: "hearts-2", Rank: 2, Suit: deck.Hearts}}
	s2.Selected = []string{"hearts-2"}

	if err := e2.PlayHand(); err != nil {
		t.Fatal(err)
	}
	if err := e2.SkipRoulette(); err != nil {
		t.Fatal(err)
	}
	// high card scores 5+2=7, total 287 < 300 with no hands left
	if s2.CurrentScore != 287 || s2.Phase != PhaseGameOver {
		t.Fatalf("failed round: score %d phase %s", s2.CurrentScore, s2.Phase)
	}
}

func TestRoundFailureEndsRun(t *testing.T) {
	e := newTestEngine(t, 10)
	s := e.session
	s.Phase = PhaseRoulette
	s.Round = 2
	s.TargetScore = 450
	s.CurrentScore = 100
	s.HandsRemaining = 0
	s.Deck = &deck.Deck{}
	s.Score = &poker.Calculation{FinalScore: 7}

	over := false
	e.Events().Subscribe(EvGameOver, func(ev Event) { over = true })

	if err := e.SkipRoulette(); err != nil {
		t.Fatal(err)
	}
	if s.Phase != PhaseGameOver {
		t.Fatalf("phase %s", s.Phase)
	}
	if !over {
		t.Fatal("game over event not emitted")
	}

	// a dead run can start again
	if err := e.StartGame(nil); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if e.session.Phase != PhaseSlot || e.session.Round != 1 {
		t.Fatalf("restart state: %s round %d", e.session.Phase, e.session.Round)
	}
}

func TestBuyItem(t *testing.T) {
	e := newTestEngine(t, 11)
	s := e.session
	s.Phase = PhaseShop
	s.Gold = 50
	s.MaxJokers = 5
	s.HandSize = 8
	s.Shop = &shop.State{Items: []shop.Item{
		{ID: "shop-0", Type: shop.TypeJoker, ItemID: "doubler", Cost: 8},
		{ID: "shop-1", Type: shop.TypeVoucher, ItemID: "big_hands", Cost: 10},
		{ID: "shop-2", Type: shop.TypeConsumable, ItemID: "pocket_change", Cost: 3},
		{ID: "shop-3", Type: shop.TypeJoker, ItemID: "echo", Cost: 9},
	}}

	if err := e.BuyItem("shop-0"); err != nil {
		t.Fatalf("buy joker: %v", err)
	}
	if len(s.Jokers) != 1 || s.Jokers[0].ID != "doubler" || s.Gold != 42 {
		t.Fatalf("joker purchase: %v gold %d", s.Jokers, s.Gold)
	}
	if err := e.BuyItem("shop-0"); !errors.Is(err, shop.ErrItemSold) {
		t.Fatalf("rebuy: %v", err)
	}
	if s.Gold != 42 {
		t.Fatal("failed purchase must not charge")
	}

	if err := e.BuyItem("shop-1"); err != nil {
		t.Fatalf("buy voucher: %v", err)
	}
	if s.Vouchers[0] != "big_hands" || s.Gold != 32 {
		t.Fatalf("voucher purchase: %v gold %d", s.Vouchers, s.Gold)
	}
	if s.HandSize != 9 {
		t.Fatalf("hand size voucher must apply immediately: %d", s.HandSize)
	}

	if err := e.BuyItem("shop-2"); err != nil {
		t.Fatalf("buy consumable: %v", err)
	}
	// 32 - 3 cost + 8 instant gold
	if s.Gold != 37 {
		t.Fatalf("consumable gold: %d", s.Gold)
	}

	s.MaxJokers = 1
	if err := e.BuyItem("shop-3"); !errors.Is(err, shop.ErrMaxJokers) {
		t.Fatalf("joker cap: %v", err)
	}
	if len(s.Jokers) != 1 || s.Gold != 37 {
		t.Fatal("capped purchase must leave state untouched")
	}
}

func TestBuyItemUnknownCatalogEntryChargesNothing(t *testing.T) {
	e := newTestEngine(t, 11)
	s := e.session
	s.Phase = PhaseShop
	s.Gold = 50
	s.MaxJokers = 5
	s.Shop = &shop.State{Items: []shop.Item{
		{ID: "shop-0", Type: shop.TypeJoker, ItemID: "ghost", Cost: 8},
		{ID: "shop-1", Type: shop.TypeConsumable, ItemID: "vapor", Cost: 3},
	}}

	for _, id := range []string{"shop-0", "shop-1"} {
		if err := e.BuyItem(id); !errors.Is(err, shop.ErrItemNotFound) {
			t.Fatalf("%s: %v", id, err)
		}
	}
	if s.Gold != 50 || len(s.Jokers) != 0 {
		t.Fatalf("drifted purchase must leave the session untouched: gold %d jokers %d", s.Gold, len(s.Jokers))
	}
	for _, it := range s.Shop.Items {
		if it.Sold {
			t.Fatalf("%s must stay buyable", it.ID)
		}
	}
}

func TestLeaveShopBeginsNextRound(t *testing.T) {
	e := newTestEngine(t, 12)
	s := e.session
	s.Phase = PhaseShop
	s.Round = 1
	s.Gold = 20
	s.Vouchers = []string{"extra_pull"}
	s.Deck = deck.NewStandard(rng.NewSeeded(12))
	s.Shop = &shop.State{}

	if err := e.LeaveShop(); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if s.Phase != PhaseSlot || s.Round != 2 || s.Shop != nil {
		t.Fatalf("next round: phase %s round %d", s.Phase, s.Round)
	}
	if s.TargetScore != 450 {
		t.Fatalf("round 2 target %d", s.TargetScore)
	}
	// 4 base hands + round 2 bonus hand
	if s.HandsRemaining != 5 {
		t.Fatalf("round 2 hands %d", s.HandsRemaining)
	}
	// 1 base spin + extra_pull voucher
	if s.SlotSpinsLeft != 2 {
		t.Fatalf("round 2 spins %d", s.SlotSpinsLeft)
	}
	if s.CurrentScore != 0 || s.Gold != 20 {
		t.Fatalf("carryover: score %d gold %d", s.CurrentScore, s.Gold)
	}
}

func TestCustomJokerHandler(t *testing.T) {
	e := newTestEngine(t, 13)
	ran := 0
	e.RegisterCustom("mystery_box", func(s *Session) { ran++; s.Gold += 2 })

	s := e.session
	s.Phase = PhasePlay
	s.Round, s.Turn = 1, 1
	s.TargetScore = 300
	s.HandsRemaining = 3
	s.Deck = &deck.Deck{}
	s.Hand = []deck.Card{
		{ID: "hearts-2", Rank: 2, Suit: deck.Hearts},
		{ID: "spades-2", Rank: 2, Suit: deck.Spades},
	}
	s.Selected = []string{"hearts-2", "spades-2"}
	j, ok := e.data.JokerByID("mystery_box")
	if !ok {
		t.Fatal("mystery_box missing from catalog")
	}
	s.Jokers = []effects.Joker{j}

	if err := e.PlayHand(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if ran != 1 || s.Gold != 2 {
		t.Fatalf("custom handler: ran %d gold %d", ran, s.Gold)
	}
}
