// internal/game/actions.go
//
// Player-facing actions. Each action validates and applies a guess at the
// round state machine, mutating the session and returning nothing but an
// error; hosts re-read the session for results.
//
// Validation rules:
//   - Every action is legal only in its phase; elsewhere it is a logged
//     no-op returning ErrWrongPhase.
//   - Argument errors (unknown card id, full selection, empty selection,
//     shop failures) are sentinel errors and leave the session untouched.
//
// State transitions:
//   - draw and score auto-advance inside the triggering action.
//   - reward resolves synchronously: next turn, shop, or game over.

package game

import (
	"github.com/dkarger/felt/internal/catalog"
	"github.com/dkarger/felt/internal/deck"
	"github.com/dkarger/felt/internal/effects"
	"github.com/dkarger/felt/internal/poker"
	"github.com/dkarger/felt/internal/rng"
	"github.com/dkarger/felt/internal/shop"
	"github.com/dkarger/felt/internal/slots"
	"github.com/dkarger/felt/internal/wheel"
)

// StartGame resets the session to defaults, applies config overrides and
// voucher bonuses to starting resources, shuffles a full deck, and enters
// round 1. Legal from idle or game_over.
func (e *Engine) StartGame(cfg *Config) error {
	if err := e.requirePhase("startGame", PhaseIdle, PhaseGameOver); err != nil {
		return err
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Seed != 0 {
		e.rng = rng.NewSeeded(cfg.Seed)
	}
	e.roundTargets = cfg.RoundTargets

	d := e.data.Defaults
	*e.session = Session{
		Phase: PhaseIdle,
		Deck:  deck.NewStandard(e.rng),
	}
	// a fresh run owns no vouchers yet, but the bonus still flows through
	// the same path a loaded run would use
	e.session.Gold = orDefault(cfg.StartingGold, d.StartingGold) + e.voucherMods().StartingGoldBonus
	e.beginRound(1)

	// config overrides beat both defaults and the round table
	if cfg.Hands != nil {
		e.session.HandsRemaining = *cfg.Hands
	}
	if cfg.Discards != nil {
		e.session.DiscardsRemaining = *cfg.Discards
	}
	if cfg.HandSize != nil {
		e.session.HandSize = *cfg.HandSize
	}
	if cfg.MaxJokers != nil {
		e.session.MaxJokers = *cfg.MaxJokers
	}

	e.events.Emit(EvGameStart, nil)
	e.transition(PhaseSlot)
	return nil
}

// SpinSlot resolves one reel spin. When the turn's spins are exhausted the
// engine auto-advances through the draw phase into play.
func (e *Engine) SpinSlot() error {
	if err := e.requirePhase("spinSlot", PhaseSlot); err != nil {
		return err
	}
	s := e.session
	if s.SlotSpinsLeft <= 0 {
		return ErrNoSpins
	}
	s.SlotSpinsLeft--

	// passive jokers shape the reels before the spin
	pre := effects.Compose(s.Jokers, effects.Context{Stage: effects.StageSlot})
	var overrides slots.Weights
	var guaranteed *slots.Symbol
	if pre.Slot != nil {
		overrides = pre.Slot.Weights
		guaranteed = pre.Slot.Guaranteed
	}

	rolls := [3]float64{e.rng.Float64(), e.rng.Float64(), e.rng.Float64()}
	res := slots.Spin(e.data.SlotWeights, overrides, guaranteed, rolls)
	s.SlotResult = &res
	e.applySlotEffects(res)

	// on_slot jokers react to the resolved spin
	post := effects.Compose(s.Jokers, effects.Context{Stage: effects.StageSlot, SlotResult: s.SlotResult})
	s.Gold += post.Gold
	e.runCustom(post.Custom)

	e.events.Emit(EvSlotSpin, SlotSpinPayload{Result: res})

	if s.SlotSpinsLeft > 0 {
		return nil // more spins available this turn
	}

	// draw phase is auto-advancing
	e.transition(PhaseDraw)
	drawn := e.drawToHand()
	e.events.Emit(EvCardsDrawn, CardsDrawnPayload{Cards: drawn})
	e.transition(PhasePlay)
	return nil
}

// SelectCard adds a held card to the play selection.
func (e *Engine) SelectCard(id string) error {
	if err := e.requirePhase("selectCard", PhasePlay); err != nil {
		return err
	}
	s := e.session
	found := false
	for _, c := range s.Hand {
		if c.ID == id {
			found = true
			break
		}
	}
	if !found {
		return ErrCardNotFound
	}
	for _, sel := range s.Selected {
		if sel == id {
			return nil // already selected, idempotent
		}
	}
	if len(s.Selected) >= maxSelection {
		return ErrSelectionLimit
	}
	s.Selected = append(s.Selected, id)
	return nil
}

// DeselectCard removes a card from the play selection.
func (e *Engine) DeselectCard(id string) error {
	if err := e.requirePhase("deselectCard", PhasePlay); err != nil {
		return err
	}
	s := e.session
	for i, sel := range s.Selected {
		if sel == id {
			s.Selected = append(s.Selected[:i], s.Selected[i+1:]...)
			return nil
		}
	}
	return ErrNotSelected
}

// PlayHand scores the current selection. Scoring is auto-advancing: the
// hand is evaluated, bonuses composed in order, the score stored, and the
// session moves on to the roulette phase (skipping it when the reels forced
// a skip).
func (e *Engine) PlayHand() error {
	if err := e.requirePhase("playHand", PhasePlay); err != nil {
		return err
	}
	s := e.session
	played := s.selectionCards()
	if len(played) == 0 {
		return ErrNothingSelected
	}

	s.HandsRemaining--
	e.transition(PhaseScore)

	result := poker.Evaluate(played, e.data.Hands)
	s.HandResult = &result
	e.events.Emit(EvCardsPlayed, CardsPlayedPayload{Cards: played, Category: result.Category})

	bonuses, goldDelta, shattered := e.cardBonuses(result)

	// reel score multiplier applies before joker bonuses
	if m := s.SlotEffects.Draw.ScoreMult; m > 0 && m != 1 {
		bonuses = append(bonuses, poker.Bonus{Source: "slot", Type: poker.BonusXMult, Value: m})
	}

	comp := effects.Compose(s.Jokers, effects.Context{Stage: effects.StageScore, PlayedCards: played})
	bonuses = append(bonuses, comp.Bonuses...)
	goldDelta += comp.Gold

	calc := poker.Compose(result, bonuses, comp.Retriggers)
	s.Score = &calc
	s.Gold += goldDelta
	e.runCustom(comp.Custom)
	e.events.Emit(EvScoreCalculated, ScorePayload{Calculation: calc})

	// played cards leave the hand; shattered glass leaves the game
	s.removeFromHand(s.Selected)
	for _, c := range played {
		if !shattered[c.ID] {
			s.Deck.Discard(c)
		}
	}
	s.Selected = nil

	e.transition(PhaseRoulette)
	if s.SlotEffects.Penalty.SkipWheel {
		return e.resolveWheel(wheel.Skipped(calc.FinalScore))
	}
	return nil
}

// cardBonuses converts scored-card enhancements and flags into ordered
// bonuses and side effects: gold cards pay out, glass cards multiply and
// may shatter, trigger flags bank a free reel spin or wheel safe-zone.
func (e *Engine) cardBonuses(result poker.Result) ([]poker.Bonus, int, map[string]bool) {
	s := e.session
	var bonuses []poker.Bonus
	gold := 0
	shattered := map[string]bool{}

	for _, c := range result.ScoringCards {
		switch c.Enhancement {
		case deck.EnhanceGold:
			gold += 3
		case deck.EnhanceGlass:
			bonuses = append(bonuses, poker.Bonus{Source: "card:" + c.ID, Type: poker.BonusXMult, Value: 1.5})
			if e.rng.Float64() < 0.25 {
				shattered[c.ID] = true
			}
		}
		if c.TriggerSlot {
			s.PendingSpins++
		}
		if c.TriggerRoulette {
			s.BonusSafeZone += 5
		}
	}

	// steel cards pull their weight from the hand, not the table
	for _, c := range s.Hand {
		if c.Enhancement == deck.EnhanceSteel && !selectedContains(s.Selected, c.ID) {
			bonuses = append(bonuses, poker.Bonus{Source: "card:" + c.ID, Type: poker.BonusXMult, Value: 1.2})
		}
	}
	return bonuses, gold, shattered
}

func selectedContains(sel []string, id string) bool {
	for _, s := range sel {
		if s == id {
			return true
		}
	}
	return false
}

// DiscardSelected swaps the selection for fresh cards. The play phase does
// not advance; discards are limited per round.
func (e *Engine) DiscardSelected() error {
	if err := e.requirePhase("discardSelected", PhasePlay); err != nil {
		return err
	}
	s := e.session
	if s.DiscardsRemaining <= 0 {
		return ErrNoDiscards
	}
	if len(s.Selected) == 0 {
		return ErrNothingSelected
	}

	removed := s.removeFromHand(s.Selected)
	s.Deck.Discard(removed...)
	s.Selected = nil
	s.DiscardsRemaining--

	drawn := s.Deck.Draw(len(removed), e.rng)
	s.Hand = append(s.Hand, drawn...)

	e.events.Emit(EvCardsDiscarded, CardsDiscardedPayload{Cards: removed})
	e.events.Emit(EvCardsDrawn, CardsDrawnPayload{Cards: drawn})
	return nil
}

// SpinRoulette spins the wheel over this turn's segments and multiplies the
// hand score. Banked free spins re-spin a losing result (multiplier < 1).
func (e *Engine) SpinRoulette() error {
	if err := e.requirePhase("spinRoulette", PhaseRoulette); err != nil {
		return err
	}
	s := e.session
	score := 0
	if s.Score != nil {
		score = s.Score.FinalScore
	}
	segs := e.wheelSegments()

	seg := wheel.Select(segs, e.rng.Float64())
	for seg.Multiplier < 1 && s.FreeSpins > 0 {
		s.FreeSpins--
		seg = wheel.Select(segs, e.rng.Float64())
	}

	comp := effects.Compose(s.Jokers, effects.Context{Stage: effects.StageRoulette, SlotResult: s.SlotResult})
	s.Gold += comp.Gold
	e.runCustom(comp.Custom)

	return e.resolveWheel(wheel.Resolve(seg, score))
}

// SkipRoulette banks the unmultiplied hand score. The skip is a first-class
// outcome, distinct from any real segment.
func (e *Engine) SkipRoulette() error {
	if err := e.requirePhase("skipRoulette", PhaseRoulette); err != nil {
		return err
	}
	score := 0
	if e.session.Score != nil {
		score = e.session.Score.FinalScore
	}
	return e.resolveWheel(wheel.Skipped(score))
}

// resolveWheel records the wheel outcome, adds the multiplied score, and
// runs the reward branch synchronously.
func (e *Engine) resolveWheel(res wheel.Result) error {
	s := e.session
	s.RouletteResult = &res
	s.CurrentScore += res.MultipliedScore
	e.events.Emit(EvRouletteSpin, RouletteSpinPayload{Result: res})

	e.transition(PhaseReward)
	e.resolveReward()
	return nil
}

// resolveReward is the single branch point of the machine. The round ends
// when hands run out or the target is met; a met target leads to the shop,
// a missed one to game over. Otherwise the next turn begins.
func (e *Engine) resolveReward() {
	s := e.session

	roundOver := s.HandsRemaining <= 0 || s.CurrentScore >= s.TargetScore
	if !roundOver {
		s.Turn++
		s.resetTurn()
		s.SlotSpinsLeft = e.slotSpinAllowance(e.voucherMods()) + s.PendingSpins
		s.PendingSpins = 0
		e.transition(PhaseSlot)
		return
	}

	success := s.CurrentScore >= s.TargetScore
	e.events.Emit(EvRoundEnd, RoundEndPayload{
		Round:   s.Round,
		Score:   s.CurrentScore,
		Target:  s.TargetScore,
		Success: success,
	})

	if !success {
		e.transition(PhaseGameOver)
		e.events.Emit(EvGameOver, GameOverPayload{Round: s.Round, Score: s.CurrentScore})
		return
	}

	// round reward: flat payout, unused hands, then voucher interest
	mods := e.voucherMods()
	s.Gold += 4 + s.HandsRemaining
	s.Gold += shop.Interest(s.Gold, mods.InterestRate, mods.InterestMax)

	e.endOfRoundCleanup()
	e.transition(PhaseShop)
	if s.Shop == nil {
		s.Shop = shop.Generate(e.data, s.Round, mods.LuckBonus, e.rng)
	}
}

// BuyItem purchases a shop slot by its shop id (or underlying catalog id).
// Jokers respect the ownership cap; vouchers stack; consumables apply
// immediately.
func (e *Engine) BuyItem(itemID string) error {
	if err := e.requirePhase("buyItem", PhaseShop); err != nil {
		return err
	}
	s := e.session

	// resolve the catalog entity before executing the purchase so catalog
	// drift cannot leave the session charged for an undeliverable item
	it, ok := s.Shop.Find(itemID)
	if !ok {
		return shop.ErrItemNotFound
	}
	var (
		j effects.Joker
		c catalog.Consumable
	)
	switch it.Type {
	case shop.TypeJoker:
		if j, ok = e.data.JokerByID(it.ItemID); !ok {
			e.log.Error().Str("id", it.ItemID).Msg("shop slot references a joker missing from the catalog")
			return shop.ErrItemNotFound
		}
	case shop.TypeConsumable:
		if c, ok = e.data.ConsumableByID(it.ItemID); !ok {
			e.log.Error().Str("id", it.ItemID).Msg("shop slot references a consumable missing from the catalog")
			return shop.ErrItemNotFound
		}
	}

	p, err := s.Shop.Buy(itemID, s.Gold, len(s.Jokers), s.MaxJokers)
	if err != nil {
		return err
	}
	// settle the price first so consumables can pay into the new balance
	s.Gold = p.Gold

	switch p.Item.Type {
	case shop.TypeJoker:
		s.Jokers = append(s.Jokers, j)
	case shop.TypeVoucher:
		s.Vouchers = append(s.Vouchers, p.Item.ItemID)
		// an upgraded cap or hand size takes effect immediately
		mods := e.voucherMods()
		s.MaxJokers = e.data.Defaults.MaxJokers + mods.MaxJokersBonus
		s.HandSize = e.data.Defaults.HandSize + mods.HandSizeBonus
	case shop.TypeConsumable:
		e.applyConsumable(c)
	}

	e.events.Emit(EvItemBought, ItemBoughtPayload{Item: p.Item})
	return nil
}

// applyConsumable executes a single-use item.
func (e *Engine) applyConsumable(c catalog.Consumable) {
	s := e.session
	switch c.Kind {
	case catalog.ConsumableGold:
		s.Gold += int(c.Value)
	case catalog.ConsumableExtraHand:
		s.PendingHands += int(c.Value)
	case catalog.ConsumableEnhance:
		e.enhanceRandomCard(deck.Enhancement(c.Enhancement))
	}
}

// enhanceRandomCard upgrades a random card in the deck's piles.
func (e *Engine) enhanceRandomCard(en deck.Enhancement) {
	s := e.session
	total := len(s.Deck.Cards) + len(s.Deck.DiscardPile)
	if total == 0 {
		return
	}
	idx := e.rng.IntN(total)
	if idx < len(s.Deck.Cards) {
		s.Deck.Cards[idx].Enhancement = en
	} else {
		s.Deck.DiscardPile[idx-len(s.Deck.Cards)].Enhancement = en
	}
}

// RerollShop regenerates the shop's items for a rising, voucher-discounted
// price.
func (e *Engine) RerollShop() error {
	if err := e.requirePhase("rerollShop", PhaseShop); err != nil {
		return err
	}
	s := e.session
	mods := e.voucherMods()
	gold, err := s.Shop.Reroll(e.data, s.Round, mods.LuckBonus, mods.RerollDiscount, s.Gold, e.rng)
	if err != nil {
		return err
	}
	s.Gold = gold
	return nil
}

// LeaveShop closes the shop and begins the next round.
func (e *Engine) LeaveShop() error {
	if err := e.requirePhase("leaveShop", PhaseShop); err != nil {
		return err
	}
	s := e.session
	s.Shop = nil
	e.beginRound(s.Round + 1)
	e.transition(PhaseSlot)
	return nil
}
