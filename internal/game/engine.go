// internal/game/engine.go
//
// The phase orchestrator. The Engine owns the Session and is the only
// writer to it; hand evaluation, reel/wheel resolution, effect composition
// and shop math are pure calls into their packages. All operations are
// synchronous: auto-advancing phases (draw, score, the reward branch) run
// as plain continuations inside the triggering action, so after any action
// returns the session is either waiting for a legal player action or is in
// game_over.

package game

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/dkarger/felt/internal/catalog"
	"github.com/dkarger/felt/internal/deck"
	"github.com/dkarger/felt/internal/effects"
	"github.com/dkarger/felt/internal/rng"
	"github.com/dkarger/felt/internal/slots"
	"github.com/dkarger/felt/internal/wheel"
)

// Invalid-action and invalid-argument sentinels. Invalid actions are soft:
// the engine warns, mutates nothing, and returns ErrWrongPhase so a caller
// can render the reason; it never panics during normal play.
var (
	ErrWrongPhase      = errors.New("action not legal in current phase")
	ErrCardNotFound    = errors.New("card not in hand")
	ErrNotSelected     = errors.New("card not selected")
	ErrSelectionLimit  = errors.New("selection limit reached")
	ErrNothingSelected = errors.New("no cards selected")
	ErrNoDiscards      = errors.New("no discards remaining")
	ErrNoSpins         = errors.New("no reel spins remaining")
)

// maxSelection is the number of cards a played hand may contain.
const maxSelection = 5

// CustomHandler is a host-supplied callback for the reserved "custom" joker
// effect kind. The engine executes registered handlers by name and ignores
// unregistered ones.
type CustomHandler func(s *Session)

// Engine sequences a run.
type Engine struct {
	session *Session
	data    *catalog.Data
	rng     rng.Source
	events  *Emitter
	log     zerolog.Logger
	custom  map[string]CustomHandler

	roundTargets []int // optional config override of the round table
}

// New builds an engine around validated balance data. The emitter is owned
// by the caller and shares the engine's lifetime.
func New(data *catalog.Data, src rng.Source, events *Emitter, log zerolog.Logger) *Engine {
	if src == nil {
		src = rng.Default()
	}
	return &Engine{
		session: &Session{Phase: PhaseIdle},
		data:    data,
		rng:     src,
		events:  events,
		log:     log,
		custom:  make(map[string]CustomHandler),
	}
}

// Session exposes the state for host reads. The engine stays the only
// writer; hosts must treat the snapshot as read-only.
func (e *Engine) Session() *Session { return e.session }

// Events exposes the emitter for host subscriptions.
func (e *Engine) Events() *Emitter { return e.events }

// RegisterCustom installs a handler for a custom joker effect name.
func (e *Engine) RegisterCustom(name string, h CustomHandler) {
	e.custom[name] = h
}

// requirePhase guards an action. Outside its phase the action is a logged
// no-op returning ErrWrongPhase.
func (e *Engine) requirePhase(action string, allowed ...Phase) error {
	for _, p := range allowed {
		if e.session.Phase == p {
			return nil
		}
	}
	e.log.Warn().
		Str("action", action).
		Str("phase", string(e.session.Phase)).
		Msg("action called outside its phase")
	return ErrWrongPhase
}

// transition moves the session to a new phase, enforcing the guard. A
// rejected transition is a bug in the engine itself, so it is logged loudly
// and dropped rather than applied.
func (e *Engine) transition(to Phase) {
	from := e.session.Phase
	if !ValidTransition(from, to) {
		e.log.Error().Str("from", string(from)).Str("to", string(to)).Msg("illegal phase transition blocked")
		return
	}
	e.session.Phase = to
	e.events.Emit(EvPhaseChange, PhaseChangePayload{From: from, To: to})
}

// voucherMods sums the purchased vouchers' bonuses.
func (e *Engine) voucherMods() effects.Voucher {
	return effects.VoucherMods(e.session.Vouchers, e.data.VoucherMap())
}

// roundSpec resolves the target/bonus row for a round, honoring a config
// override of the target table.
func (e *Engine) roundSpec(round int) catalog.RoundSpec {
	spec := e.data.RoundSpecFor(round)
	if len(e.roundTargets) > 0 {
		if round <= len(e.roundTargets) {
			spec.Target = e.roundTargets[round-1]
		} else {
			spec.Target = e.roundTargets[len(e.roundTargets)-1]
		}
	}
	return spec
}

// beginRound applies per-round counters from defaults, the round table,
// vouchers, and any banked consumable hands.
func (e *Engine) beginRound(round int) {
	s := e.session
	mods := e.voucherMods()
	spec := e.roundSpec(round)

	s.Round = round
	s.Turn = 1
	s.CurrentScore = 0
	s.TargetScore = spec.Target
	s.HandsRemaining = e.data.Defaults.HandsPerRound + spec.BonusHands + mods.HandsBonus + s.PendingHands
	s.DiscardsRemaining = e.data.Defaults.DiscardsPerRound + spec.BonusDiscards + mods.DiscardsBonus
	s.HandSize = e.data.Defaults.HandSize + mods.HandSizeBonus
	s.MaxJokers = e.data.Defaults.MaxJokers + mods.MaxJokersBonus
	s.SlotSpinsLeft = e.slotSpinAllowance(mods) + s.PendingSpins
	s.PendingHands = 0
	s.PendingSpins = 0
	s.resetTurn()
}

// slotSpinAllowance is the number of reel spins a turn starts with:
// defaults, the voucher bonus, and extra rerolls from passive jokers.
func (e *Engine) slotSpinAllowance(mods effects.Voucher) int {
	comp := effects.Compose(e.session.Jokers, effects.Context{Stage: effects.StageSlot})
	extra := 0
	if comp.Slot != nil {
		extra = comp.Slot.ExtraRerolls
	}
	return e.data.Defaults.SlotSpins + mods.SlotSpinsBonus + extra
}

// runCustom executes host-registered handlers for the composer's opaque
// custom names. Unregistered names are a silent no-op (reserved extension
// point).
func (e *Engine) runCustom(names []string) {
	for _, n := range names {
		if h, ok := e.custom[n]; ok {
			h(e.session)
		}
	}
}

// wheelSegments builds this turn's wheel: catalog segments normalized, then
// safe-zone / max-mult bonuses from the reels, scored cards, and jokers.
func (e *Engine) wheelSegments() []wheel.Segment {
	s := e.session
	segs := wheel.Normalize(e.data.Segments)

	safe := s.SlotEffects.Wheel.SafeZone + s.BonusSafeZone
	boost := s.SlotEffects.Wheel.MaxMultBoost

	comp := effects.Compose(s.Jokers, effects.Context{Stage: effects.StageRoulette, SlotResult: s.SlotResult})
	if comp.Wheel != nil {
		safe += comp.Wheel.SafeZone
		boost += comp.Wheel.MaxMultBoost
	}
	if safe > 0 || boost > 0 {
		segs = wheel.ApplyBonuses(segs, safe, boost)
	}
	return segs
}

// drawToHand fills the hand up to the effective hand size plus any extra
// draws granted by the reels this turn.
func (e *Engine) drawToHand() []deck.Card {
	s := e.session
	target := s.HandSize + s.SlotEffects.Draw.HandSizeDelta
	n := target - len(s.Hand) + s.SlotEffects.Draw.ExtraDraws
	if n <= 0 {
		return nil
	}
	drawn := s.Deck.Draw(n, e.rng)
	s.Hand = append(s.Hand, drawn...)
	return drawn
}

// endOfRoundCleanup returns the held cards to the deck's discard pile so
// the next round reshuffles a full deck.
func (e *Engine) endOfRoundCleanup() {
	s := e.session
	if len(s.Hand) > 0 {
		s.Deck.Discard(s.Hand...)
		s.Hand = nil
	}
	s.Selected = nil
}

// applySlotEffects folds a spin's bundle into the session. Instant chips
// count toward the round score; penalties force random discards and can
// mark the wheel as skipped for the turn.
func (e *Engine) applySlotEffects(res slots.Result) {
	s := e.session
	eff := res.Effects

	s.SlotEffects.Draw.ExtraDraws += eff.Draw.ExtraDraws
	s.SlotEffects.Draw.HandSizeDelta += eff.Draw.HandSizeDelta
	if eff.Draw.ScoreMult > 0 {
		// multipliers compound across spins
		if s.SlotEffects.Draw.ScoreMult == 0 {
			s.SlotEffects.Draw.ScoreMult = eff.Draw.ScoreMult
		} else {
			s.SlotEffects.Draw.ScoreMult *= eff.Draw.ScoreMult
		}
	}
	s.SlotEffects.Wheel.SafeZone += eff.Wheel.SafeZone
	s.SlotEffects.Wheel.MaxMultBoost += eff.Wheel.MaxMultBoost
	s.FreeSpins += eff.Wheel.FreeSpins

	s.Gold += eff.Instant.Gold
	s.CurrentScore += eff.Instant.Chips

	s.Gold -= eff.Penalty.GoldLoss
	if s.Gold < 0 {
		s.Gold = 0
	}
	if eff.Penalty.SkipWheel {
		s.SlotEffects.Penalty.SkipWheel = true
	}
	for i := 0; i < eff.Penalty.ForcedDiscards && len(s.Hand) > 0; i++ {
		idx := e.rng.IntN(len(s.Hand))
		s.Deck.Discard(s.Hand[idx])
		s.Hand = append(s.Hand[:idx], s.Hand[idx+1:]...)
	}
}
