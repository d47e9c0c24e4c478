// internal/game/session.go
//
// Session is the full mutable state of one playthrough. It is exclusively
// owned and mutated by the Engine; every other package is a pure function
// over snapshots of it. Hosts read it between actions (the engine is
// synchronous, so after any action returns the session is at rest).

package game

import (
	"github.com/dkarger/felt/internal/deck"
	"github.com/dkarger/felt/internal/poker"
	"github.com/dkarger/felt/internal/shop"
	"github.com/dkarger/felt/internal/slots"
	"github.com/dkarger/felt/internal/wheel"

	"github.com/dkarger/felt/internal/effects"
)

// Session is the per-run game state.
type Session struct {
	Phase Phase `json:"phase"`

	Round int `json:"round"`
	Turn  int `json:"turn"`

	CurrentScore int `json:"currentScore"`
	TargetScore  int `json:"targetScore"`
	Gold         int `json:"gold"`

	Deck     *deck.Deck  `json:"deck"`
	Hand     []deck.Card `json:"hand"`
	Selected []string    `json:"selectedCards"` // card ids, play order

	SlotResult     *slots.Result      `json:"slotResult,omitempty"`
	HandResult     *poker.Result      `json:"handResult,omitempty"`
	Score          *poker.Calculation `json:"scoreCalculation,omitempty"`
	RouletteResult *wheel.Result      `json:"rouletteResult,omitempty"`

	Jokers   []effects.Joker `json:"jokers"`
	Vouchers []string        `json:"vouchers"` // purchased voucher ids, duplicates stack

	HandsRemaining    int `json:"handsRemaining"`
	DiscardsRemaining int `json:"discardsRemaining"`
	HandSize          int `json:"handSize"`
	MaxJokers         int `json:"maxJokers"`
	SlotSpinsLeft     int `json:"slotSpinsLeft"`

	Shop *shop.State `json:"shop,omitempty"`

	// per-turn transients outside the result snapshots
	SlotEffects   slots.Effects `json:"slotEffects"`
	BonusSafeZone float64       `json:"bonusSafeZone"` // from scored trigger-roulette cards
	FreeSpins     int           `json:"freeSpins"`     // wheel respins banked this turn
	PendingHands  int           `json:"pendingHands"`  // consumable hands queued for next round
	PendingSpins  int           `json:"pendingSpins"`  // trigger-slot cards queued for next turn
}

// selectionCards resolves the selected ids into hand cards, in selection
// order. Unknown ids were prevented at selection time.
func (s *Session) selectionCards() []deck.Card {
	byID := make(map[string]deck.Card, len(s.Hand))
	for _, c := range s.Hand {
		byID[c.ID] = c
	}
	out := make([]deck.Card, 0, len(s.Selected))
	for _, id := range s.Selected {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// removeFromHand drops the given ids from the hand, preserving order.
func (s *Session) removeFromHand(ids []string) []deck.Card {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	removed := make([]deck.Card, 0, len(ids))
	kept := s.Hand[:0]
	for _, c := range s.Hand {
		if drop[c.ID] {
			removed = append(removed, c)
		} else {
			kept = append(kept, c)
		}
	}
	s.Hand = kept
	return removed
}

// resetTurn clears the per-turn transient fields between turns, preserving
// cross-round state (gold, jokers, vouchers, deck, hand).
func (s *Session) resetTurn() {
	s.SlotResult = nil
	s.HandResult = nil
	s.Score = nil
	s.RouletteResult = nil
	s.Selected = nil
	s.SlotEffects = slots.Effects{}
	s.BonusSafeZone = 0
	s.FreeSpins = 0
}

// Config is the host-overridable start-up configuration. Nil fields fall
// back to the balance defaults.
type Config struct {
	StartingGold *int `json:"startingGold,omitempty"`
	Hands        *int `json:"hands,omitempty"`
	Discards     *int `json:"discards,omitempty"`
	HandSize     *int `json:"handSize,omitempty"`
	MaxJokers    *int `json:"maxJokers,omitempty"`

	// RoundTargets overrides the per-round score table when non-empty.
	RoundTargets []int `json:"roundTargets,omitempty"`

	// Seed selects a deterministic randomness source when non-zero.
	Seed uint64 `json:"seed,omitempty"`
}

func orDefault(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}
