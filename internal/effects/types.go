// internal/effects/types.go
//
// Joker and voucher data records.
// Trigger and Effect are closed tagged variants: a Kind plus the payload
// fields that kind reads. Evaluation switches over Kind exhaustively, so a
// new kind is a compile-visible change at every consumption site.

package effects

import (
	"github.com/dkarger/felt/internal/deck"
	"github.com/dkarger/felt/internal/slots"
)

// Rarity buckets shop generation and pricing.
type Rarity string

const (
	Common    Rarity = "common"
	Uncommon  Rarity = "uncommon"
	Rare      Rarity = "rare"
	Legendary Rarity = "legendary"
)

// TriggerKind tags when a joker participates.
type TriggerKind string

const (
	OnScore    TriggerKind = "on_score"
	OnPlay     TriggerKind = "on_play"
	OnSlot     TriggerKind = "on_slot"
	OnRoulette TriggerKind = "on_roulette"
	Passive    TriggerKind = "passive"
)

// CardCondition narrows an on_play trigger to hands containing a matching
// card. Zero rank / empty suit means "any".
type CardCondition struct {
	Rank deck.Rank `yaml:"rank,omitempty" json:"rank,omitempty"`
	Suit deck.Suit `yaml:"suit,omitempty" json:"suit,omitempty"`
}

// Trigger is the tagged predicate variant.
type Trigger struct {
	Kind TriggerKind    `yaml:"kind" json:"kind"`
	Card *CardCondition `yaml:"card,omitempty" json:"card,omitempty"`
}

// EffectKind tags what a triggered joker does.
type EffectKind string

const (
	AddChips       EffectKind = "add_chips"
	AddMult        EffectKind = "add_mult"
	Multiply       EffectKind = "multiply"
	AddGold        EffectKind = "add_gold"
	ModifySlot     EffectKind = "modify_slot"
	ModifyRoulette EffectKind = "modify_roulette"
	Retrigger      EffectKind = "retrigger"
	Custom         EffectKind = "custom"
)

// Effect is the tagged payload variant.
type Effect struct {
	Kind  EffectKind `yaml:"kind" json:"kind"`
	Value float64    `yaml:"value,omitempty" json:"value,omitempty"` // chips/mult/xmult/gold/retrigger amount

	Slot    *SlotMods  `yaml:"slot,omitempty" json:"slot,omitempty"`       // for modify_slot
	Wheel   *WheelMods `yaml:"wheel,omitempty" json:"wheel,omitempty"`     // for modify_roulette
	Handler string     `yaml:"handler,omitempty" json:"handler,omitempty"` // for custom
}

// SlotMods is a partial slot-machine override contributed by jokers.
// Weights overwrite per key; the other fields merge additively.
type SlotMods struct {
	Weights      slots.Weights `yaml:"weights,omitempty" json:"weights,omitempty"`
	Guaranteed   *slots.Symbol `yaml:"guaranteed,omitempty" json:"guaranteed,omitempty"`
	ExtraRerolls int           `yaml:"extraRerolls,omitempty" json:"extraRerolls,omitempty"`
}

// WheelMods is a partial wheel override; all fields sum across jokers.
type WheelMods struct {
	SafeZone     float64 `yaml:"safeZone,omitempty" json:"safeZone,omitempty"`
	MaxMultBoost float64 `yaml:"maxMultBoost,omitempty" json:"maxMultBoost,omitempty"`
	FreeSpins    int     `yaml:"freeSpins,omitempty" json:"freeSpins,omitempty"`
}

// Joker is a collectible catalog record. Catalog entries are never mutated;
// owned copies live in the session.
type Joker struct {
	ID      string  `yaml:"id" json:"id"`
	Name    string  `yaml:"name" json:"name"`
	Rarity  Rarity  `yaml:"rarity" json:"rarity"`
	Cost    int     `yaml:"cost" json:"cost"`
	Trigger Trigger `yaml:"trigger" json:"trigger"`
	Effect  Effect  `yaml:"effect" json:"effect"`
}

// Voucher is a permanent, run-long modifier. Bonuses from every purchased
// voucher sum; duplicate purchases stack (current policy, see DESIGN.md).
type Voucher struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Cost int    `yaml:"cost" json:"cost"`

	HandsBonus        int     `yaml:"handsBonus,omitempty" json:"handsBonus,omitempty"`
	DiscardsBonus     int     `yaml:"discardsBonus,omitempty" json:"discardsBonus,omitempty"`
	HandSizeBonus     int     `yaml:"handSizeBonus,omitempty" json:"handSizeBonus,omitempty"`
	MaxJokersBonus    int     `yaml:"maxJokersBonus,omitempty" json:"maxJokersBonus,omitempty"`
	SlotSpinsBonus    int     `yaml:"slotSpinsBonus,omitempty" json:"slotSpinsBonus,omitempty"`
	StartingGoldBonus int     `yaml:"startingGoldBonus,omitempty" json:"startingGoldBonus,omitempty"`
	RerollDiscount    int     `yaml:"rerollDiscount,omitempty" json:"rerollDiscount,omitempty"`
	LuckBonus         float64 `yaml:"luckBonus,omitempty" json:"luckBonus,omitempty"`
	InterestRate      float64 `yaml:"interestRate,omitempty" json:"interestRate,omitempty"`
	InterestMax       int     `yaml:"interestMax,omitempty" json:"interestMax,omitempty"`
}
