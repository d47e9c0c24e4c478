// internal/catalog/catalog.go
//
// Static balance data for the engine: hand values, round targets, reel
// weights, wheel segments, item catalogs, and shop pricing. Loaded once at
// start-up from the embedded defaults, with an optional on-disk overlay
// merged over them (section-level: a non-empty overlay section replaces the
// default section). Catalog data is read-only after Load.

package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dkarger/felt/assets"
	"github.com/dkarger/felt/internal/effects"
	"github.com/dkarger/felt/internal/poker"
	"github.com/dkarger/felt/internal/slots"
	"github.com/dkarger/felt/internal/wheel"
)

// RoundSpec is one row of the per-round progression table.
type RoundSpec struct {
	Target        int `yaml:"target" json:"target"`
	BonusHands    int `yaml:"bonusHands,omitempty" json:"bonusHands,omitempty"`
	BonusDiscards int `yaml:"bonusDiscards,omitempty" json:"bonusDiscards,omitempty"`
}

// ConsumableKind tags what a consumable does when bought.
type ConsumableKind string

const (
	ConsumableGold      ConsumableKind = "gold"       // instant gold
	ConsumableExtraHand ConsumableKind = "extra_hand" // +hands this round
	ConsumableEnhance   ConsumableKind = "enhance"    // enhance a random held card
)

// Consumable is a single-use shop item applied immediately on purchase.
type Consumable struct {
	ID          string           `yaml:"id" json:"id"`
	Name        string           `yaml:"name" json:"name"`
	Rarity      effects.Rarity   `yaml:"rarity" json:"rarity"`
	Kind        ConsumableKind   `yaml:"kind" json:"kind"`
	Value       float64          `yaml:"value,omitempty" json:"value,omitempty"`
	Enhancement string           `yaml:"enhancement,omitempty" json:"enhancement,omitempty"`
}

// Pricing holds shop economy constants.
type Pricing struct {
	BasePrice       map[string]int              `yaml:"basePrice"`  // item type -> base cost
	RarityMult      map[effects.Rarity]float64  `yaml:"rarityMult"` // rarity -> price multiplier
	RoundScaling    float64                     `yaml:"roundScaling"`
	ShopSlots       int                         `yaml:"shopSlots"`
	RerollBase      int                         `yaml:"rerollBase"`
	RerollIncrement int                         `yaml:"rerollIncrement"`
}

// Defaults are the baseline run parameters before config overrides and
// voucher bonuses.
type Defaults struct {
	StartingGold     int `yaml:"startingGold"`
	HandsPerRound    int `yaml:"handsPerRound"`
	DiscardsPerRound int `yaml:"discardsPerRound"`
	HandSize         int `yaml:"handSize"`
	MaxJokers        int `yaml:"maxJokers"`
	SlotSpins        int `yaml:"slotSpins"` // reel spins allowed per turn
}

// Data is the full parsed balance set.
type Data struct {
	Defaults    Defaults               `yaml:"defaults"`
	Hands       poker.HandTable        `yaml:"hands"`
	Rounds      []RoundSpec            `yaml:"rounds"`
	SlotWeights slots.Weights          `yaml:"slotWeights"`
	Segments    []wheel.Segment        `yaml:"segments"`
	Jokers      []effects.Joker        `yaml:"jokers"`
	Vouchers    []effects.Voucher      `yaml:"vouchers"`
	Consumables []Consumable           `yaml:"consumables"`
	Pricing     Pricing                `yaml:"pricing"`
}

// Load parses the embedded defaults, merges an optional overlay file on
// top, and validates the result. A missing overlay path is not an error;
// an unreadable or invalid one is.
func Load(overlayPath string) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(assets.Balance(), &d); err != nil {
		return nil, fmt.Errorf("parse embedded balance: %w", err)
	}

	if overlayPath != "" {
		b, err := os.ReadFile(overlayPath)
		switch {
		case os.IsNotExist(err):
			// keep defaults
		case err != nil:
			return nil, fmt.Errorf("read balance overlay: %w", err)
		default:
			var o Data
			if err := yaml.Unmarshal(b, &o); err != nil {
				return nil, fmt.Errorf("parse balance overlay %s: %w", overlayPath, err)
			}
			d = merge(d, o)
		}
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// merge overlays non-empty sections of b over a. Sections replace wholesale;
// partial in-section merging is not worth the ambiguity for balance files.
func merge(a, b Data) Data {
	out := a
	if b.Defaults != (Defaults{}) {
		out.Defaults = b.Defaults
	}
	if len(b.Hands) > 0 {
		out.Hands = b.Hands
	}
	if len(b.Rounds) > 0 {
		out.Rounds = b.Rounds
	}
	if len(b.SlotWeights) > 0 {
		out.SlotWeights = b.SlotWeights
	}
	if len(b.Segments) > 0 {
		out.Segments = b.Segments
	}
	if len(b.Jokers) > 0 {
		out.Jokers = b.Jokers
	}
	if len(b.Vouchers) > 0 {
		out.Vouchers = b.Vouchers
	}
	if len(b.Consumables) > 0 {
		out.Consumables = b.Consumables
	}
	if b.Pricing.ShopSlots > 0 {
		out.Pricing = b.Pricing
	}
	return out
}

// JokerByID returns the catalog joker, or false.
func (d *Data) JokerByID(id string) (effects.Joker, bool) {
	for _, j := range d.Jokers {
		if j.ID == id {
			return j, true
		}
	}
	return effects.Joker{}, false
}

// VoucherByID returns the catalog voucher, or false.
func (d *Data) VoucherByID(id string) (effects.Voucher, bool) {
	for _, v := range d.Vouchers {
		if v.ID == id {
			return v, true
		}
	}
	return effects.Voucher{}, false
}

// ConsumableByID returns the catalog consumable, or false.
func (d *Data) ConsumableByID(id string) (Consumable, bool) {
	for _, c := range d.Consumables {
		if c.ID == id {
			return c, true
		}
	}
	return Consumable{}, false
}

// VoucherMap keys the voucher catalog by id for effect summation.
func (d *Data) VoucherMap() map[string]effects.Voucher {
	m := make(map[string]effects.Voucher, len(d.Vouchers))
	for _, v := range d.Vouchers {
		m[v.ID] = v
	}
	return m
}

// RoundSpecFor returns the row for a 1-based round. Rounds past the table's
// end reuse the last row with a geometric target ramp so long runs keep
// getting harder.
func (d *Data) RoundSpecFor(round int) RoundSpec {
	if round < 1 {
		round = 1
	}
	if round <= len(d.Rounds) {
		return d.Rounds[round-1]
	}
	last := d.Rounds[len(d.Rounds)-1]
	over := round - len(d.Rounds)
	target := float64(last.Target)
	for i := 0; i < over; i++ {
		target *= 1.5
	}
	last.Target = int(target)
	return last
}
