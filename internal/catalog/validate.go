// internal/catalog/validate.go
//
// Semantic validation of the balance set. These are programmer/data errors
// (shipped static data is corrupted), so Load refuses to hand out a Data
// that fails here and the host is expected to treat the error as fatal.

package catalog

import (
	"fmt"
	"strings"

	"github.com/dkarger/felt/internal/effects"
	"github.com/dkarger/felt/internal/poker"
)

var allCategories = []poker.Category{
	poker.HighCard, poker.Pair, poker.TwoPair, poker.ThreeOfAKind,
	poker.Straight, poker.Flush, poker.FullHouse, poker.FourOfAKind,
	poker.StraightFlush, poker.RoyalFlush,
}

var allTriggers = map[effects.TriggerKind]bool{
	effects.OnScore: true, effects.OnPlay: true, effects.OnSlot: true,
	effects.OnRoulette: true, effects.Passive: true,
}

var allEffects = map[effects.EffectKind]bool{
	effects.AddChips: true, effects.AddMult: true, effects.Multiply: true,
	effects.AddGold: true, effects.ModifySlot: true, effects.ModifyRoulette: true,
	effects.Retrigger: true, effects.Custom: true,
}

// Validate checks the semantic constraints of the balance data.
func (d *Data) Validate() error {
	var errs []string

	for _, cat := range allCategories {
		v, ok := d.Hands[cat]
		if !ok {
			errs = append(errs, fmt.Sprintf("hands: missing category %q", cat))
			continue
		}
		if v.Chips < 0 || v.Mult < 1 {
			errs = append(errs, fmt.Sprintf("hands.%s: chips must be >= 0 and mult >= 1", cat))
		}
	}

	if len(d.Rounds) == 0 {
		errs = append(errs, "rounds: table must not be empty")
	}
	for i, r := range d.Rounds {
		if r.Target <= 0 {
			errs = append(errs, fmt.Sprintf("rounds[%d]: target must be > 0", i))
		}
	}

	for sym, w := range d.SlotWeights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("slotWeights.%s: weight must be >= 0", sym))
		}
	}

	if len(d.Segments) == 0 {
		errs = append(errs, "segments: wheel must have at least one segment")
	}
	seen := map[string]bool{}
	for i, s := range d.Segments {
		if s.ID == "" {
			errs = append(errs, fmt.Sprintf("segments[%d]: id is required", i))
		} else if seen[s.ID] {
			errs = append(errs, fmt.Sprintf("segments[%d]: duplicate id %q", i, s.ID))
		}
		seen[s.ID] = true
		if s.Probability < 0 {
			errs = append(errs, fmt.Sprintf("segments[%d]: probability must be >= 0", i))
		}
		if s.Multiplier < 0 {
			errs = append(errs, fmt.Sprintf("segments[%d]: multiplier must be >= 0", i))
		}
	}

	// Shop generation picks uniformly from these pools, so an empty pool
	// would only surface as a panic mid-run.
	if len(d.Jokers) == 0 {
		errs = append(errs, "jokers: catalog must not be empty")
	}
	if len(d.Vouchers) == 0 {
		errs = append(errs, "vouchers: catalog must not be empty")
	}
	if len(d.Consumables) == 0 {
		errs = append(errs, "consumables: catalog must not be empty")
	}

	jokerIDs := map[string]bool{}
	for i, j := range d.Jokers {
		if j.ID == "" {
			errs = append(errs, fmt.Sprintf("jokers[%d]: id is required", i))
		} else if jokerIDs[j.ID] {
			errs = append(errs, fmt.Sprintf("jokers[%d]: duplicate id %q", i, j.ID))
		}
		jokerIDs[j.ID] = true
		if !allTriggers[j.Trigger.Kind] {
			errs = append(errs, fmt.Sprintf("jokers[%d]: unknown trigger kind %q", i, j.Trigger.Kind))
		}
		if !allEffects[j.Effect.Kind] {
			errs = append(errs, fmt.Sprintf("jokers[%d]: unknown effect kind %q", i, j.Effect.Kind))
		}
		if j.Effect.Kind == effects.Custom && j.Effect.Handler == "" {
			errs = append(errs, fmt.Sprintf("jokers[%d]: custom effect requires a handler name", i))
		}
		if j.Cost < 0 {
			errs = append(errs, fmt.Sprintf("jokers[%d]: cost must be >= 0", i))
		}
	}

	voucherIDs := map[string]bool{}
	for i, v := range d.Vouchers {
		if v.ID == "" {
			errs = append(errs, fmt.Sprintf("vouchers[%d]: id is required", i))
		} else if voucherIDs[v.ID] {
			errs = append(errs, fmt.Sprintf("vouchers[%d]: duplicate id %q", i, v.ID))
		}
		voucherIDs[v.ID] = true
		if v.InterestRate < 0 || v.InterestMax < 0 {
			errs = append(errs, fmt.Sprintf("vouchers[%d]: interest fields must be >= 0", i))
		}
	}

	for i, c := range d.Consumables {
		if c.ID == "" {
			errs = append(errs, fmt.Sprintf("consumables[%d]: id is required", i))
		}
		switch c.Kind {
		case ConsumableGold, ConsumableExtraHand, ConsumableEnhance:
		default:
			errs = append(errs, fmt.Sprintf("consumables[%d]: unknown kind %q", i, c.Kind))
		}
	}

	if d.Pricing.ShopSlots <= 0 {
		errs = append(errs, "pricing.shopSlots must be > 0")
	}
	if d.Pricing.RerollBase < 0 || d.Pricing.RerollIncrement < 0 {
		errs = append(errs, "pricing: reroll cost fields must be >= 0")
	}
	for typ, p := range d.Pricing.BasePrice {
		if p < 0 {
			errs = append(errs, fmt.Sprintf("pricing.basePrice.%s must be >= 0", typ))
		}
	}

	if d.Defaults.HandSize <= 0 || d.Defaults.HandsPerRound <= 0 {
		errs = append(errs, "defaults: handSize and handsPerRound must be > 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("balance validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
