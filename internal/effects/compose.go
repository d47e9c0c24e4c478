// internal/effects/compose.go
//
// Effect composition. Jokers are evaluated in array order against a stage
// context; the order matters because xmult contributions stack
// multiplicatively over whatever came before them.

package effects

import (
	"github.com/dkarger/felt/internal/deck"
	"github.com/dkarger/felt/internal/poker"
	"github.com/dkarger/felt/internal/slots"
)

// Stage identifies which engine moment is being composed.
type Stage string

const (
	StagePlay     Stage = "play"
	StageScore    Stage = "score"
	StageSlot     Stage = "slot"
	StageRoulette Stage = "roulette"
)

// Context is the snapshot a composition runs against.
type Context struct {
	Stage       Stage
	PlayedCards []deck.Card
	SlotResult  *slots.Result
}

// Composed is the normalized output of one composition pass.
type Composed struct {
	Bonuses    []poker.Bonus // ordered score contributions
	Gold       int           // immediate gold delta
	Slot       *SlotMods     // nil when no joker touched the reels
	Wheel      *WheelMods    // nil when no joker touched the wheel
	Retriggers int
	Custom     []string // opaque handler names, host-resolved
}

// fires decides whether a joker participates in the given context.
func fires(t Trigger, ctx Context) bool {
	switch t.Kind {
	case Passive:
		return true
	case OnScore:
		return ctx.Stage == StageScore
	case OnPlay:
		if ctx.Stage != StagePlay && ctx.Stage != StageScore {
			return false
		}
		if t.Card == nil {
			return true
		}
		for _, c := range ctx.PlayedCards {
			if matches(*t.Card, c) {
				return true
			}
		}
		return false
	case OnSlot:
		return ctx.Stage == StageSlot && ctx.SlotResult != nil
	case OnRoulette:
		return ctx.Stage == StageRoulette
	}
	return false
}

// matches checks a card condition; wild cards satisfy any suit requirement.
func matches(cond CardCondition, c deck.Card) bool {
	if cond.Rank != 0 && c.Rank != cond.Rank {
		return false
	}
	if cond.Suit != "" && c.Suit != cond.Suit && !c.IsWild {
		return false
	}
	return true
}

// Compose evaluates the owned jokers in order and folds their effects into
// one normalized bundle. Slot weight overrides overwrite per key; everything
// else merges additively.
func Compose(jokers []Joker, ctx Context) Composed {
	var out Composed
	for _, j := range jokers {
		if !fires(j.Trigger, ctx) {
			continue
		}
		switch j.Effect.Kind {
		case AddChips:
			out.Bonuses = append(out.Bonuses, poker.Bonus{Source: "joker:" + j.ID, Type: poker.BonusChips, Value: j.Effect.Value})
		case AddMult:
			out.Bonuses = append(out.Bonuses, poker.Bonus{Source: "joker:" + j.ID, Type: poker.BonusMult, Value: j.Effect.Value})
		case Multiply:
			out.Bonuses = append(out.Bonuses, poker.Bonus{Source: "joker:" + j.ID, Type: poker.BonusXMult, Value: j.Effect.Value})
		case AddGold:
			out.Gold += int(j.Effect.Value)
		case ModifySlot:
			if j.Effect.Slot != nil {
				out.Slot = mergeSlot(out.Slot, *j.Effect.Slot)
			}
		case ModifyRoulette:
			if j.Effect.Wheel != nil {
				out.Wheel = mergeWheel(out.Wheel, *j.Effect.Wheel)
			}
		case Retrigger:
			out.Retriggers += int(j.Effect.Value)
		case Custom:
			if j.Effect.Handler != "" {
				out.Custom = append(out.Custom, j.Effect.Handler)
			}
		}
	}
	return out
}

func mergeSlot(acc *SlotMods, m SlotMods) *SlotMods {
	if acc == nil {
		acc = &SlotMods{}
	}
	if len(m.Weights) > 0 {
		if acc.Weights == nil {
			acc.Weights = slots.Weights{}
		}
		for s, w := range m.Weights {
			acc.Weights[s] = w // last writer wins per key
		}
	}
	if m.Guaranteed != nil {
		acc.Guaranteed = m.Guaranteed
	}
	acc.ExtraRerolls += m.ExtraRerolls
	return acc
}

func mergeWheel(acc *WheelMods, m WheelMods) *WheelMods {
	if acc == nil {
		acc = &WheelMods{}
	}
	acc.SafeZone += m.SafeZone
	acc.MaxMultBoost += m.MaxMultBoost
	acc.FreeSpins += m.FreeSpins
	return acc
}

// VoucherMods sums the declared bonuses of every purchased voucher id.
// Unknown ids are skipped; duplicate ids stack by summing again.
func VoucherMods(ids []string, catalog map[string]Voucher) Voucher {
	var sum Voucher
	for _, id := range ids {
		v, ok := catalog[id]
		if !ok {
			continue
		}
		sum.HandsBonus += v.HandsBonus
		sum.DiscardsBonus += v.DiscardsBonus
		sum.HandSizeBonus += v.HandSizeBonus
		sum.MaxJokersBonus += v.MaxJokersBonus
		sum.SlotSpinsBonus += v.SlotSpinsBonus
		sum.StartingGoldBonus += v.StartingGoldBonus
		sum.RerollDiscount += v.RerollDiscount
		sum.LuckBonus += v.LuckBonus
		sum.InterestRate += v.InterestRate
		sum.InterestMax += v.InterestMax
	}
	return sum
}
