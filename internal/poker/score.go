// internal/poker/score.go
//
// Bonus composition: folds an ordered bonus list into the final score.
// Order is a correctness requirement: an xmult applied before an add-mult
// yields a different total than the reverse.

package poker

import "math"

// BonusType is the kind of contribution a bonus makes.
type BonusType string

const (
	BonusChips BonusType = "chips"
	BonusMult  BonusType = "mult"
	BonusXMult BonusType = "xmult"
)

// Bonus is one atomic, ordered contribution to a score calculation.
type Bonus struct {
	Source string    `json:"source"` // e.g. "joker:greedy", "card:hearts-13", "slot"
	Type   BonusType `json:"type"`
	Value  float64   `json:"value"`
}

// Calculation is the derived score breakdown for one played hand.
type Calculation struct {
	Hand       Result  `json:"hand"`
	ChipTotal  float64 `json:"chipTotal"`
	MultTotal  float64 `json:"multTotal"`
	Applied    []Bonus `json:"appliedBonuses"`
	FinalScore int     `json:"finalScore"`
}

// Compose builds the score for an evaluated hand.
//
// chipTotal starts at the category's base chips plus the chip value of each
// scoring card; retriggers make every scoring card count that many extra
// times. multTotal starts at base mult. Bonuses then apply strictly in
// slice order. The final score is floor(chips*mult), never negative.
func Compose(hand Result, bonuses []Bonus, retriggers int) Calculation {
	if retriggers < 0 {
		retriggers = 0
	}
	chips := float64(hand.BaseChips)
	for _, c := range hand.ScoringCards {
		chips += float64(c.ChipValue() * (1 + retriggers))
	}
	mult := float64(hand.BaseMult)

	for _, b := range bonuses {
		switch b.Type {
		case BonusChips:
			chips += b.Value
		case BonusMult:
			mult += b.Value
		case BonusXMult:
			mult *= b.Value
		}
	}

	final := int(math.Floor(chips * mult))
	if final < 0 {
		final = 0
	}
	return Calculation{
		Hand:       hand,
		ChipTotal:  chips,
		MultTotal:  mult,
		Applied:    bonuses,
		FinalScore: final,
	}
}
