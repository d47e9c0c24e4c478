// internal/slots/slots.go
//
// Three-reel weighted slot resolver.
// A spin draws three independent symbols from a weighted table, then maps the
// combination to an additive effect bundle: triple star is the jackpot, any
// other triple looks up that symbol's bundle, and mixed results aggregate
// small per-symbol contributions.

package slots

import "sort"

// Symbol is one reel face.
type Symbol string

const (
	SymCard   Symbol = "card"
	SymTarget Symbol = "target"
	SymGold   Symbol = "gold"
	SymChip   Symbol = "chip"
	SymStar   Symbol = "star"
	SymSkull  Symbol = "skull"
	SymWild   Symbol = "wild"
)

// Symbols lists every reel face in canonical order. Weight maps iterate in
// this order so sampling is deterministic for a fixed roll.
var Symbols = []Symbol{SymCard, SymTarget, SymGold, SymChip, SymStar, SymSkull, SymWild}

// Weights maps each symbol to its relative draw weight.
type Weights map[Symbol]int

// DefaultWeights returns the base reel weights.
func DefaultWeights() Weights {
	return Weights{
		SymCard:   25,
		SymTarget: 20,
		SymGold:   20,
		SymChip:   15,
		SymStar:   5,
		SymSkull:  10,
		SymWild:   5,
	}
}

// DrawBonus feeds the draw phase.
type DrawBonus struct {
	ExtraDraws    int     `json:"extraDraws"`
	HandSizeDelta int     `json:"handSizeDelta"`
	ScoreMult     float64 `json:"scoreMult"` // 0 means no multiplier
}

// WheelBonus feeds the roulette phase.
type WheelBonus struct {
	SafeZone     float64 `json:"safeZone"`     // probability points drained from the bust segment
	MaxMultBoost float64 `json:"maxMultBoost"` // added to the top segment's multiplier
	FreeSpins    int     `json:"freeSpins"`
}

// Instant is an immediate resource gain.
type Instant struct {
	Gold  int `json:"gold"`
	Chips int `json:"chips"`
}

// Penalty is the downside bundle (skull results).
type Penalty struct {
	ForcedDiscards int  `json:"forcedDiscards"`
	SkipWheel      bool `json:"skipWheel"`
	GoldLoss       int  `json:"goldLoss"`
}

// Effects is the resolved bundle of a spin. All fields are additive.
type Effects struct {
	Draw    DrawBonus  `json:"draw"`
	Wheel   WheelBonus `json:"wheel"`
	Instant Instant    `json:"instant"`
	Penalty Penalty    `json:"penalty"`
}

// Result is the outcome of one spin.
type Result struct {
	Symbols [3]Symbol `json:"symbols"`
	Jackpot bool      `json:"jackpot"`
	Effects Effects   `json:"effects"`
}

// Pick selects a symbol from the weight table given a uniform roll in [0,1).
// Non-positive weights are skipped; if every weight is non-positive the first
// canonical symbol is returned as a defined fallback.
func Pick(w Weights, roll float64) Symbol {
	total := 0
	for _, s := range Symbols {
		if w[s] > 0 {
			total += w[s]
		}
	}
	if total <= 0 {
		return Symbols[0]
	}
	target := roll * float64(total)
	acc := 0.0
	for _, s := range Symbols {
		if w[s] <= 0 {
			continue
		}
		acc += float64(w[s])
		if target < acc {
			return s
		}
	}
	return Symbols[len(Symbols)-1]
}

// Spin draws three symbols and resolves their effects. rolls must supply
// three uniform values; weight overrides replace individual entries before
// sampling and guaranteed forces the first reel.
func Spin(base Weights, overrides Weights, guaranteed *Symbol, rolls [3]float64) Result {
	w := Weights{}
	for s, v := range base {
		w[s] = v
	}
	// overrides win per key; order keys for reproducible map application
	keys := make([]Symbol, 0, len(overrides))
	for s := range overrides {
		keys = append(keys, s)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, s := range keys {
		w[s] = overrides[s]
	}

	var res Result
	for i := 0; i < 3; i++ {
		res.Symbols[i] = Pick(w, rolls[i])
	}
	if guaranteed != nil {
		res.Symbols[0] = *guaranteed
	}
	res.Jackpot = res.Symbols[0] == SymStar && res.Symbols[1] == SymStar && res.Symbols[2] == SymStar
	res.Effects = resolveEffects(res.Symbols, res.Jackpot)
	return res
}

// tripleEffects is the per-symbol bundle for a three-of-a-kind reel result.
var tripleEffects = map[Symbol]Effects{
	SymCard:   {Draw: DrawBonus{ExtraDraws: 3, HandSizeDelta: 1}},
	SymTarget: {Draw: DrawBonus{ScoreMult: 1.5}, Wheel: WheelBonus{SafeZone: 10}},
	SymGold:   {Instant: Instant{Gold: 15}},
	SymChip:   {Instant: Instant{Chips: 50}},
	SymSkull:  {Penalty: Penalty{ForcedDiscards: 2, SkipWheel: true, GoldLoss: 5}},
	SymWild:   {Draw: DrawBonus{ExtraDraws: 2}, Wheel: WheelBonus{FreeSpins: 1}, Instant: Instant{Gold: 5}},
}

// jackpotEffects is the triple-star bundle, the strongest fixed outcome.
var jackpotEffects = Effects{
	Draw:    DrawBonus{ExtraDraws: 2, HandSizeDelta: 2, ScoreMult: 2},
	Wheel:   WheelBonus{SafeZone: 20, MaxMultBoost: 5, FreeSpins: 1},
	Instant: Instant{Gold: 25, Chips: 100},
}

func resolveEffects(sym [3]Symbol, jackpot bool) Effects {
	if jackpot {
		return jackpotEffects
	}
	if sym[0] == sym[1] && sym[1] == sym[2] {
		return tripleEffects[sym[0]]
	}
	// mixed result: small per-symbol contributions only
	var e Effects
	for _, s := range sym {
		switch s {
		case SymGold:
			e.Instant.Gold += 2
		case SymChip:
			e.Instant.Chips += 5
		case SymStar:
			e.Instant.Gold++
			e.Instant.Chips += 3
		}
	}
	return e
}
