// internal/poker/evaluate.go
//
// Poker hand evaluation for the felt engine.
// Categories are tested most-restrictive first. The evaluator is a pure
// function over the played selection; base chip/mult values come from the
// HandTable the caller loads from balance config.

package poker

import (
	"sort"

	"github.com/dkarger/felt/internal/deck"
)

// Category is the poker hand class, weakest to strongest.
type Category string

const (
	HighCard      Category = "high_card"
	Pair          Category = "pair"
	TwoPair       Category = "two_pair"
	ThreeOfAKind  Category = "three_of_a_kind"
	Straight      Category = "straight"
	Flush         Category = "flush"
	FullHouse     Category = "full_house"
	FourOfAKind   Category = "four_of_a_kind"
	StraightFlush Category = "straight_flush"
	RoyalFlush    Category = "royal_flush"
)

// HandValue is the base chips/mult pair for one category.
type HandValue struct {
	Chips int `yaml:"chips" json:"chips"`
	Mult  int `yaml:"mult" json:"mult"`
}

// HandTable maps every category to its base values.
type HandTable map[Category]HandValue

// Result describes one evaluated hand. Produced fresh per scoring event.
type Result struct {
	Category     Category    `json:"category"`
	Tiebreak     deck.Rank   `json:"tiebreak"`     // highest rank of the matched structure
	ScoringCards []deck.Card `json:"scoringCards"` // exactly the cards that satisfied Category
	BaseChips    int         `json:"baseChips"`
	BaseMult     int         `json:"baseMult"`
}

// Evaluate classifies the played cards. The selection is 1..5 cards under
// normal rules; the rank-count logic also behaves for oversized selections
// (two triples make a full house).
func Evaluate(cards []deck.Card, table HandTable) Result {
	r := classify(cards)
	if v, ok := table[r.Category]; ok {
		r.BaseChips = v.Chips
		r.BaseMult = v.Mult
	}
	return r
}

func classify(cards []deck.Card) Result {
	if len(cards) == 0 {
		return Result{Category: HighCard}
	}

	byRank := map[deck.Rank][]deck.Card{}
	for _, c := range cards {
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}

	flush := isFlush(cards)
	straightHigh, straightCards := straightRun(cards)

	if flush && straightHigh > 0 && len(cards) == 5 {
		if straightHigh == deck.Ace && lowestRank(straightCards) == 10 {
			return Result{Category: RoyalFlush, Tiebreak: deck.Ace, ScoringCards: straightCards}
		}
		return Result{Category: StraightFlush, Tiebreak: straightHigh, ScoringCards: straightCards}
	}

	if rank, group := rankWithCount(byRank, 4); group != nil {
		return Result{Category: FourOfAKind, Tiebreak: rank, ScoringCards: group[:4]}
	}

	if res, ok := fullHouse(byRank); ok {
		return res
	}

	if flush && len(cards) == 5 {
		return Result{Category: Flush, Tiebreak: highestRank(cards), ScoringCards: append([]deck.Card(nil), cards...)}
	}

	if straightHigh > 0 && len(cards) == 5 {
		return Result{Category: Straight, Tiebreak: straightHigh, ScoringCards: straightCards}
	}

	if rank, group := rankWithCount(byRank, 3); group != nil {
		return Result{Category: ThreeOfAKind, Tiebreak: rank, ScoringCards: group[:3]}
	}

	pairs := pairRanks(byRank)
	if len(pairs) >= 2 {
		// highest two pairs score
		scoring := append(append([]deck.Card(nil), byRank[pairs[0]][:2]...), byRank[pairs[1]][:2]...)
		return Result{Category: TwoPair, Tiebreak: pairs[0], ScoringCards: scoring}
	}
	if len(pairs) == 1 {
		return Result{Category: Pair, Tiebreak: pairs[0], ScoringCards: append([]deck.Card(nil), byRank[pairs[0]][:2]...)}
	}

	high := cards[0]
	for _, c := range cards[1:] {
		if c.Rank > high.Rank {
			high = c
		}
	}
	return Result{Category: HighCard, Tiebreak: high.Rank, ScoringCards: []deck.Card{high}}
}

// isFlush reports whether all cards share a suit; wild cards match any suit.
func isFlush(cards []deck.Card) bool {
	if len(cards) < 2 {
		return len(cards) == 1
	}
	var suit deck.Suit
	for _, c := range cards {
		if c.IsWild {
			continue
		}
		if suit == "" {
			suit = c.Suit
			continue
		}
		if c.Suit != suit {
			return false
		}
	}
	return true
}

// straightRun finds the highest five-card consecutive run, recognizing the
// low-ace wheel (A-2-3-4-5). Returns the high rank (5 for the wheel) and the
// cards forming the run, or (0, nil) when no straight exists.
func straightRun(cards []deck.Card) (deck.Rank, []deck.Card) {
	if len(cards) < 5 {
		return 0, nil
	}
	byRank := map[deck.Rank]deck.Card{}
	for _, c := range cards {
		if _, dup := byRank[c.Rank]; !dup {
			byRank[c.Rank] = c
		}
	}
	// highest qualifying run wins
	for high := deck.Ace; high >= 6; high-- {
		run := make([]deck.Card, 0, 5)
		for r := high; r > high-5; r-- {
			c, ok := byRank[r]
			if !ok {
				break
			}
			run = append(run, c)
		}
		if len(run) == 5 {
			return high, run
		}
	}
	// wheel: A,2,3,4,5
	ace, okA := byRank[deck.Ace]
	if okA {
		run := []deck.Card{ace}
		for r := deck.Rank(2); r <= 5; r++ {
			c, ok := byRank[r]
			if !ok {
				return 0, nil
			}
			run = append(run, c)
		}
		return 5, run
	}
	return 0, nil
}

// fullHouse matches three-plus-pair, including the two-triples case where
// the lower triple supplies the pair.
func fullHouse(byRank map[deck.Rank][]deck.Card) (Result, bool) {
	var triples, pairs []deck.Rank
	for r, g := range byRank {
		switch {
		case len(g) >= 3:
			triples = append(triples, r)
		case len(g) == 2:
			pairs = append(pairs, r)
		}
	}
	if len(triples) == 0 {
		return Result{}, false
	}
	sort.Slice(triples, func(i, j int) bool { return triples[i] > triples[j] })

	var pairRank deck.Rank
	switch {
	case len(triples) >= 2:
		pairRank = triples[1]
	case len(pairs) > 0:
		sort.Slice(pairs, func(i, j int) bool { return pairs[i] > pairs[j] })
		pairRank = pairs[0]
	default:
		return Result{}, false
	}
	scoring := append([]deck.Card(nil), byRank[triples[0]][:3]...)
	scoring = append(scoring, byRank[pairRank][:2]...)
	return Result{Category: FullHouse, Tiebreak: triples[0], ScoringCards: scoring}, true
}

func rankWithCount(byRank map[deck.Rank][]deck.Card, n int) (deck.Rank, []deck.Card) {
	var best deck.Rank
	for r, g := range byRank {
		if len(g) >= n && r > best {
			best = r
		}
	}
	if best == 0 {
		return 0, nil
	}
	return best, byRank[best]
}

func pairRanks(byRank map[deck.Rank][]deck.Card) []deck.Rank {
	var out []deck.Rank
	for r, g := range byRank {
		if len(g) >= 2 {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

func highestRank(cards []deck.Card) deck.Rank {
	var best deck.Rank
	for _, c := range cards {
		if c.Rank > best {
			best = c.Rank
		}
	}
	return best
}

func lowestRank(cards []deck.Card) deck.Rank {
	best := deck.Ace
	for _, c := range cards {
		if c.Rank < best {
			best = c.Rank
		}
	}
	return best
}
