// internal/deck/deck.go
//
// Draw/discard pile management.
// Invariant: every card belongs to exactly one of the two piles, never both,
// never duplicated. All mutations preserve the combined card count.

package deck

import (
	"fmt"

	"github.com/dkarger/felt/internal/rng"
)

// Deck holds the ordered draw pile and the discard pile.
type Deck struct {
	Cards       []Card `json:"cards"`       // draw pile, index 0 drawn first
	DiscardPile []Card `json:"discardPile"` // most recent discard last
}

// NewStandard builds a shuffled 52-card deck. IDs are stable
// ("hearts-2" .. "spades-14") so hosts can reference cards across turns.
func NewStandard(src rng.Source) *Deck {
	d := &Deck{Cards: make([]Card, 0, 52)}
	for _, s := range Suits {
		for r := Rank(2); r <= Ace; r++ {
			d.Cards = append(d.Cards, Card{
				ID:   fmt.Sprintf("%s-%d", s, int(r)),
				Rank: r,
				Suit: s,
			})
		}
	}
	d.Shuffle(src)
	return d
}

// Shuffle randomizes the draw pile in place (Fisher-Yates).
func (d *Deck) Shuffle(src rng.Source) {
	for i := len(d.Cards) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// Size returns the combined number of cards across both piles.
func (d *Deck) Size() int { return len(d.Cards) + len(d.DiscardPile) }

// Remaining returns the number of cards left in the draw pile.
func (d *Deck) Remaining() int { return len(d.Cards) }

// Draw removes up to n cards from the top of the draw pile. When the pile
// runs dry mid-draw the discard pile is shuffled back in and drawing
// continues; if both piles are empty fewer than n cards are returned.
func (d *Deck) Draw(n int, src rng.Source) []Card {
	out := make([]Card, 0, n)
	for len(out) < n {
		if len(d.Cards) == 0 {
			if len(d.DiscardPile) == 0 {
				break
			}
			d.Cards = d.DiscardPile
			d.DiscardPile = nil
			d.Shuffle(src)
		}
		out = append(out, d.Cards[0])
		d.Cards = d.Cards[1:]
	}
	return out
}

// Discard moves the given cards onto the discard pile. Callers own the
// membership check: the cards must have been drawn from this deck and must
// not already sit in either pile.
func (d *Deck) Discard(cards ...Card) {
	d.DiscardPile = append(d.DiscardPile, cards...)
}

// Remove drops a card from the game entirely (glass shatter). Returns true
// if the id was found in either pile; held cards are the caller's problem.
func (d *Deck) Remove(id string) bool {
	for i, c := range d.Cards {
		if c.ID == id {
			d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
			return true
		}
	}
	for i, c := range d.DiscardPile {
		if c.ID == id {
			d.DiscardPile = append(d.DiscardPile[:i], d.DiscardPile[i+1:]...)
			return true
		}
	}
	return false
}
