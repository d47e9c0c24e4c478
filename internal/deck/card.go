// internal/deck/card.go
//
// Card definitions for the felt engine.
// Cards are immutable once created; identity is the ID string.

package deck

import "fmt"

// Suit is one of the four French suits.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Suits lists all suits in deck-building order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Rank is 2..14 where 11=J, 12=Q, 13=K, 14=A.
type Rank int

const (
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

// Enhancement is an optional permanent card upgrade applied by consumables.
type Enhancement string

const (
	EnhanceNone  Enhancement = ""
	EnhanceGold  Enhancement = "gold"  // pays gold when scored
	EnhanceGlass Enhancement = "glass" // xmult when scored, may shatter
	EnhanceSteel Enhancement = "steel" // xmult while held
)

// Card is a single playing card. The Wild/Gold/Glass accessors read the
// enhancement and flag fields; the struct itself is never mutated after
// creation except by ApplyEnhancement on a held copy.
type Card struct {
	ID   string `json:"id"`
	Rank Rank   `json:"rank"`
	Suit Suit   `json:"suit"`

	IsWild          bool        `json:"isWild,omitempty"`          // counts as any suit
	TriggerSlot     bool        `json:"triggerSlot,omitempty"`     // grants a free reel spin when scored
	TriggerRoulette bool        `json:"triggerRoulette,omitempty"` // grants wheel safe-zone when scored
	Enhancement     Enhancement `json:"enhancement,omitempty"`
}

// IsGold reports whether the card pays gold when it scores.
func (c Card) IsGold() bool { return c.Enhancement == EnhanceGold }

// IsGlass reports whether the card is a glass card.
func (c Card) IsGlass() bool { return c.Enhancement == EnhanceGlass }

// ChipValue returns the chip contribution of the card when it scores.
// Number cards pay face value, courts pay 10, aces pay 11.
func (c Card) ChipValue() int {
	switch {
	case c.Rank == Ace:
		return 11
	case c.Rank >= Jack:
		return 10
	default:
		return int(c.Rank)
	}
}

// Label returns a short human-readable name, e.g. "K♠" style "K-spades".
func (c Card) Label() string {
	r := ""
	switch c.Rank {
	case Ace:
		r = "A"
	case King:
		r = "K"
	case Queen:
		r = "Q"
	case Jack:
		r = "J"
	default:
		r = fmt.Sprintf("%d", int(c.Rank))
	}
	return r + "-" + string(c.Suit)
}
