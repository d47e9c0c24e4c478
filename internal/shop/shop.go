// internal/shop/shop.go
//
// Shop generation, pricing, and transactions.
// Generation and pricing are pure over (round, luck, rng, catalog); the
// orchestrator owns applying a purchase to the session.

package shop

import (
	"errors"
	"fmt"
	"math"

	"github.com/dkarger/felt/internal/catalog"
	"github.com/dkarger/felt/internal/effects"
	"github.com/dkarger/felt/internal/rng"
)

// ItemType discriminates what a shop slot sells.
type ItemType string

const (
	TypeJoker      ItemType = "joker"
	TypeVoucher    ItemType = "voucher"
	TypeConsumable ItemType = "consumable"
)

// Item is one purchasable slot. Sold items stay in the list, flagged.
type Item struct {
	ID     string   `json:"id"`     // shop-local id, e.g. "shop-2"
	Type   ItemType `json:"type"`
	ItemID string   `json:"itemId"` // catalog id of the underlying entity
	Cost   int      `json:"cost"`
	Sold   bool     `json:"sold"`
}

// State is the per-round shop.
type State struct {
	Items       []Item `json:"items"`
	RerollCost  int    `json:"rerollCost"`
	RerollsUsed int    `json:"rerollsUsed"`
}

var (
	ErrItemNotFound  = errors.New("shop item not found")
	ErrItemSold      = errors.New("shop item already sold")
	ErrNotEnoughGold = errors.New("not enough gold")
	ErrMaxJokers     = errors.New("joker slots full")
)

// rarity ladder used by the biased rarity pick.
var rarities = []effects.Rarity{effects.Common, effects.Uncommon, effects.Rare, effects.Legendary}

// pickRarity biases toward rarer entries at higher rounds and luck.
// Base weights 60/25/12/3; each step of round (and each 0.1 luck) shifts a
// little mass down the ladder.
func pickRarity(round int, luck float64, roll float64) effects.Rarity {
	shift := float64(round-1)*1.5 + luck*30
	w := []float64{60 - shift, 25, 12 + shift*0.7, 3 + shift*0.3}
	if w[0] < 10 {
		w[0] = 10
	}
	total := 0.0
	for _, x := range w {
		total += x
	}
	target := roll * total
	acc := 0.0
	for i, x := range w {
		acc += x
		if target < acc {
			return rarities[i]
		}
	}
	return rarities[len(rarities)-1]
}

// Price computes a slot's cost: base price per item type, rarity multiplier,
// and a mild per-round scaling. Vouchers carry no rarity; their catalog cost
// stands in for base*rarity.
func Price(p catalog.Pricing, typ ItemType, rarity effects.Rarity, voucherCost, round int) int {
	scale := 1 + p.RoundScaling*float64(round-1)
	if typ == TypeVoucher {
		return int(math.Round(float64(voucherCost) * scale))
	}
	base := float64(p.BasePrice[string(typ)])
	mult := p.RarityMult[rarity]
	if mult == 0 {
		mult = 1
	}
	return int(math.Round(base * mult * scale))
}

// Generate builds a fresh shop for the round. Slot types roll
// joker/consumable/voucher at 50/30/20; each slot then picks a catalog entry
// of the rolled rarity (falling back to any entry when the bucket is empty).
func Generate(data *catalog.Data, round int, luck float64, src rng.Source) *State {
	st := &State{RerollCost: data.Pricing.RerollBase}
	for i := 0; i < data.Pricing.ShopSlots; i++ {
		item := rollItem(data, round, luck, src)
		item.ID = fmt.Sprintf("shop-%d", i)
		st.Items = append(st.Items, item)
	}
	return st
}

func rollItem(data *catalog.Data, round int, luck float64, src rng.Source) Item {
	typeRoll := src.Float64()
	switch {
	case typeRoll < 0.5 && len(data.Jokers) > 0:
		r := pickRarity(round, luck, src.Float64())
		j := pickJoker(data.Jokers, r, src)
		return Item{Type: TypeJoker, ItemID: j.ID, Cost: Price(data.Pricing, TypeJoker, j.Rarity, 0, round)}
	case typeRoll < 0.8 && len(data.Consumables) > 0:
		r := pickRarity(round, luck, src.Float64())
		c := pickConsumable(data.Consumables, r, src)
		return Item{Type: TypeConsumable, ItemID: c.ID, Cost: Price(data.Pricing, TypeConsumable, c.Rarity, 0, round)}
	default:
		v := data.Vouchers[src.IntN(len(data.Vouchers))]
		return Item{Type: TypeVoucher, ItemID: v.ID, Cost: Price(data.Pricing, TypeVoucher, "", v.Cost, round)}
	}
}

func pickJoker(pool []effects.Joker, r effects.Rarity, src rng.Source) effects.Joker {
	var bucket []effects.Joker
	for _, j := range pool {
		if j.Rarity == r {
			bucket = append(bucket, j)
		}
	}
	if len(bucket) == 0 {
		bucket = pool
	}
	return bucket[src.IntN(len(bucket))]
}

func pickConsumable(pool []catalog.Consumable, r effects.Rarity, src rng.Source) catalog.Consumable {
	var bucket []catalog.Consumable
	for _, c := range pool {
		if c.Rarity == r {
			bucket = append(bucket, c)
		}
	}
	if len(bucket) == 0 {
		bucket = pool
	}
	return bucket[src.IntN(len(bucket))]
}

// Purchase is what Buy hands back for the orchestrator to apply.
type Purchase struct {
	Item Item
	Gold int // new gold balance
}

// Find looks up a slot by its shop id or its underlying catalog id.
func (s *State) Find(itemID string) (Item, bool) {
	for _, it := range s.Items {
		if it.ID == itemID || it.ItemID == itemID {
			return it, true
		}
	}
	return Item{}, false
}

// Buy validates and executes a purchase against the shop state. gold is the
// buyer's balance; ownedJokers/maxJokers enforce the joker cap. On success
// the item is marked sold and the remaining balance returned; on failure the
// state is untouched and a sentinel error names the reason.
func (s *State) Buy(itemID string, gold, ownedJokers, maxJokers int) (Purchase, error) {
	idx := -1
	for i, it := range s.Items {
		if it.ID == itemID || it.ItemID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Purchase{}, ErrItemNotFound
	}
	it := s.Items[idx]
	if it.Sold {
		return Purchase{}, ErrItemSold
	}
	if it.Type == TypeJoker && ownedJokers >= maxJokers {
		return Purchase{}, ErrMaxJokers
	}
	if gold < it.Cost {
		return Purchase{}, ErrNotEnoughGold
	}
	s.Items[idx].Sold = true
	return Purchase{Item: s.Items[idx], Gold: gold - it.Cost}, nil
}

// Reroll regenerates the item list if the buyer can afford the discounted
// reroll cost. Returns the new balance; the running cost then rises by the
// fixed increment. Failure leaves everything untouched.
func (s *State) Reroll(data *catalog.Data, round int, luck float64, discount, gold int, src rng.Source) (int, error) {
	cost := s.RerollCost - discount
	if cost < 0 {
		cost = 0
	}
	if gold < cost {
		return gold, ErrNotEnoughGold
	}
	fresh := Generate(data, round, luck, src)
	s.Items = fresh.Items
	s.RerollsUsed++
	s.RerollCost += data.Pricing.RerollIncrement
	return gold - cost, nil
}

// Interest pays out rate*gold at round end, capped. Vouchers declare both
// the rate and the cap; without an interest voucher both are zero.
func Interest(gold int, rate float64, max int) int {
	if rate <= 0 || gold <= 0 {
		return 0
	}
	earned := int(math.Floor(float64(gold) * rate))
	if max > 0 && earned > max {
		earned = max
	}
	return earned
}
