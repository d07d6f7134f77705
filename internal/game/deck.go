package game

import (
	"math/rand"
)

// CardDef is a quantity-weighted card definition used to build decks.
type CardDef struct {
	Card Card
	Qty  int
}

// Deck is an ordered pile of card instances. Index 0 is the top.
type Deck struct {
	cards []*Card
	rng   *rand.Rand
}

// NewDeck expands the definitions into individual instances. The deck is
// built in definition order; call Shuffle before play.
func NewDeck(defs []CardDef, rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	for _, def := range defs {
		qty := def.Qty
		if qty <= 0 {
			qty = 1
		}
		for i := 0; i < qty; i++ {
			d.cards = append(d.cards, instantiate(def.Card))
		}
	}
	return d
}

// Draw removes and returns the top card, or nil when the deck is empty.
func (d *Deck) Draw() *Card {
	if len(d.cards) == 0 {
		return nil
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c
}

// InsertTop places the card on top of the deck.
func (d *Deck) InsertTop(c *Card) {
	if c == nil {
		return
	}
	d.cards = append([]*Card{c}, d.cards...)
}

// InsertBottom places the card under the deck.
func (d *Deck) InsertBottom(c *Card) {
	if c == nil {
		return
	}
	d.cards = append(d.cards, c)
}

// Shuffle reorders the deck with a uniform Fisher-Yates pass.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Size returns the number of cards remaining.
func (d *Deck) Size() int { return len(d.cards) }
