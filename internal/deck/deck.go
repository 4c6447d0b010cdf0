package deck

import (
	"errors"
	rand "math/rand/v2"
	"strings"
)

// ErrUnknownCard is returned by Lookup for ids that are not part of the deck
var ErrUnknownCard = errors.New("unknown card")

// Deck is the pool of cards for one game. Cards are dealt from the front and
// never returned; Reset is only used to rewind a game that failed to start.
type Deck struct {
	name   string
	cards  []Card
	lookup map[string]Card
	dealt  int
	rng    *rand.Rand
}

// NewDeck builds a shuffled deck from the given card sets
func NewDeck(sets []*CardSet, rng *rand.Rand) *Deck {
	names := make([]string, 0, len(sets))
	d := &Deck{
		lookup: make(map[string]Card),
		rng:    rng,
	}
	for _, cs := range sets {
		names = append(names, cs.Name)
		for _, c := range cs.cards {
			d.cards = append(d.cards, c)
			d.lookup[c.ID] = c
		}
	}
	d.name = strings.Join(names, ", ")
	d.Shuffle()
	return d
}

// Shuffle randomizes the undealt order of the whole deck using Fisher-Yates
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Reset collects every card back and optionally reshuffles
func (d *Deck) Reset(shuffle bool) {
	d.dealt = 0
	if shuffle {
		d.Shuffle()
	}
}

// Deal returns the next card, or false when the deck is exhausted
func (d *Deck) Deal() (Card, bool) {
	if d.IsEmpty() {
		return Card{}, false
	}
	d.dealt++
	return d.cards[d.dealt-1], true
}

// Lookup returns the card with the given id
func (d *Deck) Lookup(id string) (Card, error) {
	c, ok := d.lookup[id]
	if !ok {
		return Card{}, ErrUnknownCard
	}
	return c, nil
}

// IsEmpty returns true if there are no cards left to deal
func (d *Deck) IsEmpty() bool {
	return d.dealt == len(d.cards)
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return len(d.cards) - d.dealt
}

// Dealt returns the number of cards dealt so far
func (d *Deck) Dealt() int {
	return d.dealt
}

// Size returns the total number of cards in the deck
func (d *Deck) Size() int {
	return len(d.cards)
}

// Name is the comma separated list of card set names the deck was built from
func (d *Deck) Name() string {
	return d.name
}
