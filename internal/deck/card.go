package deck

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Card is a single picture card. Cards are created when a card set is built
// and never change afterwards.
type Card struct {
	ID    string `json:"cid"`
	Image string `json:"url"`
}

// IsZero reports whether c is the absent card returned by an exhausted deck.
func (c Card) IsZero() bool {
	return c.ID == ""
}

// String returns the card id
func (c Card) String() string {
	return c.ID
}

// CardSet is a named, ordered collection of cards
type CardSet struct {
	Name    string
	Default bool
	cards   []Card
}

// NewCardSet builds a card set from image references. Card ids are namespaced
// with a random per-set prefix so that decks built from several sets never
// contain two cards with the same id.
func NewCardSet(name string, images []string, isDefault bool) *CardSet {
	prefix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return newCardSet(name, prefix, images, isDefault)
}

func newCardSet(name, prefix string, images []string, isDefault bool) *CardSet {
	cs := &CardSet{
		Name:    name,
		Default: isDefault,
		cards:   make([]Card, len(images)),
	}
	for i, img := range images {
		cs.cards[i] = Card{ID: fmt.Sprintf("card%s%d", prefix, i), Image: img}
	}
	return cs
}

// Cards returns a copy of the cards in set order
func (cs *CardSet) Cards() []Card {
	out := make([]Card, len(cs.cards))
	copy(out, cs.cards)
	return out
}

// Size returns the number of cards in the set
func (cs *CardSet) Size() int {
	return len(cs.cards)
}
