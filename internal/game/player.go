package game

import "github.com/lox/dixit/internal/deck"

// UserID is the opaque identity of a user. The game only compares it.
type UserID string

// Player is a user's view of one game: the cards in hand and the score so far
type Player struct {
	User  UserID
	hand  []deck.Card
	score int
}

func newPlayer(user UserID) *Player {
	return &Player{User: user}
}

// Deal adds card to the hand. The zero card (from an empty deck) is ignored.
func (p *Player) Deal(card deck.Card) {
	if card.IsZero() {
		return
	}
	p.hand = append(p.hand, card)
}

// HasCard returns true if card is in the hand
func (p *Player) HasCard(card deck.Card) bool {
	return p.indexOf(card) >= 0
}

// RemoveCard takes card out of the hand
func (p *Player) RemoveCard(card deck.Card) error {
	i := p.indexOf(card)
	if i < 0 {
		return NewError(CodeNotHaveCard, card.ID)
	}
	p.hand = append(p.hand[:i], p.hand[i+1:]...)
	return nil
}

// Hand returns a copy of the hand in the order the cards were dealt
func (p *Player) Hand() []deck.Card {
	out := make([]deck.Card, len(p.hand))
	copy(out, p.hand)
	return out
}

// Score returns the cumulative score
func (p *Player) Score() int {
	return p.score
}

func (p *Player) indexOf(card deck.Card) int {
	for i, c := range p.hand {
		if c.ID == card.ID {
			return i
		}
	}
	return -1
}

func (p *Player) clearHand() {
	p.hand = nil
}
