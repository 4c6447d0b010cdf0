package game

import (
	"github.com/coder/quartz"
	"github.com/lox/dixit/internal/deck"
)

// Option configures a Game during creation
type Option func(*Game)

// WithClock sets the clock used for activity timestamps. Defaults to the real clock.
func WithClock(clock quartz.Clock) Option {
	return func(g *Game) {
		g.clock = clock
	}
}

// WithDeck replaces the deck built from the card sets. Intended for tests that
// need a known card order.
func WithDeck(d *deck.Deck) Option {
	return func(g *Game) {
		g.deck = d
	}
}
