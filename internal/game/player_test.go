package game

import (
	"testing"

	"github.com/lox/dixit/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerHand(t *testing.T) {
	t.Parallel()

	p := newPlayer("a")
	x := deck.Card{ID: "x", Image: "x.jpg"}
	y := deck.Card{ID: "y", Image: "y.jpg"}

	p.Deal(x)
	p.Deal(deck.Card{})
	p.Deal(y)
	assert.Equal(t, []deck.Card{x, y}, p.Hand())
	assert.True(t, p.HasCard(x))

	require.NoError(t, p.RemoveCard(x))
	assert.False(t, p.HasCard(x))
	assert.Equal(t, []deck.Card{y}, p.Hand())

	err := p.RemoveCard(x)
	assert.True(t, IsCode(err, CodeNotHaveCard))
	assert.Equal(t, 0, p.Score())
}

func TestHandIsCopied(t *testing.T) {
	t.Parallel()

	p := newPlayer("a")
	p.Deal(deck.Card{ID: "x"})
	hand := p.Hand()
	hand[0] = deck.Card{ID: "changed"}
	assert.True(t, p.HasCard(deck.Card{ID: "x"}))
}
