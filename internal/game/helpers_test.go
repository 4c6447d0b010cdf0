package game

import (
	"fmt"
	rand "math/rand/v2"
	"testing"

	"github.com/coder/quartz"
	"github.com/lox/dixit/internal/deck"
	"github.com/lox/dixit/internal/randutil"
	"github.com/stretchr/testify/require"
)

func testSets(sizes ...int) []*deck.CardSet {
	sets := make([]*deck.CardSet, len(sizes))
	for i, n := range sizes {
		images := make([]string, n)
		for j := range images {
			images[j] = fmt.Sprintf("static/cards/set%d/%02d.jpg", i, j)
		}
		sets[i] = deck.NewCardSet(fmt.Sprintf("set%d", i), images, i == 0)
	}
	return sets
}

func newRNG() *rand.Rand {
	return randutil.New(42)
}

func testSettings() Settings {
	return Settings{
		Name:          "test",
		MaxPlayers:    6,
		MaxScore:      Unbounded,
		MaxClueLength: 20,
	}
}

type gameOpts struct {
	cards    int
	settings Settings
	clock    quartz.Clock
}

// newTestGame creates a game in Begin with users joined in order, the first
// user being the host.
func newTestGame(t *testing.T, cards int, users ...UserID) *Game {
	t.Helper()
	return newTestGameWith(t, gameOpts{cards: cards, settings: testSettings()}, users...)
}

func newTestGameWith(t *testing.T, o gameOpts, users ...UserID) *Game {
	t.Helper()
	if o.clock == nil {
		o.clock = quartz.NewMock(t)
	}
	g := New(randutil.New(42), users[0], testSets(o.cards), o.settings, DefaultLimits(), WithClock(o.clock))
	palette := Palette()
	for i, u := range users {
		require.NoError(t, g.AddPlayer(u, palette[i]))
	}
	return g
}

// startedGame creates and starts a game, returning it with the users in turn order
func startedGame(t *testing.T, cards int, users ...UserID) (*Game, []UserID) {
	t.Helper()
	g := newTestGame(t, cards, users...)
	require.NoError(t, g.StartGame())
	require.Equal(t, Clue, g.Phase())
	return g, g.Order()
}

func firstCard(t *testing.T, g *Game, u UserID) deck.Card {
	t.Helper()
	p, ok := g.Player(u)
	require.True(t, ok)
	hand := p.Hand()
	require.NotEmpty(t, hand)
	return hand[0]
}

// playCards has the clue-maker clue and every other player play their first card.
// It returns the card each user played.
func playCards(t *testing.T, g *Game) map[UserID]deck.Card {
	t.Helper()
	maker, ok := g.ClueMaker()
	require.True(t, ok)
	played := map[UserID]deck.Card{maker: firstCard(t, g, maker)}
	require.NoError(t, g.CreateClue(maker, "a clue", played[maker]))
	for _, u := range g.Order() {
		if u == maker {
			continue
		}
		played[u] = firstCard(t, g, u)
		require.NoError(t, g.PlayCard(u, played[u]))
	}
	require.Equal(t, Vote, g.Phase())
	return played
}

// playRound runs a full round where everybody finds the clue-maker's card
func playRound(t *testing.T, g *Game) {
	t.Helper()
	maker, _ := g.ClueMaker()
	played := playCards(t, g)
	for _, u := range g.Order() {
		if u != maker {
			require.NoError(t, g.CastVote(u, played[maker]))
		}
	}
}

func scores(g *Game) map[UserID]int {
	out := make(map[UserID]int)
	for _, p := range g.Players() {
		out[p.User] = p.Score()
	}
	return out
}

type snapshot struct {
	phase     Phase
	turn      int
	order     []UserID
	hands     map[UserID][]deck.Card
	scores    map[UserID]int
	colours   map[UserID]Colour
	remaining int
	played    int
	voted     int
}

func snap(g *Game) snapshot {
	s := snapshot{
		phase:     g.Phase(),
		turn:      g.Turn(),
		order:     g.Order(),
		hands:     make(map[UserID][]deck.Card),
		scores:    scores(g),
		colours:   g.Colours(),
		remaining: g.DeckRemaining(),
		played:    len(g.Round().played),
		voted:     len(g.Round().votes),
	}
	for _, p := range g.Players() {
		s.hands[p.User] = p.Hand()
	}
	return s
}
