package game

import (
	"maps"
	rand "math/rand/v2"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/coder/quartz"
	"github.com/lox/dixit/internal/deck"
)

// Scoring and dealing constants
const (
	HandSize     = 6
	ScoreTrick   = 1
	ScoreLoss    = 2
	ScoreCorrect = 3
)

// Game is the state machine for one game. See the package documentation for
// the phase diagram and concurrency rules.
type Game struct {
	host     UserID
	deck     *deck.Deck
	settings Settings
	limits   Limits

	players map[UserID]*Player
	order   []UserID
	colours map[UserID]Colour
	banned  map[UserID]bool

	phase      Phase
	turn       int
	round      *Round
	lastActive time.Time

	rng   *rand.Rand
	clock quartz.Clock
}

// New creates a game in the Begin phase with a deck built from sets. The RNG
// is required so that shuffles are reproducible from a seed.
func New(rng *rand.Rand, host UserID, sets []*deck.CardSet, settings Settings, limits Limits, opts ...Option) *Game {
	if rng == nil {
		panic("rng is required for game creation")
	}
	g := &Game{
		host:     host,
		settings: settings,
		limits:   limits,
		players:  make(map[UserID]*Player),
		colours:  make(map[UserID]Colour),
		banned:   make(map[UserID]bool),
		rng:      rng,
		clock:    quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.deck == nil {
		g.deck = deck.NewDeck(sets, rng)
	}
	g.reset(false)
	g.ping()
	return g
}

func (g *Game) reset(shuffle bool) {
	g.phase = Begin
	g.round = zerothRound()
	g.turn = 0
	g.deck.Reset(shuffle)
}

func (g *Game) ping() {
	g.lastActive = g.clock.Now()
}

// AddPlayer joins user to the game with the chosen colour. Joining again
// changes the colour.
func (g *Game) AddPlayer(user UserID, colour Colour) error {
	if g.phase != Begin {
		return NewError(CodeBeginBadState, nil)
	}
	_, joined := g.players[user]
	if !joined && len(g.players) >= g.settings.MaxPlayers {
		return NewError(CodeJoinFullRoom, nil)
	}
	if !IsColour(colour) {
		return NewError(CodeNotAColour, colour)
	}
	for u, c := range g.colours {
		if c == colour && u != user {
			return NewError(CodeColourTaken, colour)
		}
	}
	if g.banned[user] {
		return NewError(CodeJoinBanned, nil)
	}

	if !joined {
		g.players[user] = newPlayer(user)
		g.order = append(g.order, user)
	}
	g.colours[user] = colour
	g.ping()
	return nil
}

// KickPlayer removes user from the game. A permanent kick also bans the user.
func (g *Game) KickPlayer(user UserID, permanent bool) error {
	if g.phase == Play || g.phase == Vote {
		return NewError(CodeKickBadState, nil)
	}
	if _, ok := g.players[user]; !ok {
		return NewError(CodeKickUnknownUser, user)
	}
	if g.phase != Begin && len(g.players) <= g.limits.MinPlayers {
		return NewError(CodeNotEnoughPlayers, nil)
	}

	delete(g.players, user)
	delete(g.colours, user)
	pos := slices.Index(g.order, user)
	g.order = slices.Delete(g.order, pos, pos+1)

	// Keep the turn pointing at the same player
	if g.turn > pos {
		g.turn--
	}
	if len(g.order) > 0 {
		g.turn %= len(g.order)
	} else {
		g.turn = 0
	}

	if permanent {
		g.banned[user] = true
	}
	g.ping()
	return nil
}

// StartGame shuffles the turn order and deals a hand to every player. If the
// deck runs out while dealing, the game is rewound to Begin.
func (g *Game) StartGame() error {
	if g.phase != Begin {
		return NewError(CodeBeginBadState, nil)
	}
	if len(g.players) < g.limits.MinPlayers {
		return NewError(CodeNotEnoughPlayers, len(g.players))
	}

	joinOrder := slices.Clone(g.order)
	g.rng.Shuffle(len(g.order), func(i, j int) {
		g.order[i], g.order[j] = g.order[j], g.order[i]
	})
	for _, user := range g.order {
		p := g.players[user]
		for range HandSize {
			card, ok := g.deck.Deal()
			if !ok {
				g.rewind(joinOrder)
				return NewError(CodeDeckTooSmall, g.deck.Size())
			}
			p.Deal(card)
		}
	}

	g.phase = Clue
	g.ping()
	return nil
}

func (g *Game) rewind(order []UserID) {
	for _, p := range g.players {
		p.clearHand()
	}
	g.order = order
	g.reset(true)
}

// CreateClue starts a new round: the clue-maker gives a clue and plays the
// matching card.
func (g *Game) CreateClue(user UserID, clue string, card deck.Card) error {
	if g.phase != Clue {
		return NewError(CodeClueBadState, nil)
	}
	if maker, _ := g.ClueMaker(); user != maker {
		return NewError(CodeClueNotTurn, nil)
	}
	n := utf8.RuneCountInString(clue)
	if n < g.limits.MinClueLength {
		return NewError(CodeClueTooShort, n)
	}
	if n > g.settings.MaxClueLength {
		return NewError(CodeClueTooLong, n)
	}
	if !g.players[user].HasCard(card) {
		return NewError(CodeNotHaveCard, card.ID)
	}

	g.round = newRound(g.players, clue, user, g.rng)
	if err := g.round.PlayCard(user, card); err != nil {
		return err
	}
	g.dealTo(user)
	g.phase = Play
	g.ping()
	return nil
}

// PlayCard submits a card for the current clue. Once everyone has played the
// clue-maker's own vote is registered and voting starts.
func (g *Game) PlayCard(user UserID, card deck.Card) error {
	if g.phase != Play {
		return NewError(CodePlayBadState, nil)
	}
	maker, _ := g.ClueMaker()
	if user == maker {
		return NewError(CodePlayNotTurn, nil)
	}
	p, ok := g.players[user]
	if !ok {
		return NewError(CodePlayUnknownUser, user)
	}
	if g.round.HasPlayed(user) {
		return NewError(CodePlayAlready, nil)
	}
	if !p.HasCard(card) {
		return NewError(CodeNotHaveCard, card.ID)
	}

	if err := g.round.PlayCard(user, card); err != nil {
		return err
	}
	g.dealTo(user)
	if g.round.HasEveryonePlayed() {
		own, _ := g.round.PlayedCard(maker)
		g.round.CastVote(maker, own)
		g.phase = Vote
	}
	g.ping()
	return nil
}

// CastVote records a vote for one of the played cards. The last vote scores
// the round and moves on to the next clue, or ends the game.
func (g *Game) CastVote(user UserID, card deck.Card) error {
	if g.phase != Vote {
		return NewError(CodeVoteBadState, nil)
	}
	if maker, _ := g.ClueMaker(); user == maker {
		return NewError(CodeVoteNotTurn, nil)
	}
	if _, ok := g.players[user]; !ok {
		return NewError(CodeVoteUnknownUser, user)
	}
	if !g.round.HasCard(card) {
		return NewError(CodeVoteInvalid, card.ID)
	}
	if g.round.HasVoted(user) {
		return NewError(CodeVoteAlready, nil)
	}

	g.round.CastVote(user, card)
	if g.round.HasEveryoneVoted() {
		g.scoreRound()
		g.turn = (g.turn + 1) % len(g.order)
		g.phase = Clue
		if g.deck.IsEmpty() || g.TopScore() >= g.settings.MaxScore {
			g.phase = End
		}
	}
	g.ping()
	return nil
}

// scoreRound awards points for the completed round. The clue-maker only
// scores when some, but not all, of the other players found their card.
func (g *Game) scoreRound() {
	maker, _ := g.ClueMaker()
	for user := range g.players {
		own, _ := g.round.PlayedCard(user)
		v := g.round.voters[own.ID]
		if user != maker {
			g.round.score(user, ScoreTrick*len(v))
			continue
		}
		if len(v) == 0 || len(v) == len(g.players)-1 {
			for u := range g.players {
				if u != maker {
					g.round.score(u, ScoreLoss)
				}
			}
		} else {
			g.round.score(maker, ScoreCorrect)
			for _, u := range v {
				g.round.score(u, ScoreCorrect)
			}
		}
	}
}

func (g *Game) dealTo(user UserID) {
	if card, ok := g.deck.Deal(); ok {
		g.players[user].Deal(card)
	}
}

// GetCard looks up a card of this game's deck by id
func (g *Game) GetCard(id string) (deck.Card, error) {
	c, err := g.deck.Lookup(id)
	if err != nil {
		return deck.Card{}, NewError(CodeUnknownCard, id)
	}
	return c, nil
}

// RequiresAction reports whether the game is waiting on user
func (g *Game) RequiresAction(user UserID) bool {
	switch g.phase {
	case Begin:
		return user == g.host && len(g.players) >= g.limits.MinPlayers
	case Clue:
		maker, ok := g.ClueMaker()
		return ok && maker == user
	case Play:
		return !g.round.HasPlayed(user)
	case Vote:
		return !g.round.HasVoted(user)
	default:
		return false
	}
}

// ClueMaker returns the user whose turn it is to make a clue
func (g *Game) ClueMaker() (UserID, bool) {
	if len(g.order) == 0 {
		return "", false
	}
	return g.order[g.turn], true
}

// Phase returns the current phase
func (g *Game) Phase() Phase {
	return g.phase
}

// Turn returns the index into Order of the current clue-maker
func (g *Game) Turn() int {
	return g.turn
}

// Order returns the turn order
func (g *Game) Order() []UserID {
	return slices.Clone(g.order)
}

// Host returns the user who created the game
func (g *Game) Host() UserID {
	return g.host
}

// Settings returns the creation parameters
func (g *Game) Settings() Settings {
	return g.settings
}

// Limits returns the limits the game validates against
func (g *Game) Limits() Limits {
	return g.limits
}

// Player returns the joined player for user
func (g *Game) Player(user UserID) (*Player, bool) {
	p, ok := g.players[user]
	return p, ok
}

// Players returns the joined players in turn order
func (g *Game) Players() []*Player {
	out := make([]*Player, 0, len(g.order))
	for _, u := range g.order {
		out = append(out, g.players[u])
	}
	return out
}

// Colours returns each joined player's colour
func (g *Game) Colours() map[UserID]Colour {
	return maps.Clone(g.colours)
}

// IsBanned reports whether user was permanently kicked
func (g *Game) IsBanned(user UserID) bool {
	return g.banned[user]
}

// Round returns the current round. Before the first clue this is a
// placeholder round with no clue.
func (g *Game) Round() *Round {
	return g.round
}

// TopScore returns the highest score among joined players
func (g *Game) TopScore() int {
	top := 0
	for _, p := range g.players {
		top = max(top, p.score)
	}
	return top
}

// DeckRemaining returns the number of undealt cards
func (g *Game) DeckRemaining() int {
	return g.deck.Remaining()
}

// DeckSize returns the total number of cards in the deck
func (g *Game) DeckSize() int {
	return g.deck.Size()
}

// DeckName returns the names of the card sets the deck was built from
func (g *Game) DeckName() string {
	return g.deck.Name()
}

// LastActive returns the time of the last successful command
func (g *Game) LastActive() time.Time {
	return g.lastActive
}
