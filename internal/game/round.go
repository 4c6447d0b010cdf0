package game

import (
	"maps"
	rand "math/rand/v2"
	"slices"

	"github.com/lox/dixit/internal/deck"
)

// Round holds everything that happens between one clue and the scoring of
// the votes for it. Game replaces the Round each time a clue is created.
type Round struct {
	players   map[UserID]*Player
	clue      string
	clueMaker UserID
	real      bool

	played map[UserID]deck.Card
	votes  map[UserID]deck.Card
	voters map[string][]UserID // card id -> voters, self-votes excluded
	scores map[UserID]int

	// reveal is the order played cards are shown in, fixed at construction so
	// it carries no information about who played first.
	reveal []UserID
}

func newRound(players map[UserID]*Player, clue string, clueMaker UserID, rng *rand.Rand) *Round {
	r := &Round{
		players:   make(map[UserID]*Player, len(players)),
		clue:      clue,
		clueMaker: clueMaker,
		real:      true,
		played:    make(map[UserID]deck.Card),
		votes:     make(map[UserID]deck.Card),
		voters:    make(map[string][]UserID),
		scores:    make(map[UserID]int),
	}
	for u, p := range players {
		r.players[u] = p
		r.reveal = append(r.reveal, u)
	}
	// Sort first so the permutation depends only on rng, not map iteration.
	slices.Sort(r.reveal)
	rng.Shuffle(len(r.reveal), func(i, j int) {
		r.reveal[i], r.reveal[j] = r.reveal[j], r.reveal[i]
	})
	return r
}

// zerothRound is the placeholder used before the first clue. It has one
// phantom player so that HasEveryonePlayed and HasEveryoneVoted are false.
func zerothRound() *Round {
	return &Round{
		players: map[UserID]*Player{"": nil},
		played:  make(map[UserID]deck.Card),
		votes:   make(map[UserID]deck.Card),
		voters:  make(map[string][]UserID),
		scores:  make(map[UserID]int),
		reveal:  []UserID{""},
	}
}

// PlayCard moves card from the user's hand into the round
func (r *Round) PlayCard(user UserID, card deck.Card) error {
	p := r.players[user]
	if p == nil {
		return NewError(CodePlayUnknownUser, user)
	}
	if err := p.RemoveCard(card); err != nil {
		return err
	}
	r.played[user] = card
	return nil
}

// CastVote records the user's vote. Votes for the user's own card are kept
// but never count towards that card's voters.
func (r *Round) CastVote(user UserID, card deck.Card) {
	r.votes[user] = card
	if own, ok := r.played[user]; !ok || own.ID != card.ID {
		r.voters[card.ID] = append(r.voters[card.ID], user)
	}
}

func (r *Round) score(user UserID, delta int) {
	r.players[user].score += delta
	r.scores[user] += delta
}

// Clue returns the clue text, or false for the placeholder round
func (r *Round) Clue() (string, bool) {
	return r.clue, r.real
}

// ClueMaker returns the user who made the clue, or false for the placeholder round
func (r *Round) ClueMaker() (UserID, bool) {
	return r.clueMaker, r.real
}

// HasCard returns true if card was played this round
func (r *Round) HasCard(card deck.Card) bool {
	for _, c := range r.played {
		if c.ID == card.ID {
			return true
		}
	}
	return false
}

// HasPlayed returns true if user already played a card this round
func (r *Round) HasPlayed(user UserID) bool {
	_, ok := r.played[user]
	return ok
}

// HasVoted returns true if user already voted this round
func (r *Round) HasVoted(user UserID) bool {
	_, ok := r.votes[user]
	return ok
}

// HasEveryonePlayed returns true once every player in the round has played
func (r *Round) HasEveryonePlayed() bool {
	return len(r.played) == len(r.players)
}

// HasEveryoneVoted returns true once every player in the round has voted
func (r *Round) HasEveryoneVoted() bool {
	return len(r.votes) == len(r.players)
}

// PlayedCard returns the card user played
func (r *Round) PlayedCard(user UserID) (deck.Card, bool) {
	c, ok := r.played[user]
	return c, ok
}

// Voters returns the users that voted for card, excluding its owner
func (r *Round) Voters(card deck.Card) []UserID {
	return slices.Clone(r.voters[card.ID])
}

// Cards returns the played cards in reveal order. It reports false until
// every player has played.
func (r *Round) Cards() ([]deck.Card, bool) {
	if !r.HasEveryonePlayed() {
		return nil, false
	}
	cards := make([]deck.Card, 0, len(r.reveal))
	for _, u := range r.reveal {
		cards = append(cards, r.played[u])
	}
	return cards, true
}

// Votes returns who voted for which card. It reports false until every
// player has voted.
func (r *Round) Votes() (map[UserID]deck.Card, bool) {
	if !r.HasEveryoneVoted() {
		return nil, false
	}
	return maps.Clone(r.votes), true
}

// Owners returns who played which card. It reports false until every player
// has voted.
func (r *Round) Owners() (map[UserID]deck.Card, bool) {
	if !r.HasEveryoneVoted() {
		return nil, false
	}
	return maps.Clone(r.played), true
}

// Scores returns the positive score deltas earned this round
func (r *Round) Scores() map[UserID]int {
	out := make(map[UserID]int)
	for u, s := range r.scores {
		if s > 0 {
			out[u] = s
		}
	}
	return out
}
