package server

import (
	"cmp"
	"slices"
	"time"

	"github.com/lox/dixit/internal/deck"
	"github.com/lox/dixit/internal/game"
)

// Board is everything one user sees of a game. Cards, votes and owners are
// only present once the round has reached the point where they are public.
type Board struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	User           string            `json:"user"`
	Host           string            `json:"host"`
	Players        map[string]string `json:"players"`
	Colours        map[string]string `json:"colours"`
	IsHost         bool              `json:"isHost"`
	IsPlayer       bool              `json:"isPlayer"`
	HasPassword    bool              `json:"hasPassword"`
	MaxPlayers     int               `json:"maxPlayers"`
	MaxScore       *int              `json:"maxScore"`
	MaxClueLength  int               `json:"maxClueLength"`
	Scores         map[string]int    `json:"scores"`
	Order          []string          `json:"order"`
	Turn           int               `json:"turn"`
	Ranked         map[string]int    `json:"ranked"`
	Left           int               `json:"left"`
	Size           int               `json:"size"`
	DeckName       string            `json:"deckName"`
	State          string            `json:"state"`
	RequiresAction map[string]bool   `json:"requiresAction"`
	Round          RoundView         `json:"round"`
	Hand           []deck.Card       `json:"hand,omitempty"`
}

// RoundView is the public part of the current round
type RoundView struct {
	Clue      string            `json:"clue,omitempty"`
	ClueMaker string            `json:"clueMaker,omitempty"`
	Cards     []deck.Card       `json:"cards,omitempty"`
	Votes     map[string]string `json:"votes,omitempty"`
	Owners    map[string]string `json:"owners,omitempty"`
	Scores    map[string]int    `json:"scores"`
}

// Summary is one row of the game list
type Summary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	RelLastActive float64  `json:"relLastActive"`
	Host          string   `json:"host"`
	Players       []string `json:"players"`
	MaxPlayers    int      `json:"maxPlayers"`
	State         string   `json:"state"`
	Left          int      `json:"left"`
	Size          int      `json:"size"`
	TopScore      int      `json:"topScore"`
	MaxScore      *int     `json:"maxScore"`
	DeckName      string   `json:"deckName"`
	HasPassword   bool     `json:"hasPassword"`
	IsHost        bool     `json:"isHost"`
	IsPlayer      bool     `json:"isPlayer"`
}

// NameFunc resolves a user id to a display name
type NameFunc func(game.UserID) string

func renderBoard(id string, g *game.Game, viewer game.UserID, names NameFunc) Board {
	settings := g.Settings()
	players := g.Players()

	b := Board{
		ID:             id,
		Name:           settings.Name,
		User:           string(viewer),
		Host:           string(g.Host()),
		Players:        make(map[string]string, len(players)),
		Colours:        make(map[string]string, len(players)),
		HasPassword:    settings.PasswordHash != "",
		MaxPlayers:     settings.MaxPlayers,
		MaxScore:       optional(settings.MaxScore),
		MaxClueLength:  settings.MaxClueLength,
		Scores:         make(map[string]int, len(players)),
		Order:          make([]string, 0, len(players)),
		Turn:           g.Turn(),
		Left:           g.DeckRemaining(),
		Size:           g.DeckSize(),
		DeckName:       g.DeckName(),
		State:          g.Phase().String(),
		RequiresAction: make(map[string]bool, len(players)),
		Round:          renderRound(g.Round()),
	}
	b.IsHost = viewer == g.Host()

	for _, p := range players {
		puid := string(p.User)
		b.Players[puid] = names(p.User)
		b.Scores[puid] = p.Score()
		b.Order = append(b.Order, puid)
		b.RequiresAction[puid] = g.RequiresAction(p.User)
	}
	for u, c := range g.Colours() {
		b.Colours[string(u)] = string(c)
	}
	b.Ranked = rankPositions(b.Scores)

	if p, ok := g.Player(viewer); ok {
		b.IsPlayer = true
		if hand := p.Hand(); len(hand) > 0 {
			b.Hand = hand
		}
	}
	return b
}

func renderRound(r *game.Round) RoundView {
	var v RoundView
	if clue, ok := r.Clue(); ok {
		v.Clue = clue
	}
	if maker, ok := r.ClueMaker(); ok {
		v.ClueMaker = string(maker)
	}
	if cards, ok := r.Cards(); ok {
		v.Cards = cards
	}
	if votes, ok := r.Votes(); ok {
		v.Votes = cardIDs(votes)
	}
	if owners, ok := r.Owners(); ok {
		v.Owners = cardIDs(owners)
	}
	v.Scores = make(map[string]int)
	for u, s := range r.Scores() {
		v.Scores[string(u)] = s
	}
	return v
}

func renderSummary(id string, g *game.Game, viewer game.UserID, names NameFunc, now time.Time) Summary {
	settings := g.Settings()
	s := Summary{
		ID:            id,
		Name:          settings.Name,
		RelLastActive: now.Sub(g.LastActive()).Seconds(),
		Host:          names(g.Host()),
		Players:       []string{},
		MaxPlayers:    settings.MaxPlayers,
		State:         g.Phase().String(),
		Left:          g.DeckRemaining(),
		Size:          g.DeckSize(),
		TopScore:      g.TopScore(),
		MaxScore:      optional(settings.MaxScore),
		DeckName:      g.DeckName(),
		HasPassword:   settings.PasswordHash != "",
		IsHost:        viewer == g.Host(),
	}
	for _, p := range g.Players() {
		s.Players = append(s.Players, names(p.User))
	}
	_, s.IsPlayer = g.Player(viewer)
	return s
}

func cardIDs(m map[game.UserID]deck.Card) map[string]string {
	out := make(map[string]string, len(m))
	for u, c := range m {
		out[string(u)] = c.ID
	}
	return out
}

// rankPositions assigns each key its position in ascending score order.
// Equal scores share a position and positions have no gaps.
func rankPositions(scores map[string]int) map[string]int {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return cmp.Or(cmp.Compare(scores[a], scores[b]), cmp.Compare(a, b))
	})

	ranked := make(map[string]int, len(keys))
	pos := -1
	for i, k := range keys {
		if i == 0 || scores[k] != scores[keys[i-1]] {
			pos++
		}
		ranked[k] = pos
	}
	return ranked
}

func optional(v int) *int {
	if v == game.Unbounded {
		return nil
	}
	return &v
}
