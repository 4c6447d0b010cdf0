package server

import (
	"cmp"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/dixit/internal/deck"
	"github.com/lox/dixit/internal/game"
	"github.com/lox/dixit/internal/gameid"
	"github.com/lox/dixit/internal/randutil"
)

// ErrGameNotFound is returned for unknown game ids
var ErrGameNotFound = errors.New("game not found")

// CreateRequest holds the raw form values of a new game. Numeric fields are
// parsed and validated by Lobby.Create.
type CreateRequest struct {
	Name          string
	Password      string
	CardSets      []string
	MaxPlayers    string
	MaxScore      string
	MaxClueLength string
}

// Lobby tracks every live game
type Lobby struct {
	logger *log.Logger
	clock  quartz.Clock
	names  NameFunc
	limits game.Limits
	sets   []*deck.CardSet
	ids    *gameid.Generator

	mu      sync.RWMutex
	tables  map[string]*Table
	created int
	rng     *rand.Rand
}

// NewLobby constructs an empty lobby. Each game gets its own generator
// derived from rng.
func NewLobby(logger *log.Logger, rng *rand.Rand, clock quartz.Clock, names NameFunc, limits game.Limits, sets []*deck.CardSet) *Lobby {
	return &Lobby{
		logger: logger.WithPrefix("lobby"),
		clock:  clock,
		names:  names,
		limits: limits,
		sets:   sets,
		ids:    gameid.NewGenerator(nil),
		tables: make(map[string]*Table),
		rng:    rng,
	}
}

// Limits returns the limits games are validated against
func (l *Lobby) Limits() game.Limits {
	return l.limits
}

// CardSets returns the configured card sets in index order
func (l *Lobby) CardSets() []*deck.CardSet {
	return slices.Clone(l.sets)
}

// Create validates req and registers a new game hosted by host
func (l *Lobby) Create(host game.UserID, req CreateRequest) (*Table, error) {
	sets, err := l.selectSets(req.CardSets)
	if err != nil {
		return nil, err
	}

	maxScore := game.Unbounded
	if req.MaxScore != "" {
		if maxScore, err = atoi(req.MaxScore); err != nil {
			return nil, err
		}
	}
	maxPlayers, err := atoi(req.MaxPlayers)
	if err != nil {
		return nil, err
	}
	maxClueLength, err := atoi(req.MaxClueLength)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("Game %d", l.created+1)
	}
	settings := game.Settings{
		Name:          name,
		MaxPlayers:    maxPlayers,
		MaxScore:      maxScore,
		MaxClueLength: maxClueLength,
		PasswordHash:  HashPassword(req.Password),
	}
	if err := settings.Validate(l.limits); err != nil {
		return nil, err
	}

	g := game.New(randutil.Child(l.rng), host, sets, settings, l.limits, game.WithClock(l.clock))
	id := l.ids.Generate()
	t := newTable(id, g, l.names, l.clock, l.logger)
	l.tables[id] = t
	l.created++

	l.logger.Info("Game created", "game", id, "name", name, "host", host, "deck", g.DeckName(), "cards", g.DeckSize())
	return t, nil
}

func (l *Lobby) selectSets(indices []string) ([]*deck.CardSet, error) {
	if len(indices) == 0 {
		var sets []*deck.CardSet
		for _, cs := range l.sets {
			if cs.Default {
				sets = append(sets, cs)
			}
		}
		if len(sets) == 0 {
			return nil, game.NewError(game.CodeIllegalRange, "card_sets")
		}
		return sets, nil
	}

	sets := make([]*deck.CardSet, 0, len(indices))
	for _, s := range indices {
		i, err := atoi(s)
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= len(l.sets) {
			return nil, game.NewError(game.CodeIllegalRange, i)
		}
		sets = append(sets, l.sets[i])
	}
	return sets, nil
}

// Get returns the table with the given id
func (l *Lobby) Get(id string) (*Table, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return t, nil
}

// List returns every table, most recently active first
func (l *Lobby) List() []*Table {
	l.mu.RLock()
	tables := make([]*Table, 0, len(l.tables))
	for _, t := range l.tables {
		tables = append(tables, t)
	}
	l.mu.RUnlock()

	active := make(map[*Table]time.Time, len(tables))
	for _, t := range tables {
		active[t] = t.LastActive()
	}
	slices.SortFunc(tables, func(a, b *Table) int {
		return cmp.Or(active[b].Compare(active[a]), cmp.Compare(a.ID, b.ID))
	})
	return tables
}

// Len returns the number of live games
func (l *Lobby) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tables)
}

// Delete removes a game and disconnects its watchers
func (l *Lobby) Delete(id string) bool {
	l.mu.Lock()
	t, ok := l.tables[id]
	delete(l.tables, id)
	l.mu.Unlock()

	if ok {
		t.close()
	}
	return ok
}

// ExpireIdle deletes every game that has been inactive for longer than ttl
// and returns their ids
func (l *Lobby) ExpireIdle(now time.Time, ttl time.Duration) []string {
	var expired []string
	for _, t := range l.List() {
		if now.Sub(t.LastActive()) > ttl && l.Delete(t.ID) {
			expired = append(expired, t.ID)
		}
	}
	if len(expired) > 0 {
		l.logger.Info("Expired idle games", "count", len(expired), "remaining", l.Len())
	}
	return expired
}

func atoi(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, game.NewError(game.CodeNotAnInteger, s)
	}
	return v, nil
}
