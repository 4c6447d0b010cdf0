package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/dixit/internal/game"
)

// Command names a player action on a table
type Command string

const (
	CommandJoin  Command = "join"
	CommandStart Command = "start"
	CommandClue  Command = "clue"
	CommandPlay  Command = "play"
	CommandVote  Command = "vote"
	CommandKick  Command = "kick"
)

// CommandRequest carries the arguments of every command. Each command reads
// only the fields it needs.
type CommandRequest struct {
	Colour    string `json:"colour,omitempty"`
	Clue      string `json:"clue,omitempty"`
	CardID    string `json:"cid,omitempty"`
	Target    string `json:"puid,omitempty"`
	Permanent bool   `json:"permanent,omitempty"`
	Password  string `json:"password,omitempty"`
}

// Table owns one game. Every command and every read of the game happens
// under the table's mutex, which also guards the subscriber set.
type Table struct {
	ID string

	logger *log.Logger
	clock  quartz.Clock
	names  NameFunc

	mu          sync.Mutex
	game        *game.Game
	subscribers map[*Connection]struct{}
}

func newTable(id string, g *game.Game, names NameFunc, clock quartz.Clock, logger *log.Logger) *Table {
	return &Table{
		ID:          id,
		logger:      logger.With("game", id),
		clock:       clock,
		names:       names,
		game:        g,
		subscribers: make(map[*Connection]struct{}),
	}
}

// Do runs fn with exclusive access to the game. When fn succeeds every
// subscriber is sent its fresh board.
func (t *Table) Do(fn func(*game.Game) error) error {
	t.mu.Lock()
	before := t.game.Phase()
	if err := fn(t.game); err != nil {
		t.mu.Unlock()
		return err
	}
	if after := t.game.Phase(); after != before {
		t.logger.Debug("Phase changed", "from", before, "to", after)
	}

	now := t.clock.Now()
	type push struct {
		conn *Connection
		msg  *Message
	}
	pushes := make([]push, 0, len(t.subscribers))
	for c := range t.subscribers {
		msg, err := NewMessage(MessageTypeBoard, renderBoard(t.ID, t.game, c.User(), t.names), now)
		if err != nil {
			t.logger.Error("Failed to render board", "error", err)
			continue
		}
		pushes = append(pushes, push{c, msg})
	}
	t.mu.Unlock()

	for _, p := range pushes {
		if err := p.conn.SendMessage(p.msg); err != nil {
			t.logger.Debug("Dropped board push", "user", p.conn.User(), "error", err)
		}
	}
	return nil
}

// View runs fn with exclusive access to the game without notifying subscribers
func (t *Table) View(fn func(*game.Game)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.game)
}

// Board renders the game as seen by viewer
func (t *Table) Board(viewer game.UserID) Board {
	var b Board
	t.View(func(g *game.Game) {
		b = renderBoard(t.ID, g, viewer, t.names)
	})
	return b
}

// Summary renders the game list row as seen by viewer
func (t *Table) Summary(viewer game.UserID, now time.Time) Summary {
	var s Summary
	t.View(func(g *game.Game) {
		s = renderSummary(t.ID, g, viewer, t.names, now)
	})
	return s
}

// LastActive returns when the game last changed
func (t *Table) LastActive() time.Time {
	var at time.Time
	t.View(func(g *game.Game) { at = g.LastActive() })
	return at
}

// Execute applies a named command on behalf of user
func (t *Table) Execute(user game.UserID, cmd Command, req CommandRequest) error {
	err := t.Do(func(g *game.Game) error {
		switch cmd {
		case CommandJoin:
			if _, joined := g.Player(user); !joined && !checkPassword(g.Settings().PasswordHash, req.Password) {
				return game.NewError(game.CodeBadPassword, nil)
			}
			return g.AddPlayer(user, game.Colour(req.Colour))

		case CommandStart:
			if user != g.Host() {
				return game.NewError(game.CodeNotHost, nil)
			}
			return g.StartGame()

		case CommandClue:
			card, err := g.GetCard(req.CardID)
			if err != nil {
				return err
			}
			return g.CreateClue(user, req.Clue, card)

		case CommandPlay:
			card, err := g.GetCard(req.CardID)
			if err != nil {
				return err
			}
			return g.PlayCard(user, card)

		case CommandVote:
			card, err := g.GetCard(req.CardID)
			if err != nil {
				return err
			}
			return g.CastVote(user, card)

		case CommandKick:
			target := game.UserID(req.Target)
			if user != g.Host() && user != target {
				return game.NewError(game.CodeNotHost, nil)
			}
			return g.KickPlayer(target, req.Permanent)

		default:
			return game.NewError(game.CodeIllegalRange, string(cmd))
		}
	})
	if err != nil {
		t.logger.Debug("Command rejected", "user", user, "command", cmd, "error", err)
		return err
	}
	t.logger.Info("Command", "user", user, "command", cmd)
	return nil
}

func (t *Table) subscribe(c *Connection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers[c] = struct{}{}
}

func (t *Table) unsubscribe(c *Connection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.subscribers, c)
}

// Subscribers returns how many connections are watching the table
func (t *Table) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subscribers)
}

// close tells every subscriber the game is gone and drops them
func (t *Table) close() {
	t.mu.Lock()
	subs := make([]*Connection, 0, len(t.subscribers))
	for c := range t.subscribers {
		subs = append(subs, c)
	}
	clear(t.subscribers)
	t.mu.Unlock()

	msg, _ := NewMessage(MessageTypeClosed, map[string]string{"id": t.ID}, t.clock.Now())
	for _, c := range subs {
		_ = c.SendMessage(msg)
		c.CloseAfterFlush()
	}
}

// HashPassword returns the stored form of a game password
func HashPassword(password string) string {
	if password == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func checkPassword(hash, password string) bool {
	if hash == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(hash), []byte(HashPassword(password))) == 1
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
