package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/dixit/internal/chat"
	"github.com/lox/dixit/internal/deck"
	"github.com/lox/dixit/internal/game"
	"github.com/lox/dixit/internal/randutil"
	"github.com/lox/dixit/internal/users"
)

type testEnv struct {
	clock  *quartz.Mock
	users  *users.Registry
	chat   *chat.Log
	lobby  *Lobby
	server *Server
	http   *httptest.Server
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.DebugLevel})
}

func testSets() []*deck.CardSet {
	sets := make([]*deck.CardSet, 2)
	for i := range sets {
		images := make([]string, 60)
		for j := range images {
			images[j] = fmt.Sprintf("/static/cards/set%d/%02d.jpg", i, j)
		}
		sets[i] = deck.NewCardSet(fmt.Sprintf("Set %d", i), images, i == 0)
	}
	return sets
}

func registryNames(reg *users.Registry) NameFunc {
	return func(id game.UserID) string {
		if u, ok := reg.ByPublicID(string(id)); ok {
			return u.Name
		}
		return string(id)
	}
}

func newTestLobby(t *testing.T) (*Lobby, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	names := func(id game.UserID) string { return "name-" + string(id) }
	return NewLobby(testLogger(), randutil.New(7), clock, names, game.DefaultLimits(), testSets()), clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{clock: quartz.NewMock(t)}
	limits := game.DefaultLimits()
	limits.MaxMessage = 10
	env.users = users.NewRegistry(limits.MinUserName, limits.MaxUserName, env.clock)
	env.chat = chat.NewLog(16, env.clock)
	env.lobby = NewLobby(testLogger(), randutil.New(7), env.clock, registryNames(env.users), limits, testSets())
	env.server = New(testLogger(), env.clock, env.lobby, env.users, env.chat, Options{
		GameTTL:       time.Hour,
		SweepInterval: time.Minute,
	})
	env.http = httptest.NewServer(env.server.Handler())
	t.Cleanup(env.http.Close)
	return env
}

// client is one browser with its own cookie jar
type client struct {
	t    *testing.T
	env  *testEnv
	http *http.Client
	puid string
}

func (env *testEnv) newClient(t *testing.T) *client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &client{t: t, env: env, http: &http.Client{Jar: jar, Timeout: 5 * time.Second}}

	var cfg configView
	require.Equal(t, http.StatusOK, c.getJSON("/api/config", &cfg))
	c.puid = cfg.User
	return c
}

// userID returns the private id stored in the client's cookie
func (env *testEnv) userID(t *testing.T, c *client) string {
	t.Helper()
	u, err := url.Parse(env.http.URL)
	require.NoError(t, err)
	for _, cookie := range c.http.Jar.Cookies(u) {
		if cookie.Name == CookieName {
			return cookie.Value
		}
	}
	t.Fatal("no user cookie")
	return ""
}

func (c *client) do(req *http.Request, v any) int {
	c.t.Helper()
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func (c *client) getJSON(path string, v any) int {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.env.http.URL+path, nil)
	require.NoError(c.t, err)
	return c.do(req, v)
}

func (c *client) postForm(path string, form url.Values, v any) int {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.env.http.URL+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, v)
}

func (c *client) createGame(form url.Values) string {
	c.t.Helper()
	var out map[string]string
	require.Equal(c.t, http.StatusCreated, c.postForm("/api/games", form, &out))
	return out["id"]
}

func (c *client) command(id string, cmd Command, form url.Values) (Board, ErrorData, int) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.env.http.URL+"/api/games/"+id+"/"+string(cmd), strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var (
		board Board
		ed    ErrorData
	)
	if resp.StatusCode == http.StatusOK {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&board))
	} else {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&ed))
	}
	return board, ed, resp.StatusCode
}

func (c *client) board(id string) Board {
	c.t.Helper()
	var b Board
	require.Equal(c.t, http.StatusOK, c.getJSON("/api/games/"+id, &b))
	return b
}

func defaultForm() url.Values {
	return url.Values{
		"name":            {"friday"},
		"max_players":     {"6"},
		"max_score":       {""},
		"max_clue_length": {"20"},
	}
}
