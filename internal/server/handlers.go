package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/lox/dixit/internal/game"
	"github.com/lox/dixit/internal/users"
)

// CookieName holds the private user id
const CookieName = "dixit_user"

type userHandler func(http.ResponseWriter, *http.Request, users.User)

// identify returns the caller, registering a new user when the cookie is
// missing or unknown. The returned cookie is nil when it is already set.
func (s *Server) identify(r *http.Request) (users.User, *http.Cookie) {
	var id string
	if c, err := r.Cookie(CookieName); err == nil {
		id = c.Value
	}
	u := s.users.Touch(id)
	if u.ID == id {
		return u, nil
	}
	return u, &http.Cookie{
		Name:     CookieName,
		Value:    u.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) withUser(h userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, cookie := s.identify(r)
		if cookie != nil {
			http.SetCookie(w, cookie)
		}
		h(w, r, u)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type limitsView struct {
	MinName       int  `json:"minName"`
	MaxName       *int `json:"maxName"`
	MinPlayers    int  `json:"minPlayers"`
	MaxPlayers    *int `json:"maxPlayers"`
	MinScore      int  `json:"minScore"`
	MaxScore      *int `json:"maxScore"`
	MinClueLength int  `json:"minClueLength"`
	MaxClueLength *int `json:"maxClueLength"`
	MaxMessage    *int `json:"maxMessage"`
	MinUserName   int  `json:"minUserName"`
	MaxUserName   *int `json:"maxUserName"`
}

type cardSetView struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Default bool   `json:"default"`
	Size    int    `json:"size"`
}

type configView struct {
	User     string        `json:"user"`
	Name     string        `json:"name"`
	Limits   limitsView    `json:"limits"`
	CardSets []cardSetView `json:"cardSets"`
	Palette  []string      `json:"palette"`
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request, u users.User) {
	l := s.lobby.Limits()
	view := configView{
		User: u.PublicID,
		Name: u.Name,
		Limits: limitsView{
			MinName:       l.MinName,
			MaxName:       optional(l.MaxName),
			MinPlayers:    l.MinPlayers,
			MaxPlayers:    optional(l.MaxPlayers),
			MinScore:      l.MinScore,
			MaxScore:      optional(l.MaxScore),
			MinClueLength: l.MinClueLength,
			MaxClueLength: optional(l.MaxClueLength),
			MaxMessage:    optional(l.MaxMessage),
			MinUserName:   l.MinUserName,
			MaxUserName:   optional(l.MaxUserName),
		},
	}
	for i, cs := range s.lobby.CardSets() {
		view.CardSets = append(view.CardSets, cardSetView{Index: i, Name: cs.Name, Default: cs.Default, Size: cs.Size()})
	}
	for _, c := range game.Palette() {
		view.Palette = append(view.Palette, string(c))
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListGames(w http.ResponseWriter, _ *http.Request, u users.User) {
	now := s.clock.Now()
	tables := s.lobby.List()
	out := make([]Summary, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.Summary(game.UserID(u.PublicID), now))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request, u users.User) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	t, err := s.lobby.Create(game.UserID(u.PublicID), CreateRequest{
		Name:          r.PostForm.Get("name"),
		Password:      r.PostForm.Get("password"),
		CardSets:      r.PostForm["card_sets"],
		MaxPlayers:    r.PostForm.Get("max_players"),
		MaxScore:      r.PostForm.Get("max_score"),
		MaxClueLength: r.PostForm.Get("max_clue_length"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": t.ID})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request, u users.User) {
	t, err := s.lobby.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t.Board(game.UserID(u.PublicID)))
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request, u users.User) {
	t, err := s.lobby.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user := game.UserID(u.PublicID)
	req := CommandRequest{
		Colour:    r.PostForm.Get("colour"),
		Clue:      r.PostForm.Get("clue"),
		CardID:    r.PostForm.Get("cid"),
		Target:    r.PostForm.Get("puid"),
		Permanent: parseBool(r.PostForm.Get("permanent")),
		Password:  r.PostForm.Get("password"),
	}
	if err := t.Execute(user, Command(r.PathValue("command")), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t.Board(user))
}

// UserSummary is one row of the user list
type UserSummary struct {
	Name          string  `json:"name"`
	RelLastActive float64 `json:"relLastActive"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request, _ users.User) {
	now := s.clock.Now()
	list := s.users.List()
	out := make([]UserSummary, 0, len(list))
	for _, u := range list {
		out = append(out, UserSummary{Name: u.Name, RelLastActive: now.Sub(u.LastActive).Seconds()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetName(w http.ResponseWriter, r *http.Request, u users.User) {
	name := u.Name
	if username := r.PostFormValue("username"); username != "" {
		name, _ = s.users.SetName(u.ID, username)
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

// ChatPage is the reply to a chat poll. Time is the server time to poll from next.
type ChatPage struct {
	Log  []ChatLine `json:"log"`
	Time float64    `json:"t"`
}

// ChatLine is one chat message with its time in fractional unix seconds
type ChatLine struct {
	ID   string  `json:"mid"`
	User string  `json:"user"`
	Text string  `json:"msg"`
	Time float64 `json:"t"`
}

func (s *Server) handleChatSince(w http.ResponseWriter, r *http.Request, _ users.User) {
	var since time.Time
	if v := r.URL.Query().Get("t"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			writeError(w, game.NewError(game.CodeNotAnInteger, v))
			return
		}
		since = fromUnix(f)
	}

	msgs := s.chat.Since(since)
	view := ChatPage{Log: make([]ChatLine, 0, len(msgs)), Time: toUnix(s.clock.Now())}
	for _, m := range msgs {
		view.Log = append(view.Log, ChatLine{ID: m.ID, User: m.User, Text: m.Text, Time: toUnix(m.Time)})
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleChatPost(w http.ResponseWriter, r *http.Request, u users.User) {
	msg := truncate(r.PostFormValue("msg"), s.lobby.Limits().MaxMessage)
	if msg == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	m := s.chat.Add(u.Name, msg)
	writeJSON(w, http.StatusCreated, ChatLine{ID: m.ID, User: m.User, Text: m.Text, Time: toUnix(m.Time)})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	t, err := s.lobby.Get(r.URL.Query().Get("game"))
	if err != nil {
		writeError(w, err)
		return
	}

	u, cookie := s.identify(r)
	var header http.Header
	if cookie != nil {
		header = http.Header{"Set-Cookie": {cookie.String()}}
	}
	conn, err := s.upgrader.Upgrade(w, r, header)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	user := game.UserID(u.PublicID)
	client := NewConnection(conn, t, user, s.logger)
	t.subscribe(client)
	client.Start()

	if msg, err := NewMessage(MessageTypeBoard, t.Board(user), s.clock.Now()); err == nil {
		_ = client.SendMessage(msg)
	}
	s.logger.Debug("Client connected", "game", t.ID, "user", user, "watchers", t.Subscribers())

	go func() {
		<-client.Done()
		t.unsubscribe(client)
		s.logger.Debug("Client disconnected", "game", t.ID, "user", user)
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	var ge *game.Error
	switch {
	case errors.Is(err, ErrGameNotFound):
		status = http.StatusNotFound
	case !errors.As(err, &ge):
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorData(err))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func toUnix(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

func fromUnix(f float64) time.Time {
	return time.UnixMicro(int64(math.Round(f * 1e6)))
}
