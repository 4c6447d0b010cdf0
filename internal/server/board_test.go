package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/dixit/internal/game"
)

func TestRankPositions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scores map[string]int
		want   map[string]int
	}{
		{"empty", map[string]int{}, map[string]int{}},
		{"distinct", map[string]int{"a": 5, "b": 1, "c": 3}, map[string]int{"b": 0, "c": 1, "a": 2}},
		{"ties share a position", map[string]int{"a": 2, "b": 2, "c": 7, "d": 0}, map[string]int{"d": 0, "a": 1, "b": 1, "c": 2}},
		{"all equal", map[string]int{"a": 4, "b": 4, "c": 4}, map[string]int{"a": 0, "b": 0, "c": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, rankPositions(tt.scores))
		})
	}
}

// startedTable returns a table in the clue phase with u1 (host), u2 and u3
func startedTable(t *testing.T) *Table {
	t.Helper()
	lobby, _ := newTestLobby(t)
	tbl, err := lobby.Create("u1", validRequest())
	require.NoError(t, err)
	for i, u := range []game.UserID{"u1", "u2", "u3"} {
		require.NoError(t, tbl.Execute(u, CommandJoin, CommandRequest{Colour: string(game.Palette()[i])}))
	}
	require.NoError(t, tbl.Execute("u1", CommandStart, CommandRequest{}))
	return tbl
}

func handOf(t *testing.T, tbl *Table, u game.UserID) []string {
	t.Helper()
	b := tbl.Board(u)
	require.NotEmpty(t, b.Hand)
	ids := make([]string, len(b.Hand))
	for i, c := range b.Hand {
		ids[i] = c.ID
	}
	return ids
}

func TestBoardRevealsRoundProgressively(t *testing.T) {
	t.Parallel()

	tbl := startedTable(t)
	b := tbl.Board("u1")
	require.Equal(t, "clue", b.State)
	require.Len(t, b.Order, 3)
	assert.Equal(t, map[string]string{"u1": "name-u1", "u2": "name-u2", "u3": "name-u3"}, b.Players)
	assert.Len(t, b.Hand, game.HandSize)
	assert.True(t, b.IsHost)
	assert.True(t, b.IsPlayer)
	assert.Nil(t, b.MaxScore)
	assert.Equal(t, 60-3*game.HandSize, b.Left)

	maker := game.UserID(b.Order[b.Turn])
	assert.True(t, b.RequiresAction[string(maker)])
	var others []game.UserID
	for _, u := range b.Order {
		if game.UserID(u) != maker {
			others = append(others, game.UserID(u))
			assert.False(t, b.RequiresAction[u])
		}
	}

	makerCard := handOf(t, tbl, maker)[0]
	require.NoError(t, tbl.Execute(maker, CommandClue, CommandRequest{Clue: "dreams", CardID: makerCard}))

	b = tbl.Board(others[0])
	assert.Equal(t, "play", b.State)
	assert.Equal(t, "dreams", b.Round.Clue)
	assert.Equal(t, string(maker), b.Round.ClueMaker)
	assert.Empty(t, b.Round.Cards, "cards stay hidden until everyone played")

	played := map[game.UserID]string{maker: makerCard}
	for _, u := range others {
		played[u] = handOf(t, tbl, u)[0]
		require.NoError(t, tbl.Execute(u, CommandPlay, CommandRequest{CardID: played[u]}))
	}

	b = tbl.Board(others[0])
	assert.Equal(t, "vote", b.State)
	assert.Len(t, b.Round.Cards, 3)
	assert.Empty(t, b.Round.Votes, "votes stay hidden until everyone voted")
	assert.Empty(t, b.Round.Owners)

	// Everyone finds the clue-maker's card
	for _, u := range others {
		require.NoError(t, tbl.Execute(u, CommandVote, CommandRequest{CardID: makerCard}))
	}

	b = tbl.Board("u1")
	assert.Equal(t, "clue", b.State)
	assert.Equal(t, string(maker), b.Round.ClueMaker)
	assert.Len(t, b.Round.Votes, 3)
	for u, card := range played {
		assert.Equal(t, card, b.Round.Owners[string(u)])
	}
	for _, u := range others {
		assert.Equal(t, game.ScoreLoss, b.Scores[string(u)])
		assert.Equal(t, game.ScoreLoss, b.Round.Scores[string(u)])
	}
	assert.Equal(t, 0, b.Scores[string(maker)])
	assert.NotContains(t, b.Round.Scores, string(maker), "only positive round scores are shown")
	assert.Equal(t, 0, b.Ranked[string(maker)])
	assert.Equal(t, 1, b.Ranked[string(others[0])])
}

func TestBoardForSpectator(t *testing.T) {
	t.Parallel()

	tbl := startedTable(t)
	b := tbl.Board("watcher")
	assert.False(t, b.IsPlayer)
	assert.False(t, b.IsHost)
	assert.Empty(t, b.Hand)
	assert.Len(t, b.Players, 3)
}

func TestExecuteAuthorization(t *testing.T) {
	t.Parallel()

	lobby, _ := newTestLobby(t)
	tbl, err := lobby.Create("u1", validRequest())
	require.NoError(t, err)
	for i, u := range []game.UserID{"u1", "u2", "u3", "u4"} {
		require.NoError(t, tbl.Execute(u, CommandJoin, CommandRequest{Colour: string(game.Palette()[i])}))
	}

	err = tbl.Execute("u2", CommandStart, CommandRequest{})
	assert.True(t, game.IsCode(err, game.CodeNotHost))

	err = tbl.Execute("u2", CommandKick, CommandRequest{Target: "u3"})
	assert.True(t, game.IsCode(err, game.CodeNotHost))

	// Players may leave by kicking themselves
	require.NoError(t, tbl.Execute("u4", CommandKick, CommandRequest{Target: "u4"}))
	require.NoError(t, tbl.Execute("u1", CommandKick, CommandRequest{Target: "u3", Permanent: true}))

	err = tbl.Execute("u3", CommandJoin, CommandRequest{Colour: string(game.Black)})
	assert.True(t, game.IsCode(err, game.CodeJoinBanned))

	err = tbl.Execute("u1", Command("dance"), CommandRequest{})
	assert.True(t, game.IsCode(err, game.CodeIllegalRange))

	err = tbl.Execute("u1", CommandPlay, CommandRequest{CardID: "nope"})
	assert.True(t, game.IsCode(err, game.CodeUnknownCard))
}

func TestJoinRequiresPassword(t *testing.T) {
	t.Parallel()

	lobby, _ := newTestLobby(t)
	req := validRequest()
	req.Password = "hunter2"
	tbl, err := lobby.Create("u1", req)
	require.NoError(t, err)

	tbl.View(func(g *game.Game) {
		assert.Equal(t, HashPassword("hunter2"), g.Settings().PasswordHash)
		assert.NotEqual(t, "hunter2", g.Settings().PasswordHash)
	})

	err = tbl.Execute("u2", CommandJoin, CommandRequest{Colour: string(game.Red), Password: "wrong"})
	assert.True(t, game.IsCode(err, game.CodeBadPassword))

	require.NoError(t, tbl.Execute("u2", CommandJoin, CommandRequest{Colour: string(game.Red), Password: "hunter2"}))
	// Changing colour once joined needs no password
	require.NoError(t, tbl.Execute("u2", CommandJoin, CommandRequest{Colour: string(game.Blue)}))
	assert.True(t, tbl.Board("u2").HasPassword)
}
