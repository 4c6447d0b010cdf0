// Package tui implements the terminal lobby monitor behind "dixit watch".
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"

	"github.com/lox/dixit/internal/server"
)

const (
	chatLines    = 8
	keepMessages = 100
)

type gamesMsg struct {
	games []server.Summary
	at    time.Time
}

type chatMsg struct {
	page server.ChatPage
}

type errMsg struct {
	err error
}

type tickMsg time.Time

// Model is the bubbletea model for the lobby monitor
type Model struct {
	source   Source
	interval time.Duration
	logger   *log.Logger

	games     []server.Summary
	messages  []server.ChatLine
	chatSince float64
	updated   time.Time
	err       error

	gamesView viewport.Model
	width     int
	height    int
	quitting  bool
}

// NewModel creates a monitor polling source every interval
func NewModel(source Source, interval time.Duration, logger *log.Logger) *Model {
	return &Model{
		source:    source,
		interval:  interval,
		logger:    logger.WithPrefix("tui"),
		gamesView: viewport.New(10, 5),
	}
}

// Run starts the monitor on the terminal until the user quits or ctx ends
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// Init fetches the first snapshot
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchGames(), m.fetchChat())
}

func (m *Model) fetchGames() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.interval+5*time.Second)
		defer cancel()
		games, err := m.source.Games(ctx)
		if err != nil {
			return errMsg{err}
		}
		return gamesMsg{games: games, at: time.Now()}
	}
}

func (m *Model) fetchChat() tea.Cmd {
	since := m.chatSince
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.interval+5*time.Second)
		defer cancel()
		page, err := m.source.Chat(ctx, since)
		if err != nil {
			return errMsg{err}
		}
		return chatMsg{page}
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, tea.Batch(m.fetchGames(), m.fetchChat())
		}

	case tickMsg:
		return m, tea.Batch(m.fetchGames(), m.fetchChat())

	case gamesMsg:
		m.games = msg.games
		m.updated = msg.at
		m.err = nil
		m.gamesView.SetContent(m.renderGames())
		return m, m.tick()

	case chatMsg:
		m.messages = append(m.messages, msg.page.Log...)
		if n := len(m.messages); n > keepMessages {
			m.messages = m.messages[n-keepMessages:]
		}
		m.chatSince = msg.page.Time
		return m, nil

	case errMsg:
		m.logger.Debug("Poll failed", "error", msg.err)
		m.err = msg.err
		return m, m.tick()
	}

	var cmd tea.Cmd
	m.gamesView, cmd = m.gamesView.Update(msg)
	return m, cmd
}

func (m *Model) resize() {
	// header, footer, chat pane and borders
	m.gamesView.Width = max(m.width-2, 1)
	m.gamesView.Height = max(m.height-chatLines-6, 1)
	m.gamesView.SetContent(m.renderGames())
}

// View renders the monitor
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := HeaderStyle.Render(fmt.Sprintf("Dixit lobby · %d games", len(m.games)))
	if !m.updated.IsZero() {
		header += InfoStyle.Render("  updated " + m.updated.Format(time.TimeOnly))
	}

	games := paneStyle.Width(m.gamesView.Width).Render(m.gamesView.View())
	chat := paneStyle.Width(max(m.width-2, 1)).Height(chatLines).Render(m.renderChat())

	footer := InfoStyle.Render("↑↓ scroll • r refresh • q quit")
	if m.err != nil {
		footer = ErrorStyle.Render(m.err.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, games, chat, footer)
}

func (m *Model) renderGames() string {
	if len(m.games) == 0 {
		return InfoStyle.Render("No games")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(InfoStyle).
		Headers("NAME", "HOST", "PLAYERS", "STATE", "DECK", "SCORE", "IDLE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if col == 3 && row >= 0 && row < len(m.games) {
				return CellStyle.Foreground(phaseColours[m.games[row].State])
			}
			return CellStyle
		})

	for _, g := range m.games {
		name := g.Name
		if g.HasPassword {
			name += " *"
		}
		t.Row(
			name,
			g.Host,
			fmt.Sprintf("%d/%d %s", len(g.Players), g.MaxPlayers, strings.Join(g.Players, ", ")),
			g.State,
			fmt.Sprintf("%s (%d/%d)", g.DeckName, g.Left, g.Size),
			score(g),
			idle(g.RelLastActive),
		)
	}
	return t.Render()
}

func (m *Model) renderChat() string {
	if len(m.messages) == 0 {
		return InfoStyle.Render("No messages")
	}
	lines := m.messages[max(len(m.messages)-chatLines, 0):]
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(ChatUserStyle.Render(l.User))
		b.WriteString(": ")
		b.WriteString(l.Text)
	}
	return b.String()
}

func score(g server.Summary) string {
	if g.MaxScore == nil {
		return strconv.Itoa(g.TopScore)
	}
	return fmt.Sprintf("%d/%d", g.TopScore, *g.MaxScore)
}

func idle(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Truncate(time.Second).String()
}
