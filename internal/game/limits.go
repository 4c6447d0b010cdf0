package game

import (
	"math"
	"unicode/utf8"
)

// Unbounded is the upper limit used when a maximum is configured as -1
const Unbounded = math.MaxInt

// Limits are the server-wide bounds every game and user is validated against
type Limits struct {
	MinName       int
	MaxName       int
	MinPlayers    int
	MaxPlayers    int
	MinScore      int
	MaxScore      int
	MinClueLength int
	MaxClueLength int
	MaxMessage    int
	MinUserName   int
	MaxUserName   int
}

// DefaultLimits returns the limits used when no configuration overrides them
func DefaultLimits() Limits {
	return Limits{
		MinName:       1,
		MaxName:       32,
		MinPlayers:    3,
		MaxPlayers:    6,
		MinScore:      1,
		MaxScore:      Unbounded,
		MinClueLength: 1,
		MaxClueLength: 256,
		MaxMessage:    512,
		MinUserName:   1,
		MaxUserName:   24,
	}
}

// Settings are the per-game parameters chosen by the host at creation time
type Settings struct {
	Name          string
	MaxPlayers    int
	MaxScore      int // Unbounded when the game runs until the deck is empty
	MaxClueLength int
	PasswordHash  string
}

// Validate checks s against the server limits. The offending field name is
// carried in the returned error.
func (s Settings) Validate(l Limits) error {
	switch {
	case !within(utf8.RuneCountInString(s.Name), l.MinName, l.MaxName):
		return NewError(CodeIllegalRange, "name")
	case !within(s.MaxPlayers, l.MinPlayers, l.MaxPlayers):
		return NewError(CodeIllegalRange, "max_players")
	case !within(s.MaxScore, l.MinScore, l.MaxScore):
		return NewError(CodeIllegalRange, "max_score")
	case !within(s.MaxClueLength, l.MinClueLength, l.MaxClueLength):
		return NewError(CodeIllegalRange, "max_clue_length")
	}
	return nil
}

func within(v, lo, hi int) bool {
	return lo <= v && v <= hi
}
