package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingsValidate(t *testing.T) {
	t.Parallel()

	l := DefaultLimits()
	valid := Settings{Name: "Game 1", MaxPlayers: 6, MaxScore: 30, MaxClueLength: 100}

	tests := []struct {
		name   string
		mutate func(s *Settings)
		field  string
	}{
		{"valid", func(s *Settings) {}, ""},
		{"unbounded score", func(s *Settings) { s.MaxScore = Unbounded }, ""},
		{"empty name", func(s *Settings) { s.Name = "" }, "name"},
		{"long name", func(s *Settings) { s.Name = strings.Repeat("x", l.MaxName+1) }, "name"},
		{"too few players", func(s *Settings) { s.MaxPlayers = l.MinPlayers - 1 }, "max_players"},
		{"too many players", func(s *Settings) { s.MaxPlayers = l.MaxPlayers + 1 }, "max_players"},
		{"zero score", func(s *Settings) { s.MaxScore = 0 }, "max_score"},
		{"clue too long", func(s *Settings) { s.MaxClueLength = l.MaxClueLength + 1 }, "max_clue_length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := valid
			tt.mutate(&s)
			err := s.Validate(l)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ge *Error
			if assert.ErrorAs(t, err, &ge) {
				assert.Equal(t, CodeIllegalRange, ge.Code)
				assert.Equal(t, tt.field, ge.Value)
			}
		})
	}
}

func TestPalette(t *testing.T) {
	t.Parallel()

	for _, c := range Palette() {
		assert.True(t, IsColour(c))
	}
	assert.Len(t, Palette(), 9)
	assert.False(t, IsColour("000000"))
}
