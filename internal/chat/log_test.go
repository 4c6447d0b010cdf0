package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

func TestSince(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	l := NewLog(8, clock)
	start := clock.Now()
	assert.Empty(t, l.Since(start))

	for i := range 3 {
		clock.Advance(time.Second)
		l.Add("bob", fmt.Sprint(i))
	}
	assert.Equal(t, []string{"0", "1", "2"}, texts(l.Since(start)))
	assert.Equal(t, []string{"2"}, texts(l.Since(start.Add(2*time.Second))))
	assert.Empty(t, l.Since(clock.Now()))
}

func TestSinceAfterWraparound(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	l := NewLog(4, clock)
	start := clock.Now()
	for i := range 10 {
		clock.Advance(time.Second)
		l.Add("bob", fmt.Sprint(i))
	}

	// Only the newest four survive and the walk stops after one full lap
	assert.Equal(t, []string{"6", "7", "8", "9"}, texts(l.Since(start)))
	assert.Equal(t, []string{"8", "9"}, texts(l.Since(start.Add(8*time.Second))))
}

func TestAddFillsMessage(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	l := NewLog(0, clock)
	require.Len(t, l.slots, DefaultCapacity)

	a := l.Add("alice", "hi")
	b := l.Add("alice", "hi")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, clock.Now().Truncate(time.Microsecond), a.Time)
	assert.Equal(t, "alice", a.User)
}
