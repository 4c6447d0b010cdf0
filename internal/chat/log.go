// Package chat implements the lobby chat as a fixed-size ring of messages.
package chat

import (
	"slices"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// DefaultCapacity is the number of messages kept when no capacity is given
const DefaultCapacity = 1024

// Message is one chat line. Times are kept to microsecond precision.
type Message struct {
	ID   string    `json:"mid"`
	User string    `json:"user"`
	Text string    `json:"msg"`
	Time time.Time `json:"t"`
}

// Log is a ring buffer of the most recent messages. It is safe for concurrent use.
type Log struct {
	mu    sync.RWMutex
	slots []*Message
	tail  int // next slot to write
	clock quartz.Clock
}

// NewLog creates an empty log holding at most capacity messages
func NewLog(capacity int, clock quartz.Clock) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		slots: make([]*Message, capacity),
		clock: clock,
	}
}

// Add appends a message, overwriting the oldest once the log is full
func (l *Log) Add(user, text string) Message {
	m := &Message{
		ID:   uuid.NewString(),
		User: user,
		Text: text,
		Time: l.clock.Now().Truncate(time.Microsecond),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.slots[l.tail] = m
	l.tail = (l.tail + 1) % len(l.slots)
	return *m
}

// Since returns the messages posted strictly after t, oldest first
func (l *Log) Since(t time.Time) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := len(l.slots)
	var out []Message
	for i := 1; i <= n; i++ {
		m := l.slots[(l.tail-i+n)%n]
		if m == nil || !m.Time.After(t) {
			break
		}
		out = append(out, *m)
	}
	slices.Reverse(out)
	return out
}
