// Package gameid generates short, time-sortable identifiers for games.
package gameid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32, lower case
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded id: 128 bits plus two leading zero bits
const Length = 26

// Generator creates ids from an optional entropy source
type Generator struct {
	entropy io.Reader
}

// NewGenerator returns a generator reading randomness from r, or from
// crypto/rand when r is nil
func NewGenerator(r io.Reader) *Generator {
	return &Generator{entropy: r}
}

// Generate creates a new game id from a UUIDv7
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new id. It panics only if the entropy source fails.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.entropy != nil {
		id, err = uuid.NewV7FromReader(g.entropy)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("gameid: " + err.Error())
	}
	return Encode(id)
}

// Encode renders a UUID as 26 base32 characters, most significant first
func Encode(id uuid.UUID) string {
	var (
		out  = make([]byte, 0, Length)
		acc  uint64
		bits = 2
	)
	for _, b := range id {
		acc = acc<<8 | uint64(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out = append(out, alphabet[(acc>>bits)&0x1f])
		}
	}
	return string(out)
}

// Decode parses an encoded id back into its UUID
func Decode(s string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := Validate(s); err != nil {
		return id, err
	}

	var (
		acc  uint64
		bits = -2
		n    int
	)
	for i := 0; i < len(s); i++ {
		acc = acc<<5 | uint64(strings.IndexByte(alphabet, s[i]))
		bits += 5
		if bits >= 8 {
			bits -= 8
			id[n] = byte(acc >> bits)
			n++
		}
	}
	return id, nil
}

// Validate checks that id has the encoded length and alphabet
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}
