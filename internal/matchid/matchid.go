// Package matchid generates sortable match identifiers: a UUIDv7 rendered as
// 26 characters of Crockford base32.
package matchid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/coder/quartz"
)

// Crockford's base32 alphabet, lower case.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the length of every generated ID.
const Length = 26

// RandSource lets tests make IDs deterministic.
type RandSource interface {
	IntN(n int) int
}

// Generator creates match IDs.
type Generator struct {
	rand  RandSource
	clock quartz.Clock
}

// NewGenerator creates a generator. A nil RandSource uses crypto/rand and a
// nil clock uses the wall clock.
func NewGenerator(rand RandSource, clock quartz.Clock) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Generator{rand: rand, clock: clock}
}

// Generate creates an ID using crypto randomness and the wall clock.
func Generate() string {
	return NewGenerator(nil, nil).Generate()
}

// Generate creates a new ID.
func (g *Generator) Generate() string {
	return encode(g.uuid())
}

func (g *Generator) uuid() [16]byte {
	var id [16]byte

	ms := uint64(g.clock.Now().UnixMilli())
	for i := range 6 {
		id[i] = byte(ms >> (40 - 8*i))
	}

	if g.rand != nil {
		for i := 6; i < 16; i++ {
			id[i] = byte(g.rand.IntN(256))
		}
	} else if _, err := rand.Read(id[6:]); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}

	id[6] = (id[6] & 0x0f) | 0x70 // version 7
	id[8] = (id[8] & 0x3f) | 0x80 // RFC 4122 variant
	return id
}

// encode renders the 128 bits as 26 five-bit digits, most significant
// first. The two missing high bits are zero so the first digit is at most 7.
func encode(id [16]byte) string {
	hi := binary.BigEndian.Uint64(id[:8])
	lo := binary.BigEndian.Uint64(id[8:])

	out := make([]byte, Length)
	for i := Length - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out)
}

// Validate checks that id looks like a generated match ID.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("match ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("match ID first character must be 0-7, got %c", id[0])
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
