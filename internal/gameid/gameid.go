// Package gameid generates sortable match identifiers.
package gameid

import (
	crand "crypto/rand"
	"fmt"
	rand "math/rand/v2"
	"strings"
	"time"
)

// Crockford's base32, lower case
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded identifier.
const Length = 26

// Generator creates UUIDv7 match ids encoded in base32. With a nil source
// the random bits come from crypto/rand.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator creates a generator. Pass a seeded source for reproducible ids.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng, now: time.Now}
}

// Generate returns a fresh id using crypto randomness.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate returns a 26 character id whose prefix sorts by creation time.
func (g *Generator) Generate() string {
	var id [16]byte

	ms := g.now().UnixMilli()
	for i := range 6 {
		id[i] = byte(ms >> (40 - 8*i))
	}

	if g.rng != nil {
		for i := 6; i < 16; i++ {
			id[i] = byte(g.rng.IntN(256))
		}
	} else if _, err := crand.Read(id[6:]); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}

	id[6] = (id[6] & 0x0f) | 0x70 // version 7
	id[8] = (id[8] & 0x3f) | 0x80 // RFC 4122 variant

	return encode(id)
}

// encode writes the 128 bits as 26 five-bit groups, padding the tail with zeros.
func encode(data [16]byte) string {
	var b strings.Builder
	b.Grow(Length)
	var acc uint32
	var nbits uint
	for _, v := range data {
		acc = acc<<8 | uint32(v)
		nbits += 8
		for nbits >= 5 {
			nbits -= 5
			b.WriteByte(alphabet[(acc>>nbits)&0x1f])
		}
	}
	if nbits > 0 {
		b.WriteByte(alphabet[(acc<<(5-nbits))&0x1f])
	}
	return b.String()
}

// Validate checks that id has the shape Generate produces.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("match ID must be exactly %d characters, got %d", Length, len(id))
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}
