// Package gameid generates sortable session identifiers: a UUIDv7 encoded
// as a 26-character Crockford base32 string.
package gameid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

const idLen = 26

// EntropySource supplies the random tail of an id; injectable for
// deterministic tests.
type EntropySource interface {
	Intn(n int) int
}

// Generator produces session ids with configurable entropy.
type Generator struct {
	entropy EntropySource
}

// NewGenerator returns a generator. A nil entropy source uses crypto/rand.
func NewGenerator(entropy EntropySource) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new session id with the default generator.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new session id: 48-bit millisecond timestamp, version
// and variant bits per UUIDv7, the rest random.
func (g *Generator) Generate() string {
	var uuid [16]byte

	now := time.Now().UnixMilli()
	for i := 0; i < 6; i++ {
		uuid[i] = byte(now >> (40 - 8*i))
	}

	if g.entropy != nil {
		for i := 6; i < 16; i++ {
			uuid[i] = byte(g.entropy.Intn(256))
		}
	} else if _, err := rand.Read(uuid[6:]); err != nil {
		panic("gameid: failed to read random bytes: " + err.Error())
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70 // version 7
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // variant 10

	return encode(uuid)
}

// encode packs 128 bits into 26 base32 characters using a bit accumulator,
// consuming the uuid most-significant-bit first.
func encode(uuid [16]byte) string {
	var sb strings.Builder
	sb.Grow(idLen)

	var acc uint32 // bit buffer, high bits consumed first
	bits := 0
	next := 0
	for sb.Len() < idLen {
		if bits < 5 {
			acc <<= 8
			if next < len(uuid) {
				acc |= uint32(uuid[next])
				next++
			}
			bits += 8
		}
		bits -= 5
		sb.WriteByte(alphabet[(acc>>bits)&0x1f])
	}
	return sb.String()
}

// Validate checks that an id is well-formed: 26 characters of the base32
// alphabet, with a first character small enough to fit 128 bits.
func Validate(id string) error {
	if len(id) != idLen {
		return fmt.Errorf("session id must be %d characters, got %d", idLen, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("session id first character must be 0-7, got %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if !strings.ContainsRune(alphabet, rune(id[i])) {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}
