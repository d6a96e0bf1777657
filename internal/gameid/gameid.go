// Package gameid generates sortable table identifiers: a UUIDv7 rendered as
// 26 characters of Crockford base32.
package gameid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Length is the number of characters in an id
const Length = 26

// Crockford's base32 alphabet, lower case
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Generator creates ids from a random source
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator. A nil reader uses crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate creates a new id from crypto/rand
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new id. It panics if the random source fails, which
// only happens with a broken reader.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.rand == nil {
		id, err = uuid.NewV7()
	} else {
		id, err = uuid.NewV7FromReader(g.rand)
	}
	if err != nil {
		panic("gameid: " + err.Error())
	}
	return Encode(id)
}

// Encode renders a UUID as 26 base32 characters. The 128 bits are padded with
// two leading zero bits so the first character is always 0-7.
func Encode(id uuid.UUID) string {
	var sb strings.Builder
	sb.Grow(Length)

	// 130 bits: 2 zero bits then the UUID, read 5 bits at a time
	bit := func(i int) byte {
		i -= 2
		if i < 0 {
			return 0
		}
		return (id[i/8] >> (7 - i%8)) & 1
	}
	for c := range Length {
		var v byte
		for b := range 5 {
			v = v<<1 | bit(c*5+b)
		}
		sb.WriteByte(alphabet[v])
	}
	return sb.String()
}

// Decode parses an id back into its UUID
func Decode(s string) (uuid.UUID, error) {
	if err := Validate(s); err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	for c := range Length {
		v := strings.IndexByte(alphabet, s[c])
		for b := range 5 {
			pos := c*5 + b - 2
			if pos < 0 {
				continue
			}
			if v>>(4-b)&1 == 1 {
				id[pos/8] |= 1 << (7 - pos%8)
			}
		}
	}
	return id, nil
}

// Validate checks that s is 26 characters of the id alphabet with a first
// character of 0-7
func Validate(s string) error {
	if len(s) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(s))
	}
	if s[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", s[0])
	}
	for i := range len(s) {
		if strings.IndexByte(alphabet, s[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", s[i], i)
		}
	}
	return nil
}
