package gameid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Generate creates a new ID: a UUIDv7 encoded as a 26-character base32 string.
// IDs generated later sort after earlier ones.
func Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("failed to generate uuid: " + err.Error())
	}
	return Encode(id)
}

// Encode renders a UUID as 26 base32 characters. The 128 bits are treated
// as a 130-bit value with two leading zero bits, so the first character is
// always 0-7.
func Encode(id uuid.UUID) string {
	result := make([]byte, 26)
	for i := range result {
		// character i covers bits [i*5-2, i*5+3) of the 128-bit value
		start := i*5 - 2
		var value byte
		for b := 0; b < 5; b++ {
			bit := start + b
			value <<= 1
			if bit >= 0 && id[bit/8]&(0x80>>(bit%8)) != 0 {
				value |= 1
			}
		}
		result[i] = alphabet[value]
	}
	return string(result)
}

// Decode reverses Encode
func Decode(s string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := Validate(s); err != nil {
		return id, err
	}
	for i := range len(s) {
		value := strings.IndexByte(alphabet, s[i])
		start := i*5 - 2
		for b := 0; b < 5; b++ {
			bit := start + b
			if bit >= 0 && value&(0x10>>b) != 0 {
				id[bit/8] |= 0x80 >> (bit % 8)
			}
		}
	}
	return id, nil
}

// Validate checks if an ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("game ID must be exactly 26 characters, got %d", len(id))
	}

	// Check first character doesn't exceed 7 (to ensure it represents ≤ 128 bits)
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}

	for i := range len(id) {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}

	return nil
}
