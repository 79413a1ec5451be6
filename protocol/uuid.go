package protocol

import (
	"encoding/hex"
	"fmt"
)

// UUID is the raw 16-byte form of a Kafka topic id, decoded big-endian
// straight off the wire with no byte reordering. See GLOSSARY for the
// canonical hyphenated string form.
type UUID [16]byte

// ZeroUUID is the all-zero topic id this broker echoes back for topics it
// has no record of.
var ZeroUUID UUID

// String renders the canonical 8-4-4-4-12 hyphenated lowercase-hex form.
func (u UUID) String() string {
	var buf [36]byte
	hex.Encode(buf[0:8], u[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], u[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], u[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], u[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], u[10:16])
	return string(buf[:])
}

// ParseUUID parses the canonical hyphenated form back into 16 raw bytes.
func ParseUUID(s string) (UUID, error) {
	var u UUID
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return u, fmt.Errorf("protocol: %q is not a canonical UUID", s)
	}
	groups := [5][2]int{{0, 8}, {9, 13}, {14, 18}, {19, 23}, {24, 36}}
	dst := u[:]
	for _, g := range groups {
		n, err := hex.Decode(dst, []byte(s[g[0]:g[1]]))
		if err != nil {
			return u, fmt.Errorf("protocol: %q is not a canonical UUID: %w", s, err)
		}
		dst = dst[n:]
	}
	return u, nil
}
