package protocol

import "errors"

// ErrMalformedVarint is returned when a varint's continuation bit is set on
// the 10th byte, or the buffer is exhausted before the terminating byte,
// per SPEC_FULL.md §4.1.
var ErrMalformedVarint = errors.New("protocol: malformed varint")

// ErrUnexpectedNull is returned by a decode call that requires a present
// value (e.g. getCompactString) but found the null encoding instead.
var ErrUnexpectedNull = errors.New("protocol: unexpected null value")

// zigzagEncode maps a signed integer onto the unsigned varint space the way
// Kafka's record format does: 0, -1, 1, -2, 2, ... -> 0, 1, 2, 3, 4, ...
func zigzagEncode(in int64) uint64 {
	return uint64((in << 1) ^ (in >> 63))
}

func zigzagDecode(in uint64) int64 {
	return int64(in>>1) ^ -int64(in&1)
}
