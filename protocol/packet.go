// Package protocol implements the Kafka wire codec used by this broker:
// fixed-width integers, unsigned/zig-zag varints, compact strings and
// arrays, UUIDs, and the request/response types for the APIs this broker
// answers (ApiVersions, Fetch, DescribeTopicPartitions).
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInsufficientData is returned by any get* method that would read past
// the end of the buffer.
var ErrInsufficientData = errors.New("protocol: insufficient data to decode")

// packetEncoder is satisfied by realEncoder. Every request/response type in
// this package encodes itself through this narrow vocabulary rather than
// slicing bytes directly, mirroring the teacher's packetEncoder contract.
type packetEncoder interface {
	putInt8(in int8)
	putInt16(in int16)
	putInt32(in int32)
	putInt64(in int64)
	putUint32(in uint32)
	putBool(in bool)

	putUnsignedVarint(in uint64)
	putVarint(in int64)

	putCompactString(s string) error
	putCompactNullableString(s *string) error
	putCompactArrayLength(n int) error
	putRawBytes(b []byte) error
	putUUID(u UUID)

	// tagBuffer writes a single empty tagged-fields terminator.
	tagBuffer()

	bytes() []byte
}

// packetDecoder is satisfied by realDecoder.
type packetDecoder interface {
	getInt8() (int8, error)
	getInt16() (int16, error)
	getInt32() (int32, error)
	getInt64() (int64, error)
	getUint32() (uint32, error)
	getBool() (bool, error)

	getUnsignedVarint() (uint64, error)
	getVarint() (int64, error)

	getCompactString() (string, error)
	getCompactNullableString() (*string, error)
	getCompactArrayLength() (int, error)
	getRawBytes(n int) ([]byte, error)
	getUUID() (UUID, error)

	// tagBuffer consumes and discards a tagged-fields section. This broker
	// never emits tagged fields of its own, so it only needs to skip past
	// whatever the client or on-disk record included.
	tagBuffer() error

	remaining() int
	peek(n int) ([]byte, error)
}

// realEncoder appends to an in-memory buffer. Every put* call succeeds
// except putCompactArrayLength, which rejects a negative length; string
// content (including UTF-8 validity) is not checked.
type realEncoder struct {
	buf []byte
}

func newRealEncoder() *realEncoder {
	return &realEncoder{buf: make([]byte, 0, 256)}
}

func (e *realEncoder) putInt8(in int8)   { e.buf = append(e.buf, byte(in)) }
func (e *realEncoder) putInt16(in int16) { e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(in)) }
func (e *realEncoder) putInt32(in int32) { e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(in)) }
func (e *realEncoder) putInt64(in int64) { e.buf = binary.BigEndian.AppendUint64(e.buf, uint64(in)) }
func (e *realEncoder) putUint32(in uint32) { e.buf = binary.BigEndian.AppendUint32(e.buf, in) }

func (e *realEncoder) putBool(in bool) {
	if in {
		e.putInt8(1)
		return
	}
	e.putInt8(0)
}

func (e *realEncoder) putUnsignedVarint(in uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], in)
	e.buf = append(e.buf, tmp[:n]...)
}

func (e *realEncoder) putVarint(in int64) {
	e.putUnsignedVarint(zigzagEncode(in))
}

// putCompactString writes the n+1 length prefix followed by raw UTF-8
// bytes. Kafka compact strings are never "null" from an encoder's
// perspective in this broker (only decoded requests can be null); present
// empty strings encode as prefix 1.
func (e *realEncoder) putCompactString(s string) error {
	e.putUnsignedVarint(uint64(len(s)) + 1)
	e.buf = append(e.buf, s...)
	return nil
}

func (e *realEncoder) putCompactNullableString(s *string) error {
	if s == nil {
		e.putUnsignedVarint(0)
		return nil
	}
	return e.putCompactString(*s)
}

// putCompactArrayLength writes the n+1 prefix for an array of n elements.
// Per SPEC_FULL.md §4.1 an empty array MUST encode as 1, never 0 (0 means
// null, which this broker's responses never produce).
func (e *realEncoder) putCompactArrayLength(n int) error {
	if n < 0 {
		return fmt.Errorf("protocol: negative array length %d", n)
	}
	e.putUnsignedVarint(uint64(n) + 1)
	return nil
}

func (e *realEncoder) putRawBytes(b []byte) error {
	e.buf = append(e.buf, b...)
	return nil
}

func (e *realEncoder) putUUID(u UUID) {
	e.buf = append(e.buf, u[:]...)
}

func (e *realEncoder) tagBuffer() {
	e.putUnsignedVarint(0)
}

func (e *realEncoder) bytes() []byte { return e.buf }

// realDecoder reads from a byte slice cursor. Every get* method advances
// off on success. The fixed-width reads and getRawBytes leave off untouched
// on failure; varint, compact-string and tag-buffer reads may already have
// advanced off when they fail, so the cursor is not usable after an error.
type realDecoder struct {
	buf []byte
	off int
}

func newRealDecoder(buf []byte) *realDecoder {
	return &realDecoder{buf: buf}
}

func (d *realDecoder) remaining() int { return len(d.buf) - d.off }

func (d *realDecoder) peek(n int) ([]byte, error) {
	if d.remaining() < n {
		return nil, ErrInsufficientData
	}
	return d.buf[d.off : d.off+n], nil
}

func (d *realDecoder) getInt8() (int8, error) {
	if d.remaining() < 1 {
		return 0, ErrInsufficientData
	}
	v := int8(d.buf[d.off])
	d.off++
	return v, nil
}

func (d *realDecoder) getInt16() (int16, error) {
	if d.remaining() < 2 {
		return 0, ErrInsufficientData
	}
	v := int16(binary.BigEndian.Uint16(d.buf[d.off:]))
	d.off += 2
	return v, nil
}

func (d *realDecoder) getInt32() (int32, error) {
	if d.remaining() < 4 {
		return 0, ErrInsufficientData
	}
	v := int32(binary.BigEndian.Uint32(d.buf[d.off:]))
	d.off += 4
	return v, nil
}

func (d *realDecoder) getInt64() (int64, error) {
	if d.remaining() < 8 {
		return 0, ErrInsufficientData
	}
	v := int64(binary.BigEndian.Uint64(d.buf[d.off:]))
	d.off += 8
	return v, nil
}

func (d *realDecoder) getUint32() (uint32, error) {
	if d.remaining() < 4 {
		return 0, ErrInsufficientData
	}
	v := binary.BigEndian.Uint32(d.buf[d.off:])
	d.off += 4
	return v, nil
}

func (d *realDecoder) getBool() (bool, error) {
	v, err := d.getInt8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// getUnsignedVarint implements the varint contract from SPEC_FULL.md §4.1:
// 7 data bits per byte, continuation bit high, little-endian group order,
// at most 10 bytes for a 64-bit value.
func (d *realDecoder) getUnsignedVarint() (uint64, error) {
	var x uint64
	var s uint
	for i := 0; ; i++ {
		if i == 10 {
			return 0, ErrMalformedVarint
		}
		if d.remaining() < 1 {
			return 0, ErrMalformedVarint
		}
		b := d.buf[d.off]
		d.off++
		if b < 0x80 {
			if i == 9 && b > 1 {
				return 0, ErrMalformedVarint
			}
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
}

func (d *realDecoder) getVarint() (int64, error) {
	u, err := d.getUnsignedVarint()
	if err != nil {
		return 0, err
	}
	return zigzagDecode(u), nil
}

// getCompactString decodes a compact string, returning ErrUnexpectedNull if
// the prefix encodes null (callers that accept null strings use
// getCompactNullableString instead).
func (d *realDecoder) getCompactString() (string, error) {
	s, err := d.getCompactNullableString()
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", ErrUnexpectedNull
	}
	return *s, nil
}

func (d *realDecoder) getCompactNullableString() (*string, error) {
	n, err := d.getUnsignedVarint()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	length := int(n - 1)
	if d.remaining() < length {
		return nil, ErrInsufficientData
	}
	raw := d.buf[d.off : d.off+length]
	d.off += length
	s := string(raw)
	return &s, nil
}

// getCompactArrayLength returns -1 for a null array (prefix 0) and n>=0
// otherwise, matching SPEC_FULL.md §4.1's null/empty distinction.
func (d *realDecoder) getCompactArrayLength() (int, error) {
	n, err := d.getUnsignedVarint()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return -1, nil
	}
	return int(n - 1), nil
}

func (d *realDecoder) getRawBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("protocol: negative byte count %d", n)
	}
	if d.remaining() < n {
		return nil, ErrInsufficientData
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *realDecoder) getUUID() (UUID, error) {
	var u UUID
	b, err := d.getRawBytes(16)
	if err != nil {
		return u, err
	}
	copy(u[:], b)
	return u, nil
}

// tagBuffer reads one unsigned-varint tag count and, for each tagged field
// present, its own unsigned-varint tag id, unsigned-varint length, and that
// many raw bytes. This broker never needs the tagged values themselves, so
// it discards them; it still must consume exactly the right number of
// bytes to keep the cursor aligned for whatever follows.
func (d *realDecoder) tagBuffer() error {
	n, err := d.getUnsignedVarint()
	if err != nil {
		return err
	}
	for i := uint64(0); i < n; i++ {
		if _, err := d.getUnsignedVarint(); err != nil { // tag id
			return err
		}
		size, err := d.getUnsignedVarint()
		if err != nil {
			return err
		}
		if _, err := d.getRawBytes(int(size)); err != nil {
			return err
		}
	}
	return nil
}
