package protocol

import (
	"encoding/binary"
	"errors"
	"unicode/utf8"
)

// ErrIncompleteFrame is returned by ReadFrame when fewer bytes are
// available than the length prefix promised.
var ErrIncompleteFrame = errors.New("protocol: incomplete frame")

// ErrMalformedRequest covers any structural decoding failure in the header
// or body: bad UTF-8, a short buffer, or a bad varint. Per SPEC_FULL.md §7
// this always terminates the connection; it is never turned into a framed
// response because there is no correlation id to echo yet.
var ErrMalformedRequest = errors.New("protocol: malformed request")

// RequestHeader is the decoded Kafka request header (SPEC_FULL.md §3).
// This broker only ever sees request header version 2 (the version every
// API it supports requires), so the header decode is not itself
// version-gated the way request bodies are.
type RequestHeader struct {
	APIKey        int16
	APIVersion    int16
	CorrelationID int32
	ClientID      *string
}

// IsSupportedVersion reports whether this header names an (api_key,
// api_version) pair the dispatcher will route rather than reject.
func (h RequestHeader) IsSupportedVersion() bool {
	return IsSupportedVersion(h.APIKey, h.APIVersion)
}

// ReadFrame reads the 4-byte big-endian length prefix and exactly that many
// following bytes from r, returning the raw request (header + body) with
// the length prefix stripped. A short read on the length prefix itself
// (EOF, e.g. a client that simply closed the connection) is reported via
// the returned error so callers can distinguish a clean disconnect from a
// truncated frame if they want to; this broker's connection handler treats
// both the same way, by closing the connection.
func ReadFrame(r ByteReader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := readFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	size := int32(binary.BigEndian.Uint32(lenBuf[:]))
	if size < 0 {
		return nil, ErrIncompleteFrame
	}
	body := make([]byte, size)
	if _, err := readFull(r, body); err != nil {
		return nil, ErrIncompleteFrame
	}
	return body, nil
}

// ByteReader is the minimal io.Reader-shaped dependency ReadFrame needs;
// kept narrow so tests can pass a bytes.Reader without importing net.
type ByteReader interface {
	Read(p []byte) (n int, err error)
}

func readFull(r ByteReader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// DecodeHeader consumes api_key, api_version, correlation_id, the
// old-style int16-length client_id, and a terminal tag-buffer byte from
// the front of raw, returning the header and the remaining body slice for
// the matching request body decoder (SPEC_FULL.md §4.2).
func DecodeHeader(raw []byte) (RequestHeader, []byte, error) {
	d := newRealDecoder(raw)

	apiKey, err := d.getInt16()
	if err != nil {
		return RequestHeader{}, nil, ErrMalformedRequest
	}
	apiVersion, err := d.getInt16()
	if err != nil {
		return RequestHeader{}, nil, ErrMalformedRequest
	}
	correlationID, err := d.getInt32()
	if err != nil {
		return RequestHeader{}, nil, ErrMalformedRequest
	}

	clientIDLen, err := d.getInt16()
	if err != nil {
		return RequestHeader{}, nil, ErrMalformedRequest
	}
	var clientID *string
	if clientIDLen > 0 {
		raw, err := d.getRawBytes(int(clientIDLen))
		if err != nil {
			return RequestHeader{}, nil, ErrMalformedRequest
		}
		if !utf8.Valid(raw) {
			return RequestHeader{}, nil, ErrMalformedRequest
		}
		s := string(raw)
		clientID = &s
	} else if clientIDLen < -1 {
		return RequestHeader{}, nil, ErrMalformedRequest
	}

	if err := d.tagBuffer(); err != nil {
		return RequestHeader{}, nil, ErrMalformedRequest
	}

	header := RequestHeader{
		APIKey:        apiKey,
		APIVersion:    apiVersion,
		CorrelationID: correlationID,
		ClientID:      clientID,
	}
	return header, raw[len(raw)-d.remaining():], nil
}
