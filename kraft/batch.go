// Package kraft decodes the on-disk KRaft cluster-metadata log format: a
// stream of record batches, each carrying topic, partition, and
// feature-level records (SPEC_FULL.md §3, §4.5).
package kraft

import (
	"encoding/binary"
	"errors"
)

// BatchHeaderSize is the fixed size of a record batch's header, grounded
// on the 61-byte layout in
// other_examples/...shake-karrot-lightkafka__internal-message-record_batch.go.go
// and SPEC_FULL.md §3.
const BatchHeaderSize = 61

// ErrTruncatedBatch is returned by decodeBatchHeader when fewer than
// BatchHeaderSize bytes remain. decodeSnapshot stops decoding on it, and
// likewise on a batch whose declared length runs past the end of the file,
// rather than erroring the whole read (SPEC_FULL.md §4.5).
var ErrTruncatedBatch = errors.New("kraft: batch runs past end of file")

// BatchHeader is the fixed 61-byte header preceding every record batch.
type BatchHeader struct {
	BaseOffset           int64
	BatchLength          int32
	PartitionLeaderEpoch int32
	Magic                int8
	CRC                  uint32
	Attributes           int16
	LastOffsetDelta      int32
	BaseTimestamp        int64
	MaxTimestamp         int64
	ProducerID           int64
	ProducerEpoch        int16
	BaseSequence         int32
	RecordsCount         int32
}

// decodeBatchHeader reads the fixed header starting at buf[0:61] and the
// trailing records-count int32, returning the header and the offset of the
// first record byte.
func decodeBatchHeader(buf []byte) (BatchHeader, int, error) {
	if len(buf) < BatchHeaderSize {
		return BatchHeader{}, 0, ErrTruncatedBatch
	}
	h := BatchHeader{
		BaseOffset:           int64(binary.BigEndian.Uint64(buf[0:8])),
		BatchLength:          int32(binary.BigEndian.Uint32(buf[8:12])),
		PartitionLeaderEpoch: int32(binary.BigEndian.Uint32(buf[12:16])),
		Magic:                int8(buf[16]),
		CRC:                  binary.BigEndian.Uint32(buf[17:21]),
		Attributes:           int16(binary.BigEndian.Uint16(buf[21:23])),
		LastOffsetDelta:      int32(binary.BigEndian.Uint32(buf[23:27])),
		BaseTimestamp:        int64(binary.BigEndian.Uint64(buf[27:35])),
		MaxTimestamp:         int64(binary.BigEndian.Uint64(buf[35:43])),
		ProducerID:           int64(binary.BigEndian.Uint64(buf[43:51])),
		ProducerEpoch:        int16(binary.BigEndian.Uint16(buf[51:53])),
		BaseSequence:         int32(binary.BigEndian.Uint32(buf[53:57])),
		RecordsCount:         int32(binary.BigEndian.Uint32(buf[57:61])),
	}
	return h, BatchHeaderSize, nil
}

// end returns the absolute file offset one past this batch, given the
// offset its header started at: 12 bytes (base_offset + batch_length) plus
// batch_length itself, per SPEC_FULL.md's invariant.
func (h BatchHeader) end(start int) int {
	return start + 12 + int(h.BatchLength)
}
