package kraft

import (
	"testing"

	hashiuuid "github.com/hashicorp/go-uuid"
	"github.com/fork-the-planet/kraft-broker/protocol"
)

// randomUUID generates a synthetic topic/partition id for table tests.
// Production code never generates UUIDs (§4A.8 of SPEC_FULL.md) -- this
// helper exists only so test fixtures don't all collide on the same id.
func randomUUID(t *testing.T) protocol.UUID {
	t.Helper()
	raw, err := hashiuuid.GenerateRandomBytes(16)
	if err != nil {
		t.Fatalf("generating random uuid bytes: %v", err)
	}
	var u protocol.UUID
	copy(u[:], raw)
	return u
}

func encodeTopicRecordValue(name string, id protocol.UUID) []byte {
	e := protocol.NewEncoder()
	e.PutInt8(frameVersion)
	e.PutInt8(recordTypeTopic)
	e.PutInt8(0) // version
	_ = e.PutCompactString(name)
	e.PutUUID(id)
	e.TagBuffer()
	return e.Bytes()
}

func encodePartitionRecordValue(p PartitionRecord) []byte {
	e := protocol.NewEncoder()
	e.PutInt8(frameVersion)
	e.PutInt8(recordTypePartition)
	e.PutInt8(1) // version
	e.PutUint32(p.PartitionID)
	e.PutUUID(p.TopicID)
	for _, arr := range [][]uint32{p.Replicas, p.InSyncReplicas, p.RemovingReplicas, p.AddingReplicas} {
		_ = e.PutCompactArrayLength(len(arr))
		for _, v := range arr {
			e.PutUint32(v)
		}
	}
	e.PutUint32(p.LeaderID)
	e.PutUint32(p.LeaderEpoch)
	e.PutUint32(p.PartitionEpoch)
	_ = e.PutCompactArrayLength(len(p.Directories))
	for _, d := range p.Directories {
		e.PutUUID(d)
	}
	e.TagBuffer()
	return e.Bytes()
}

func encodeFeatureLevelRecordValue(name string, level uint16) []byte {
	e := protocol.NewEncoder()
	e.PutInt8(frameVersion)
	e.PutInt8(recordTypeFeatureLevel)
	e.PutInt8(0)
	_ = e.PutCompactString(name)
	e.PutInt16(int16(level))
	e.TagBuffer()
	return e.Bytes()
}

func encodeUnknownTypeRecordValue() []byte {
	e := protocol.NewEncoder()
	e.PutInt8(frameVersion)
	e.PutInt8(99) // unrecognized record_type
	e.PutInt8(0)
	_ = e.PutRawBytes([]byte{1, 2, 3, 4})
	return e.Bytes()
}

// encodeRecord wraps a decoded record *value* (the part decodeRecordValue
// consumes) in the outer record envelope: varint length, attributes,
// zig-zag deltas, a null key, the value, and zero headers.
func encodeRecord(value []byte) []byte {
	inner := protocol.NewEncoder()
	inner.PutInt8(0) // attributes
	inner.PutVarint(0) // timestamp_delta
	inner.PutVarint(0) // offset_delta
	inner.PutVarint(-1) // key: null
	inner.PutVarint(int64(len(value)))
	_ = inner.PutRawBytes(value)
	inner.PutVarint(0) // header count

	full := protocol.NewEncoder()
	full.PutVarint(int64(len(inner.Bytes())))
	_ = full.PutRawBytes(inner.Bytes())
	return full.Bytes()
}

// encodeBatch assembles a full record batch (61-byte header + concatenated
// already-enveloped records) the way the on-disk log format requires.
func encodeBatch(records [][]byte) []byte {
	var recordBytes []byte
	for _, r := range records {
		recordBytes = append(recordBytes, r...)
	}

	batchLength := int32(BatchHeaderSize - 12 + len(recordBytes))

	e := protocol.NewEncoder()
	e.PutInt64(0)            // base_offset
	e.PutInt32(batchLength)  // batch_length
	e.PutInt32(0)            // partition_leader_epoch
	e.PutInt8(2)             // magic
	e.PutUint32(0)           // crc (unchecked by this decoder)
	e.PutInt16(0)            // attributes
	e.PutInt32(int32(len(records) - 1)) // last_offset_delta
	e.PutInt64(0)            // base_timestamp
	e.PutInt64(0)            // max_timestamp
	e.PutInt64(-1)           // producer_id
	e.PutInt16(-1)           // producer_epoch
	e.PutInt32(-1)           // base_sequence
	e.PutInt32(int32(len(records)))
	_ = e.PutRawBytes(recordBytes)
	return e.Bytes()
}
