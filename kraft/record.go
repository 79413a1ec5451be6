package kraft

import (
	"errors"

	"github.com/fork-the-planet/kraft-broker/protocol"
)

// Record types this broker understands, per SPEC_FULL.md §3. Any other
// record_type byte is skipped using the record's own length, per §4.5.
const (
	recordTypeTopic        = 2
	recordTypePartition    = 3
	recordTypeFeatureLevel = 12
)

const frameVersion = 1

// ErrUnknownRecordVersion is returned when a known record_type carries a
// version byte this decoder does not implement; SPEC_FULL.md only requires
// tolerating unknown record *types*, not unknown versions of known types,
// so this is treated as a malformed record rather than silently skipped.
var ErrUnknownRecordVersion = errors.New("kraft: unknown record version")

// TopicRecord is a decoded type-2 record.
type TopicRecord struct {
	Name string
	ID   protocol.UUID
}

// PartitionRecord is a decoded type-3 record.
type PartitionRecord struct {
	PartitionID     uint32
	TopicID         protocol.UUID
	Replicas        []uint32
	InSyncReplicas  []uint32
	RemovingReplicas []uint32
	AddingReplicas  []uint32
	LeaderID        uint32
	LeaderEpoch     uint32
	PartitionEpoch  uint32
	Directories     []protocol.UUID
}

// FeatureLevelRecord is a decoded type-12 record.
type FeatureLevelRecord struct {
	Name  string
	Level uint16
}

// Record is one decoded record from a batch. Exactly one of Topic,
// Partition, or FeatureLevel is non-nil unless the record's type was
// unrecognized, in which case all three are nil and Skipped is true.
type Record struct {
	Topic        *TopicRecord
	Partition    *PartitionRecord
	FeatureLevel *FeatureLevelRecord
	Skipped      bool
}

// decodeRecord reads one length-prefixed record from d: a varint length,
// attributes byte, zig-zag timestamp/offset deltas, a compact-nullable
// key, a varint value length, the typed value, and a compact array of
// headers (SPEC_FULL.md §3).
func decodeRecord(d *protocol.Decoder) (Record, error) {
	length, err := d.GetVarint()
	if err != nil {
		return Record{}, err
	}
	if length < 0 {
		return Record{}, errors.New("kraft: negative record length")
	}

	if _, err := d.GetInt8(); err != nil { // attributes
		return Record{}, err
	}
	if _, err := d.GetVarint(); err != nil { // timestamp_delta
		return Record{}, err
	}
	if _, err := d.GetVarint(); err != nil { // offset_delta
		return Record{}, err
	}

	keyLen, err := d.GetVarint() // compact-nullable key: -1 means null
	if err != nil {
		return Record{}, err
	}
	if keyLen > 0 {
		if _, err := d.GetRawBytes(int(keyLen)); err != nil {
			return Record{}, err
		}
	}

	valueLen, err := d.GetVarint()
	if err != nil {
		return Record{}, err
	}
	if valueLen < 0 {
		return Record{}, errors.New("kraft: negative record value length")
	}

	valueBytes, err := d.GetRawBytes(int(valueLen))
	if err != nil {
		return Record{}, err
	}

	rec, err := decodeRecordValue(valueBytes)
	if err != nil {
		return Record{}, err
	}

	headerCount, err := d.GetVarint()
	if err != nil {
		return Record{}, err
	}
	for i := int64(0); i < headerCount; i++ {
		if _, err := d.GetCompactString(); err != nil {
			return Record{}, err
		}
		hvLen, err := d.GetVarint()
		if err != nil {
			return Record{}, err
		}
		if hvLen > 0 {
			if _, err := d.GetRawBytes(int(hvLen)); err != nil {
				return Record{}, err
			}
		}
	}

	return rec, nil
}

// decodeRecordValue dispatches on record_type after the common
// frame_version/record_type/version preamble. Unknown types are reported
// as Record{Skipped: true} rather than an error, per SPEC_FULL.md §4.5.
func decodeRecordValue(value []byte) (Record, error) {
	d := protocol.NewDecoder(value)

	fv, err := d.GetInt8()
	if err != nil {
		return Record{}, err
	}
	if fv != frameVersion {
		return Record{Skipped: true}, nil
	}
	recordType, err := d.GetInt8()
	if err != nil {
		return Record{}, err
	}
	version, err := d.GetInt8()
	if err != nil {
		return Record{}, err
	}

	switch recordType {
	case recordTypeTopic:
		return decodeTopicRecord(d, version)
	case recordTypePartition:
		return decodePartitionRecord(d, version)
	case recordTypeFeatureLevel:
		return decodeFeatureLevelRecord(d, version)
	default:
		return Record{Skipped: true}, nil
	}
}

func decodeTopicRecord(d *protocol.Decoder, version int8) (Record, error) {
	if version != 0 {
		return Record{}, ErrUnknownRecordVersion
	}
	name, err := d.GetCompactString()
	if err != nil {
		return Record{}, err
	}
	// 16 raw UUID bytes, read verbatim. The original source's earlier
	// iteration shifted this read by one byte; there is no shift here.
	id, err := d.GetUUID()
	if err != nil {
		return Record{}, err
	}
	if err := d.TagBuffer(); err != nil {
		return Record{}, err
	}
	return Record{Topic: &TopicRecord{Name: name, ID: id}}, nil
}

func decodeUint32Array(d *protocol.Decoder) ([]uint32, error) {
	n, err := d.GetCompactArrayLength()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		v, err := d.GetUint32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func decodePartitionRecord(d *protocol.Decoder, version int8) (Record, error) {
	if version != 1 {
		return Record{}, ErrUnknownRecordVersion
	}
	p := &PartitionRecord{}
	var err error

	if p.PartitionID, err = d.GetUint32(); err != nil {
		return Record{}, err
	}
	if p.TopicID, err = d.GetUUID(); err != nil {
		return Record{}, err
	}
	if p.Replicas, err = decodeUint32Array(d); err != nil {
		return Record{}, err
	}
	if p.InSyncReplicas, err = decodeUint32Array(d); err != nil {
		return Record{}, err
	}
	if p.RemovingReplicas, err = decodeUint32Array(d); err != nil {
		return Record{}, err
	}
	if p.AddingReplicas, err = decodeUint32Array(d); err != nil {
		return Record{}, err
	}
	if p.LeaderID, err = d.GetUint32(); err != nil {
		return Record{}, err
	}
	if p.LeaderEpoch, err = d.GetUint32(); err != nil {
		return Record{}, err
	}
	if p.PartitionEpoch, err = d.GetUint32(); err != nil {
		return Record{}, err
	}

	dirCount, err := d.GetCompactArrayLength()
	if err != nil {
		return Record{}, err
	}
	if dirCount > 0 {
		p.Directories = make([]protocol.UUID, dirCount)
		for i := 0; i < dirCount; i++ {
			if p.Directories[i], err = d.GetUUID(); err != nil {
				return Record{}, err
			}
		}
	}

	if err := d.TagBuffer(); err != nil {
		return Record{}, err
	}
	return Record{Partition: p}, nil
}

func decodeFeatureLevelRecord(d *protocol.Decoder, version int8) (Record, error) {
	if version != 0 {
		return Record{}, ErrUnknownRecordVersion
	}
	name, err := d.GetCompactString()
	if err != nil {
		return Record{}, err
	}
	level, err := d.GetInt16()
	if err != nil {
		return Record{}, err
	}
	if err := d.TagBuffer(); err != nil {
		return Record{}, err
	}
	return Record{FeatureLevel: &FeatureLevelRecord{Name: name, Level: uint16(level)}}, nil
}
