package kraft

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fork-the-planet/kraft-broker/protocol"
)

func TestDecodeRecord_Topic(t *testing.T) {
	id := randomUUID(t)
	raw := encodeRecord(encodeTopicRecordValue("accounts", id))

	d := protocol.NewDecoder(raw)
	rec, err := decodeRecord(d)
	require.NoError(t, err)
	require.NotNil(t, rec.Topic)
	require.Equal(t, "accounts", rec.Topic.Name)
	require.Equal(t, id, rec.Topic.ID)
	require.Equal(t, 0, d.Remaining(), "decodeRecord must consume exactly its length-prefixed span")
}

func TestDecodeRecord_Partition(t *testing.T) {
	topicID := randomUUID(t)
	dirID := randomUUID(t)
	want := PartitionRecord{
		PartitionID:      3,
		TopicID:          topicID,
		Replicas:         []uint32{1, 2, 3},
		InSyncReplicas:   []uint32{1, 2},
		RemovingReplicas: nil,
		AddingReplicas:   []uint32{4},
		LeaderID:         2,
		LeaderEpoch:      7,
		PartitionEpoch:   1,
		Directories:      []protocol.UUID{dirID},
	}
	raw := encodeRecord(encodePartitionRecordValue(want))

	d := protocol.NewDecoder(raw)
	rec, err := decodeRecord(d)
	require.NoError(t, err)
	require.NotNil(t, rec.Partition)
	require.Equal(t, want.PartitionID, rec.Partition.PartitionID)
	require.Equal(t, want.TopicID, rec.Partition.TopicID)
	require.Equal(t, want.Replicas, rec.Partition.Replicas)
	require.Equal(t, want.InSyncReplicas, rec.Partition.InSyncReplicas)
	require.Equal(t, want.AddingReplicas, rec.Partition.AddingReplicas)
	require.Equal(t, want.LeaderID, rec.Partition.LeaderID)
	require.Equal(t, want.LeaderEpoch, rec.Partition.LeaderEpoch)
	require.Equal(t, want.PartitionEpoch, rec.Partition.PartitionEpoch)
	require.Equal(t, want.Directories, rec.Partition.Directories)
}

func TestDecodeRecord_FeatureLevel(t *testing.T) {
	raw := encodeRecord(encodeFeatureLevelRecordValue("kraft.version", 1))

	d := protocol.NewDecoder(raw)
	rec, err := decodeRecord(d)
	require.NoError(t, err)
	require.NotNil(t, rec.FeatureLevel)
	require.Equal(t, "kraft.version", rec.FeatureLevel.Name)
	require.Equal(t, uint16(1), rec.FeatureLevel.Level)
}

func TestDecodeRecord_UnknownTypeSkipped(t *testing.T) {
	raw := encodeRecord(encodeUnknownTypeRecordValue())

	d := protocol.NewDecoder(raw)
	rec, err := decodeRecord(d)
	require.NoError(t, err)
	require.True(t, rec.Skipped)
	require.Nil(t, rec.Topic)
	require.Nil(t, rec.Partition)
	require.Nil(t, rec.FeatureLevel)
}

func TestDecodeRecordValue_UnknownFrameVersionSkipped(t *testing.T) {
	e := protocol.NewEncoder()
	e.PutInt8(9) // not frameVersion
	e.PutInt8(recordTypeTopic)
	e.PutInt8(0)

	rec, err := decodeRecordValue(e.Bytes())
	require.NoError(t, err)
	require.True(t, rec.Skipped)
}

func TestDecodeTopicRecord_UnknownVersionErrors(t *testing.T) {
	e := protocol.NewEncoder()
	e.PutInt8(frameVersion)
	e.PutInt8(recordTypeTopic)
	e.PutInt8(7) // unsupported version

	_, err := decodeRecordValue(e.Bytes())
	require.ErrorIs(t, err, ErrUnknownRecordVersion)
}

func TestDecodePartitionRecord_UnknownVersionErrors(t *testing.T) {
	e := protocol.NewEncoder()
	e.PutInt8(frameVersion)
	e.PutInt8(recordTypePartition)
	e.PutInt8(2) // unsupported version

	_, err := decodeRecordValue(e.Bytes())
	require.ErrorIs(t, err, ErrUnknownRecordVersion)
}

func TestDecodeFeatureLevelRecord_UnknownVersionErrors(t *testing.T) {
	e := protocol.NewEncoder()
	e.PutInt8(frameVersion)
	e.PutInt8(recordTypeFeatureLevel)
	e.PutInt8(3) // unsupported version

	_, err := decodeRecordValue(e.Bytes())
	require.ErrorIs(t, err, ErrUnknownRecordVersion)
}
