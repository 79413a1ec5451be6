package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFetchRequestBytes(topicIDs []UUID) []byte {
	e := newRealEncoder()
	e.putInt32(500) // max_wait_ms
	e.putInt32(1)   // min_bytes
	e.putInt32(1 << 20)
	e.putInt8(0) // isolation level
	e.putInt32(0)
	e.putInt32(-1)

	_ = e.putCompactArrayLength(len(topicIDs))
	for _, id := range topicIDs {
		e.putUUID(id)
		_ = e.putCompactArrayLength(0) // no partitions needed for this test
		e.tagBuffer()
	}
	_ = e.putCompactArrayLength(0) // forgotten topics
	_ = e.putCompactNullableString(nil)
	e.tagBuffer()
	return e.bytes()
}

func TestDecodeFetchRequestRecoversTopicIDs(t *testing.T) {
	id1 := UUID{1: 1}
	id2 := UUID{2: 2}
	raw := buildFetchRequestBytes([]UUID{id1, id2})

	d := newRealDecoder(raw)
	req, err := decodeFetchRequest(d)
	require.NoError(t, err)
	require.Len(t, req.Topics, 2)
	assert.Equal(t, id1, req.Topics[0].TopicID)
	assert.Equal(t, id2, req.Topics[1].TopicID)
}

func TestFetchUnknownTopicResponseShape(t *testing.T) {
	// Scenario 5 from SPEC_FULL.md §8.
	id, err := ParseUUID("11111111-1111-1111-1111-111111111111")
	require.NoError(t, err)

	resp := UnknownTopicFetchResponse(id)
	pe := newRealEncoder()
	require.NoError(t, resp.encode(pe))

	d := newRealDecoder(pe.bytes())
	_, _ = d.getInt32() // throttle_time_ms
	errCode, err := d.getInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(100), errCode)

	_, _ = d.getInt32() // session id
	n, err := d.getCompactArrayLength()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	gotID, err := d.getUUID()
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
}

func TestFetchEmptyTopicResponseShape(t *testing.T) {
	id := UUID{9: 9}
	resp := EmptyTopicFetchResponse(id, []FetchResponsePartition{{PartitionIndex: 0}, {PartitionIndex: 1}})
	pe := newRealEncoder()
	require.NoError(t, resp.encode(pe))

	d := newRealDecoder(pe.bytes())
	_, _ = d.getInt32()
	errCode, _ := d.getInt16()
	assert.Equal(t, int16(0), errCode)
	_, _ = d.getInt32()

	n, err := d.getCompactArrayLength()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	gotID, err := d.getUUID()
	require.NoError(t, err)
	assert.Equal(t, id, gotID)

	partitionCount, err := d.getCompactArrayLength()
	require.NoError(t, err)
	assert.Equal(t, 2, partitionCount)
}

func TestFetchResponsePartition_RecordsRoundTrip(t *testing.T) {
	p := &FetchResponsePartition{PartitionIndex: 0, Records: []byte("hello")}
	pe := newRealEncoder()
	require.NoError(t, p.encode(pe))

	d := newRealDecoder(pe.bytes())
	_, _ = d.getInt32() // partition_index
	_, _ = d.getInt16() // error_code
	_, _ = d.getInt64() // high_watermark
	_, _ = d.getInt64() // last_stable_offset
	_, _ = d.getInt64() // log_start_offset
	_, err := d.getCompactArrayLength()
	require.NoError(t, err) // aborted_transactions
	_, _ = d.getInt32()     // preferred_read_replica

	records, err := d.getCompactNullableString()
	require.NoError(t, err)
	require.NotNil(t, records)
	assert.Equal(t, "hello", *records)
}

func TestFetchResponsePartition_NilRecordsEncodeAsNull(t *testing.T) {
	p := &FetchResponsePartition{PartitionIndex: 0}
	pe := newRealEncoder()
	require.NoError(t, p.encode(pe))

	d := newRealDecoder(pe.bytes())
	_, _ = d.getInt32()
	_, _ = d.getInt16()
	_, _ = d.getInt64()
	_, _ = d.getInt64()
	_, _ = d.getInt64()
	_, _ = d.getCompactArrayLength()
	_, _ = d.getInt32()

	records, err := d.getCompactNullableString()
	require.NoError(t, err)
	assert.Nil(t, records)
}
