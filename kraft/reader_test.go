package kraft

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeLog writes data as the metadata log file under a fresh temp log dir
// and returns the log dir (the Reader's LogDir, not the partition dir).
func writeLog(t *testing.T, data []byte) string {
	t.Helper()
	logDir := t.TempDir()
	partDir := filepath.Join(logDir, MetadataLogDir)
	require.NoError(t, os.MkdirAll(partDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(partDir, MetadataLogFile), data, 0o644))
	return logDir
}

// TestReaderSnapshot_ThreeBatches covers SPEC_FULL.md §8 scenario 6: a
// synthetic log with a FeatureLevel batch, a Topic batch, and a Partition
// batch decodes to exactly three batches, and the combined view exposes one
// topic with one partition.
func TestReaderSnapshot_ThreeBatches(t *testing.T) {
	topicID := randomUUID(t)

	featureBatch := encodeBatch([][]byte{
		encodeRecord(encodeFeatureLevelRecordValue("metadata.version", 20)),
	})
	topicBatch := encodeBatch([][]byte{
		encodeRecord(encodeTopicRecordValue("widgets", topicID)),
	})
	partitionBatch := encodeBatch([][]byte{
		encodeRecord(encodePartitionRecordValue(PartitionRecord{
			PartitionID:    0,
			TopicID:        topicID,
			Replicas:       []uint32{1},
			InSyncReplicas: []uint32{1},
			LeaderID:       1,
			LeaderEpoch:    0,
			PartitionEpoch: 0,
		})),
	})

	data := append(append(append([]byte{}, featureBatch...), topicBatch...), partitionBatch...)
	logDir := writeLog(t, data)

	r := NewReader(logDir)
	snap, err := r.Snapshot()
	require.NoError(t, err)

	require.Len(t, snap.Batches, 3)

	topics := snap.Topics()
	require.Len(t, topics, 1)
	require.Equal(t, "widgets", topics[0].Name)
	require.Equal(t, topicID, topics[0].ID)

	partitions := snap.Partitions()
	require.Len(t, partitions, 1)
	require.Equal(t, topicID, partitions[0].TopicID)
	require.Equal(t, uint32(0), partitions[0].PartitionID)

	levels := snap.FeatureLevels()
	require.Equal(t, uint16(20), levels["metadata.version"])
}

// TestReaderSnapshot_CursorEndsAtEOF asserts the decode loop consumes the
// file exactly, leaving nothing unread, by reconstructing the total byte
// length from the three batches and comparing against the file size.
func TestReaderSnapshot_CursorEndsAtEOF(t *testing.T) {
	b1 := encodeBatch([][]byte{encodeRecord(encodeFeatureLevelRecordValue("f", 1))})
	b2 := encodeBatch([][]byte{encodeRecord(encodeTopicRecordValue("t", randomUUID(t)))})
	data := append(append([]byte{}, b1...), b2...)

	logDir := writeLog(t, data)
	r := NewReader(logDir)
	snap, err := r.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Batches, 2)

	total := 0
	for _, b := range snap.Batches {
		total += b.Header.end(0)
	}
	require.Equal(t, len(data), total)
}

// TestReaderSnapshot_TopicUUIDNoShift guards against the one-byte shift bug
// called out in SPEC_FULL.md §4.5/§9: the topic UUID must decode
// byte-identical to what was encoded, with nothing before or after it
// consumed in its place.
func TestReaderSnapshot_TopicUUIDNoShift(t *testing.T) {
	id := randomUUID(t)
	batch := encodeBatch([][]byte{
		encodeRecord(encodeTopicRecordValue("precise-topic", id)),
	})
	logDir := writeLog(t, batch)

	snap, err := NewReader(logDir).Snapshot()
	require.NoError(t, err)

	topics := snap.Topics()
	require.Len(t, topics, 1)
	require.Equal(t, id, topics[0].ID, "topic UUID must decode without a byte shift")
	require.Equal(t, "precise-topic", topics[0].Name)
}

// TestReaderSnapshot_UnknownRecordTypeSkipped asserts an unrecognized
// record_type does not abort the batch: the known record alongside it still
// decodes.
func TestReaderSnapshot_UnknownRecordTypeSkipped(t *testing.T) {
	id := randomUUID(t)
	batch := encodeBatch([][]byte{
		encodeRecord(encodeUnknownTypeRecordValue()),
		encodeRecord(encodeTopicRecordValue("survives", id)),
	})
	logDir := writeLog(t, batch)

	snap, err := NewReader(logDir).Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Batches, 1)
	require.Len(t, snap.Batches[0].Records, 2)
	require.True(t, snap.Batches[0].Records[0].Skipped)
	require.NotNil(t, snap.Batches[0].Records[1].Topic)
	require.Equal(t, "survives", snap.Batches[0].Records[1].Topic.Name)
}

// TestReaderSnapshot_RecoversAfterBadRecordInEarlierBatch checks the resync
// behavior in SPEC_FULL.md §4.5: a batch whose record fails to decode
// (here, an unknown record *version* of a known type) is dropped as a whole,
// but the cursor still resumes at the next batch using the first batch's
// own declared length, rather than getting stuck or misreading the
// following batch.
func TestReaderSnapshot_RecoversAfterBadRecordInEarlierBatch(t *testing.T) {
	badVersionValue := func() []byte {
		// Hand-build a topic record value with an unsupported version byte
		// so decodeTopicRecord returns ErrUnknownRecordVersion.
		return []byte{frameVersion, recordTypeTopic, 9 /* bad version */}
	}

	badBatch := encodeBatch([][]byte{encodeRecord(badVersionValue())})
	goodID := randomUUID(t)
	goodBatch := encodeBatch([][]byte{encodeRecord(encodeTopicRecordValue("after-bad", goodID))})

	data := append(append([]byte{}, badBatch...), goodBatch...)
	logDir := writeLog(t, data)

	snap, err := NewReader(logDir).Snapshot()
	require.NoError(t, err)

	// Only the good batch survives; the bad one is skipped entirely rather
	// than corrupting the cursor.
	require.Len(t, snap.Batches, 1)
	topics := snap.Topics()
	require.Len(t, topics, 1)
	require.Equal(t, "after-bad", topics[0].Name)
	require.Equal(t, goodID, topics[0].ID)
}

// TestReaderSnapshot_TruncatedFinalBatchStopsWithoutError covers the
// truncated-tail case: a batch_length that runs past EOF stops decoding
// silently rather than returning an error, per SPEC_FULL.md §4.5.
func TestReaderSnapshot_TruncatedFinalBatchStopsWithoutError(t *testing.T) {
	good := encodeBatch([][]byte{encodeRecord(encodeTopicRecordValue("whole", randomUUID(t)))})
	truncated := encodeBatch([][]byte{encodeRecord(encodeTopicRecordValue("partial", randomUUID(t)))})
	truncated = truncated[:len(truncated)-5] // chop off the tail

	data := append(append([]byte{}, good...), truncated...)
	logDir := writeLog(t, data)

	snap, err := NewReader(logDir).Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Batches, 1)
	require.Equal(t, "whole", snap.Topics()[0].Name)
}

func TestReader_Path(t *testing.T) {
	r := NewReader("/var/lib/kraft")
	require.Equal(t, filepath.Join("/var/lib/kraft", MetadataLogDir, MetadataLogFile), r.Path())
}
