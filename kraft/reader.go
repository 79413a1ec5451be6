package kraft

import (
	"os"
	"path/filepath"

	"github.com/fork-the-planet/kraft-broker/protocol"
)

// MetadataLogDir is the conventional topic-partition directory name for
// the cluster-metadata topic's single partition, per SPEC_FULL.md §6.
const MetadataLogDir = "__cluster_metadata-0"

// MetadataLogFile is the single log segment this broker reads.
const MetadataLogFile = "00000000000000000000.log"

// Batch is one decoded record batch: its header plus the records it
// carried.
type Batch struct {
	Header  BatchHeader
	Records []Record
}

// Snapshot is the fully-decoded view of one read of the metadata log,
// consumed by metadata.Store to answer topic/partition lookups.
type Snapshot struct {
	Batches []Batch
}

// Reader reads and decodes the cluster-metadata log at LogDir.
type Reader struct {
	LogDir string
}

// NewReader builds a Reader rooted at logDir (SPEC_FULL.md §6's
// <log_dir>, defaulting to /tmp/kraft-combined-logs at the config layer).
func NewReader(logDir string) *Reader {
	return &Reader{LogDir: logDir}
}

// Path returns the absolute path to the metadata log file this Reader
// reads.
func (r *Reader) Path() string {
	return filepath.Join(r.LogDir, MetadataLogDir, MetadataLogFile)
}

// Snapshot reads the entire metadata log file and decodes every batch it
// contains, per the algorithm in SPEC_FULL.md §4.5: loop while bytes
// remain, decode the fixed header, decode exactly RecordsCount records,
// and assert the cursor lands at header.end(start); on mismatch, the
// cursor is reset to that computed end and decoding continues (recovery);
// if the declared batch_length runs past EOF, decoding stops without
// error.
func (r *Reader) Snapshot() (*Snapshot, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(data)
}

func decodeSnapshot(data []byte) (*Snapshot, error) {
	snap := &Snapshot{}
	pos := 0

	for pos < len(data) {
		header, headerLen, err := decodeBatchHeader(data[pos:])
		if err != nil {
			break
		}

		end := header.end(pos)
		if end > len(data) {
			break
		}

		recordsStart := pos + headerLen
		d := protocol.NewDecoder(data[recordsStart:end])

		records := make([]Record, 0, header.RecordsCount)
		decodeFailed := false
		for i := int32(0); i < header.RecordsCount; i++ {
			rec, err := decodeRecord(d)
			if err != nil {
				decodeFailed = true
				break
			}
			records = append(records, rec)
		}

		if !decodeFailed {
			snap.Batches = append(snap.Batches, Batch{Header: header, Records: records})
		}

		// Whether or not every record inside this batch decoded cleanly,
		// the batch's own length is authoritative: resync the cursor to
		// its declared end rather than trusting wherever decoding of its
		// records happened to stop.
		pos = end
	}

	return snap, nil
}

// Topics returns every decoded TopicRecord across all batches, in batch
// and record order.
func (s *Snapshot) Topics() []TopicRecord {
	var out []TopicRecord
	for _, b := range s.Batches {
		for _, r := range b.Records {
			if r.Topic != nil {
				out = append(out, *r.Topic)
			}
		}
	}
	return out
}

// Partitions returns every decoded PartitionRecord across all batches,
// regardless of which batch carries the owning topic record, per
// SPEC_FULL.md §4.6 ("from any batch, not only the batch containing the
// topic record").
func (s *Snapshot) Partitions() []PartitionRecord {
	var out []PartitionRecord
	for _, b := range s.Batches {
		for _, r := range b.Records {
			if r.Partition != nil {
				out = append(out, *r.Partition)
			}
		}
	}
	return out
}

// FeatureLevels returns the most recently observed level for each named
// feature, preserving SPEC_FULL.md §4.6's note that the store retains
// these even though no currently-supported API surfaces them on the wire.
func (s *Snapshot) FeatureLevels() map[string]uint16 {
	out := make(map[string]uint16)
	for _, b := range s.Batches {
		for _, r := range b.Records {
			if r.FeatureLevel != nil {
				out[r.FeatureLevel.Name] = r.FeatureLevel.Level
			}
		}
	}
	return out
}
