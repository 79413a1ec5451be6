// Package metadata builds an in-memory, queryable view of the decoded
// KRaft cluster-metadata log: topic lookup by name and by UUID, each
// carrying its partitions.
package metadata

import (
	"github.com/fork-the-planet/kraft-broker/kraft"
	"github.com/fork-the-planet/kraft-broker/protocol"
)

// Partition is the subset of a decoded partition record the dispatcher
// needs to build a wire response. The on-disk partition record has no
// eligible-leader-replicas / last-known-eligible-leader-replicas /
// offline-replicas fields, so a response built from this type leaves those
// arrays empty.
type Partition struct {
	PartitionID    int32
	LeaderID       int32
	LeaderEpoch    int32
	Replicas       []int32
	ISR            []int32
	PartitionEpoch int32
}

// TopicMetadata is one entry returned by ByNames/ByIDs: either a fully
// populated present topic, or a placeholder present-but-absent response per
// SPEC_FULL.md §4.6.
type TopicMetadata struct {
	ErrorCode  protocol.KError
	Name       string
	ID         protocol.UUID
	Partitions []Partition
}

// Store answers topic lookups by name and by canonical UUID string, one
// entry per requested key, in request order. SPEC_FULL.md §9 keeps this as
// a narrow interface so dispatcher code depends on an abstraction rather
// than the in-memory implementation directly.
type Store interface {
	ByNames(names []string) []TopicMetadata
	ByIDs(ids []string) []TopicMetadata
}

type topicEntry struct {
	name       string
	id         protocol.UUID
	partitions []Partition
}

// InMemoryStore is the only Store implementation: a flat index over one
// kraft.Snapshot, built once per dispatch (SPEC_FULL.md §4.6).
type InMemoryStore struct {
	byName map[string]*topicEntry
	byID   map[string]*topicEntry

	featureLevels map[string]uint16
}

// NewInMemoryStore indexes snap's topics by name and by canonical UUID
// string, then attaches every partition record to its owning topic,
// regardless of which batch carried either (§4.6: "from any batch, not
// only the batch containing the topic record").
func NewInMemoryStore(snap *kraft.Snapshot) *InMemoryStore {
	s := &InMemoryStore{
		byName:        make(map[string]*topicEntry),
		byID:          make(map[string]*topicEntry),
		featureLevels: snap.FeatureLevels(),
	}

	for _, t := range snap.Topics() {
		e := &topicEntry{name: t.Name, id: t.ID}
		s.byName[t.Name] = e
		s.byID[t.ID.String()] = e
	}

	for _, p := range snap.Partitions() {
		e, ok := s.byID[p.TopicID.String()]
		if !ok {
			continue
		}
		e.partitions = append(e.partitions, Partition{
			PartitionID:    int32(p.PartitionID),
			LeaderID:       int32(p.LeaderID),
			LeaderEpoch:    int32(p.LeaderEpoch),
			Replicas:       toInt32Slice(p.Replicas),
			ISR:            toInt32Slice(p.InSyncReplicas),
			PartitionEpoch: int32(p.PartitionEpoch),
		})
	}

	return s
}

func toInt32Slice(in []uint32) []int32 {
	if len(in) == 0 {
		return nil
	}
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

// ByNames returns one TopicMetadata per requested name, in request order.
func (s *InMemoryStore) ByNames(names []string) []TopicMetadata {
	out := make([]TopicMetadata, len(names))
	for i, name := range names {
		e, ok := s.byName[name]
		if !ok {
			out[i] = TopicMetadata{
				ErrorCode: protocol.ErrUnknownTopicOrPartition,
				Name:      name,
				ID:        protocol.ZeroUUID,
			}
			continue
		}
		out[i] = TopicMetadata{
			ErrorCode:  protocol.ErrNone,
			Name:       e.name,
			ID:         e.id,
			Partitions: e.partitions,
		}
	}
	return out
}

// ByIDs returns one TopicMetadata per requested canonical UUID string, in
// request order. A malformed id string is treated the same as an unknown
// topic: the caller's dispatcher is the only place that produces these
// strings, always from a successfully decoded UUID.
func (s *InMemoryStore) ByIDs(ids []string) []TopicMetadata {
	out := make([]TopicMetadata, len(ids))
	for i, id := range ids {
		e, ok := s.byID[id]
		if !ok {
			uuid, _ := protocol.ParseUUID(id)
			out[i] = TopicMetadata{
				ErrorCode: protocol.ErrUnknownTopicOrPartition,
				ID:        uuid,
			}
			continue
		}
		out[i] = TopicMetadata{
			ErrorCode:  protocol.ErrNone,
			Name:       e.name,
			ID:         e.id,
			Partitions: e.partitions,
		}
	}
	return out
}

// FeatureLevels exposes the decoded feature-level records retained behind
// the store (§4.6): nothing on the wire today surfaces them, but a future
// ApiVersions feature-flag field has a ready home.
func (s *InMemoryStore) FeatureLevels() map[string]uint16 {
	return s.featureLevels
}
