// Package store defines the message-store capability the Fetch API
// consults. SPEC_FULL.md §4A.5 keeps this a stub: the broker never accepts
// produced records, so the only implementation never has anything to
// return.
package store

import (
	"context"

	"github.com/fork-the-planet/kraft-broker/protocol"
)

// MessageStore is a narrow interface mirroring the teacher's small
// single-purpose interfaces (e.g. sarama's partitionConsumer), so a future
// real implementation is a drop-in replacement for NullStore.
type MessageStore interface {
	StoreMessage(ctx context.Context, topicID protocol.UUID, partition int32, record []byte) error
	ReadMessages(ctx context.Context, topicID protocol.UUID, partition int32, offset int64, maxBytes int32) ([]byte, error)
}

// NullStore is the only MessageStore this broker ships: it persists
// nothing and always reports zero records, making the Fetch API's
// "always empty" contract an explicit, named collaborator rather than a
// dispatcher-level special case.
type NullStore struct{}

func (NullStore) StoreMessage(ctx context.Context, topicID protocol.UUID, partition int32, record []byte) error {
	return nil
}

func (NullStore) ReadMessages(ctx context.Context, topicID protocol.UUID, partition int32, offset int64, maxBytes int32) ([]byte, error) {
	return nil, nil
}
