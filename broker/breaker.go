package broker

import (
	"context"
	"time"

	"github.com/eapache/go-resiliency/breaker"

	"github.com/fork-the-planet/kraft-broker/kraft"
	"github.com/fork-the-planet/kraft-broker/metadata"
)

// breakerFailureThreshold and breakerOpenDuration match SPEC_FULL.md
// §4A.6: trip after 3 consecutive I/O failures, stay open for 1 second.
const (
	breakerFailureThreshold = 3
	breakerSuccessThreshold = 1
	breakerOpenDuration     = time.Second
)

// ResilientReader wraps a kraft.Reader so repeated metadata-log I/O
// failures (a pulled disk, revoked permissions mid-run) trip a circuit
// breaker instead of hammering a known-bad path on every dispatch. This
// does not cache: each call that reaches the underlying reader still does
// a fresh read, per §5's freshness requirement.
type ResilientReader struct {
	reader *kraft.Reader
	b      *breaker.Breaker
}

// NewResilientReader wraps reader with the breaker configuration
// SPEC_FULL.md §4A.6 specifies.
func NewResilientReader(reader *kraft.Reader) *ResilientReader {
	return &ResilientReader{
		reader: reader,
		b:      breaker.New(breakerFailureThreshold, breakerSuccessThreshold, breakerOpenDuration),
	}
}

// Snapshot reads and decodes the metadata log through the breaker. When
// the breaker is open, this returns breaker.ErrBreakerOpen without
// touching the filesystem.
func (r *ResilientReader) Snapshot(ctx context.Context) (*kraft.Snapshot, error) {
	var snap *kraft.Snapshot
	err := r.b.Run(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := r.reader.Snapshot()
		if err != nil {
			return err
		}
		snap = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Store reads a fresh snapshot through the breaker and indexes it,
// satisfying Dispatcher's StoreProvider interface. No two dispatches ever
// share an InMemoryStore: each sees exactly what was on disk at the time
// of its own call.
func (r *ResilientReader) Store(ctx context.Context) (metadata.Store, error) {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return metadata.NewInMemoryStore(snap), nil
}
