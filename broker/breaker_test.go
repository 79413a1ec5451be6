package broker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/eapache/go-resiliency/breaker"
	"github.com/stretchr/testify/require"

	"github.com/fork-the-planet/kraft-broker/kraft"
)

func TestResilientReader_SucceedsAgainstRealFile(t *testing.T) {
	logDir := t.TempDir()
	partDir := filepath.Join(logDir, kraft.MetadataLogDir)
	require.NoError(t, os.MkdirAll(partDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(partDir, kraft.MetadataLogFile), nil, 0o644))

	r := NewResilientReader(kraft.NewReader(logDir))
	snap, err := r.Snapshot(context.Background())
	require.NoError(t, err)
	require.Empty(t, snap.Batches)
}

func TestResilientReader_TripsAfterRepeatedFailures(t *testing.T) {
	r := NewResilientReader(kraft.NewReader(filepath.Join(t.TempDir(), "does-not-exist")))
	ctx := context.Background()

	for i := 0; i < breakerFailureThreshold; i++ {
		_, err := r.Snapshot(ctx)
		require.Error(t, err)
	}

	// The breaker is now open; the next call must fail immediately with
	// the breaker's own error rather than attempting another file read.
	_, err := r.Snapshot(ctx)
	require.ErrorIs(t, err, breaker.ErrBreakerOpen)
}

func TestResilientReader_RespectsCancelledContext(t *testing.T) {
	logDir := t.TempDir()
	partDir := filepath.Join(logDir, kraft.MetadataLogDir)
	require.NoError(t, os.MkdirAll(partDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(partDir, kraft.MetadataLogFile), nil, 0o644))

	r := NewResilientReader(kraft.NewReader(logDir))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Snapshot(ctx)
	require.Error(t, err)
}
