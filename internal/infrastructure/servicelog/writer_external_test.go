package servicelog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/daemon/internal/infrastructure/servicelog"
)

func TestWriter_RotatesAtSizeThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db_a1b2c3d4.log")
	w, err := servicelog.Open(path, servicelog.Options{MaxSizeBytes: 16})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.Write([]byte("0123456789ABCDEF")))
	require.NoError(t, w.Write([]byte("next epoch line\n")))

	_, err = os.Stat(path + ".1")
	assert.NoError(t, err, "expected a rotated .1 file once the size threshold was crossed")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriter_PrunesBeyondMaxRotated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache_ffeeaa11.log")
	w, err := servicelog.Open(path, servicelog.Options{MaxSizeBytes: 1, MaxRotated: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	for i := 0; i < 5; i++ {
		require.NoError(t, w.Write([]byte("x")))
	}

	_, err = os.Stat(path + ".3")
	assert.Error(t, err, "expected rotated files beyond max_rotated to be pruned")
}
