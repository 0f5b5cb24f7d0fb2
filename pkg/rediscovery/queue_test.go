package rediscovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/autochecks/pkg/autochecks"
)

func TestQueueAddKeepsFirstTimestamp(t *testing.T) {
	q := NewQueue(filepath.Join(t.TempDir(), "autodiscovery"))

	require.NoError(t, q.Add("web01"))
	assert.True(t, q.Has("web01"))

	queuedAt := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(q.Dir(), "web01"), queuedAt, queuedAt))

	require.NoError(t, q.Add("web01"))

	info, err := os.Stat(filepath.Join(q.Dir(), "web01"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(queuedAt))
}

func TestQueueListAndRemove(t *testing.T) {
	q := NewQueue(filepath.Join(t.TempDir(), "autodiscovery"))

	hosts, err := q.QueuedHosts()
	require.NoError(t, err)
	assert.Empty(t, hosts, "missing directory means an empty queue")

	for _, h := range []string{"web02", "db01", "web01"} {
		require.NoError(t, q.Add(h))
	}

	require.NoError(t, os.Mkdir(filepath.Join(q.Dir(), "subdir"), 0o750))

	hosts, err = q.QueuedHosts()
	require.NoError(t, err)
	assert.Equal(t, []string{"db01", "web01", "web02"}, hosts)

	require.NoError(t, q.Remove("web01"))
	require.NoError(t, q.Remove("web01"))
	assert.False(t, q.Has("web01"))

	require.ErrorIs(t, q.Add("../escape"), autochecks.ErrInvalidHostname)
	require.ErrorIs(t, q.Remove(""), autochecks.ErrEmptyHostname)
}

func TestQueueOldest(t *testing.T) {
	q := NewQueue(filepath.Join(t.TempDir(), "autodiscovery"))
	now := time.Now().Truncate(time.Second)

	oldest, err := q.Oldest(now)
	require.NoError(t, err)
	assert.True(t, oldest.Equal(now))

	require.NoError(t, q.Add("a"))
	require.NoError(t, q.Add("b"))

	early := now.Add(-2 * time.Hour)
	late := now.Add(-30 * time.Minute)
	require.NoError(t, os.Chtimes(filepath.Join(q.Dir(), "a"), late, late))
	require.NoError(t, os.Chtimes(filepath.Join(q.Dir(), "b"), early, early))

	oldest, err = q.Oldest(now)
	require.NoError(t, err)
	assert.True(t, oldest.Equal(early))

	future := now.Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(q.Dir(), "a"), future, future))
	require.NoError(t, os.Chtimes(filepath.Join(q.Dir(), "b"), future, future))

	oldest, err = q.Oldest(now)
	require.NoError(t, err)
	assert.True(t, oldest.Equal(now), "now caps the oldest timestamp")
}
