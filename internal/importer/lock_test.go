package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexLock(t *testing.T) {
	var l IndexLock

	assert.True(t, l.TryAcquire())
	assert.False(t, l.TryAcquire())
	l.Release()
	assert.True(t, l.TryAcquire())
}

func TestFileLock(t *testing.T) {
	dir := t.TempDir()
	first := NewFileLock(dir)
	second := NewFileLock(dir)

	ok, err := first.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	assert.FileExists(t, first.Path())

	ok, err = second.TryLock()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, second.Unlock(), "unlocking an unheld lock is a no-op")

	require.NoError(t, first.Unlock())
	ok, err = second.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, second.Unlock())
}
