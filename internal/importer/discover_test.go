package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsArchiveName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"ende-1234-abcdef.zip", true},
		{"dict_cc-1-x.zip", true},
		{"prefix ende-1-ab.zip", true},
		{"ENDE-99-X.ZIP", false},
		{"ende-abc-def.zip", false},
		{"ende-1234.zip", false},
		{"ende-1234-abcdef.txt", false},
		{"ende-1234-abcdef.zip.part", false},
		{"-1-a.zip", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsArchiveName(tt.name))
		})
	}
}

func TestDiscoverArchives(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b-2-b.zip", "a-1-a.zip", "other.zip", "c-3-c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d-4-d.zip"), 0o755))

	archives, err := DiscoverArchives(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a-1-a.zip"),
		filepath.Join(dir, "b-2-b.zip"),
	}, archives)
}

func TestDiscoverArchives_MissingDir(t *testing.T) {
	_, err := DiscoverArchives(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestEnsureDirectory(t *testing.T) {
	root := t.TempDir()

	path := filepath.Join(root, "a", "b")
	assert.Equal(t, path, EnsureDirectory(path, "", nil))
	assert.DirExists(t, path)

	// a regular file in the way makes creation fail
	blocker := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	fallback := filepath.Join(root, "fallback")

	assert.Equal(t, fallback, EnsureDirectory(filepath.Join(blocker, "sub"), fallback, nil))
	assert.DirExists(t, fallback)

	assert.Equal(t, filepath.Join(blocker, "sub"), EnsureDirectory(filepath.Join(blocker, "sub"), "", nil))
}
