package vfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOS_UsesHostPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	fsys := NewOS()
	assert.Equal(t, "/", fsys.Root())

	data, err := util.ReadFile(fsys, path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	chrooted, err := fsys.Chroot(dir)
	require.NoError(t, err)
	data, err = util.ReadFile(chrooted, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestNewMemory(t *testing.T) {
	fsys := NewMemory()
	require.NoError(t, util.WriteFile(fsys, "/p/a.jpg", []byte("x"), 0o644))

	entries, err := fsys.ReadDir("/p")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.jpg", entries[0].Name())
}
