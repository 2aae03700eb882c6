package adapters

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillySource_ReadWrite(t *testing.T) {
	t.Parallel()

	bfs := memfs.New()
	require.NoError(t, util.WriteFile(bfs, "docs/a.txt", []byte("before"), 0o644))

	e := NewBillySource(bfs, "docs/a.txt", false).Entry()
	require.True(t, e.Writable())

	w, err := e.OpenWrite()
	require.NoError(t, err)
	_, err = io.WriteString(w, "after!")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rc, err := e.OpenRead()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "after!", string(data))

	size, err := e.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(6), size)

	_, err = e.Mtime()
	assert.NoError(t, err)
}

func TestBillySource_CreatesMissingFile(t *testing.T) {
	t.Parallel()

	bfs := memfs.New()
	e := NewBillySource(bfs, "new/dir/file.bin", false).Entry()

	_, err := e.Size()
	assert.Error(t, err, "nothing exists until first write")

	w, err := e.OpenWrite()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	size, err := e.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestBillySource_ReadOnly(t *testing.T) {
	t.Parallel()

	e := NewBillySource(memfs.New(), "x", true).Entry()
	assert.True(t, e.Readable())
	assert.False(t, e.Writable())
}

func TestRegisterMemory(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	bfs := RegisterMemory(r, nil)
	require.NotNil(t, bfs)

	src, err := r.NewSource([]byte(`{"type":"memory","name":"notes/todo.md","content":"- buy milk"}`))
	require.NoError(t, err)

	data, err := util.ReadFile(bfs, "notes/todo.md")
	require.NoError(t, err)
	assert.Equal(t, "- buy milk", string(data), "content seeds the shared filesystem")
	assert.True(t, src.Entry().Writable())

	_, err = r.NewSource([]byte(`{"type":"memory"}`))
	assert.Error(t, err)
}

func TestRegisterDisk(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "disk.txt"), []byte("on disk"), 0o644))

	r := NewRegistry()
	RegisterDisk(r, root)

	src, err := r.NewSource([]byte(`{"type":"disk","path":"disk.txt","readOnly":true}`))
	require.NoError(t, err)

	e := src.Entry()
	assert.False(t, e.Writable())
	rc, err := e.OpenRead()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "on disk", string(data))

	_, err = r.NewSource([]byte(`{"type":"disk"}`))
	assert.Error(t, err)
}
