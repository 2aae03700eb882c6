package adapters

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brettbedarf/collectionfs"
	"github.com/brettbedarf/collectionfs/filesystem"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zipModified = time.Date(2023, 3, 4, 5, 6, 8, 0, time.UTC)

// writeArchive creates a zip in a temp dir from name/content pairs; names
// ending in "/" become directory members.
func writeArchive(t *testing.T, members ...[2]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "assets.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, m := range members {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: m[0], Method: zip.Deflate, Modified: zipModified})
		require.NoError(t, err)
		_, err = io.WriteString(w, m[1])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func TestZipSource(t *testing.T) {
	t.Parallel()

	archive := writeArchive(t, [2]string{"textures/grass.png", "PNGDATA"})
	r := NewRegistry()
	RegisterZip(r)

	src, err := r.NewSource([]byte(`{"type":"zip","archive":"` + archive + `","member":"textures/grass.png"}`))
	require.NoError(t, err)

	e := src.Entry()
	assert.False(t, e.Writable())

	rc, err := e.OpenRead()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "PNGDATA", string(data))

	size, err := e.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(7), size)

	mtime, err := e.Mtime()
	require.NoError(t, err)
	assert.True(t, zipModified.Equal(mtime))
}

func TestZipSource_MissingMember(t *testing.T) {
	t.Parallel()

	archive := writeArchive(t, [2]string{"a.txt", "a"})
	src := &ZipSource{Archive: archive, Member: "b.txt"}

	_, err := src.Open()
	assert.ErrorIs(t, err, collectionfs.ErrNotFound)

	_, err = (&ZipSource{Archive: filepath.Join(t.TempDir(), "none.zip"), Member: "a"}).Size()
	assert.Error(t, err)

	r := NewRegistry()
	RegisterZip(r)
	_, err = r.NewSource([]byte(`{"type":"zip","archive":"x.zip"}`))
	assert.Error(t, err)
}

func TestAddArchive(t *testing.T) {
	t.Parallel()

	archive := writeArchive(t,
		[2]string{"models/", ""},
		[2]string{"textures/grass.png", "grass"},
		[2]string{"textures/stone.png", "stone!"},
		[2]string{"readme.txt", "hi"},
	)

	c := filesystem.NewCollection()
	n, err := AddArchive(c.Path("pack"), archive)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.True(t, c.Path("pack/models").IsDir())
	assert.True(t, c.Path("pack/textures/stone.png").IsFile())

	var names []string
	list, err := c.Path("pack").List()
	require.NoError(t, err)
	for name := range list {
		names = append(names, string(name))
	}
	assert.Equal(t, []string{"models", "textures", "readme.txt"}, names)

	size, err := c.Path("pack/textures/stone.png").Size()
	require.NoError(t, err)
	assert.Equal(t, int64(6), size)

	rc, err := c.Path("pack/readme.txt").OpenRead()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestAddArchive_Errors(t *testing.T) {
	t.Parallel()

	c := filesystem.NewCollection()
	_, err := AddArchive(c.Root(), filepath.Join(t.TempDir(), "missing.zip"))
	assert.Error(t, err)

	archive := writeArchive(t, [2]string{"dup", "x"})
	require.NoError(t, c.Path("dst/dup").Mkdirs())
	_, err = AddArchive(c.Path("dst"), archive)
	assert.ErrorIs(t, err, collectionfs.ErrExist)
}
