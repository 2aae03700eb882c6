package requests

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brettbedarf/collectionfs"
	"github.com/brettbedarf/collectionfs/adapters"
	"github.com/brettbedarf/collectionfs/internal/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry() (*adapters.Registry, *mocks.MockSource) {
	src := &mocks.MockSource{}
	reg := adapters.NewRegistry()
	reg.Register("mock", func([]byte) (collectionfs.Source, error) { return src, nil })
	return reg, src
}

func TestGetNodeType(t *testing.T) {
	t.Parallel()

	typ, err := GetNodeType([]byte(`{"type":"dir","path":"a"}`))
	require.NoError(t, err)
	assert.Equal(t, collectionfs.DirNodeType, typ)

	_, err = GetNodeType([]byte(`[`))
	assert.Error(t, err)
}

func TestUnmarshalFileRequest(t *testing.T) {
	t.Parallel()

	reg, src := newRegistry()

	t.Run("defaults", func(t *testing.T) {
		req, err := UnmarshalFileRequest(reg, []byte(`{"type":"file","path":"a/b.txt","source":{"type":"mock"}}`))
		require.NoError(t, err)

		assert.Equal(t, "a/b.txt", req.Path)
		assert.Equal(t, collectionfs.FileNodeType, req.Type)
		assert.Same(t, src, req.Source)
		assert.False(t, req.ReadOnly)
		assert.Nil(t, req.Size)
		assert.Nil(t, req.Mtime)
		_, err = uuid.Parse(req.UUID)
		assert.NoError(t, err, "a UUID is generated when omitted")
	})

	t.Run("all fields", func(t *testing.T) {
		req, err := UnmarshalFileRequest(reg, []byte(`{
			"type":"file","path":"x","uuid":"fixed","size":12,
			"mtime":"2024-01-02T03:04:05Z","readOnly":true,
			"source":{"type":"mock"}}`))
		require.NoError(t, err)

		assert.Equal(t, "fixed", req.UUID)
		require.NotNil(t, req.Size)
		assert.Equal(t, int64(12), *req.Size)
		require.NotNil(t, req.Mtime)
		assert.True(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Equal(*req.Mtime))
		assert.True(t, req.ReadOnly)
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			desc string
			raw  string
		}{
			{"missing source", `{"type":"file","path":"x"}`},
			{"unknown source type", `{"type":"file","path":"x","source":{"type":"nope"}}`},
			{"root path", `{"type":"file","path":"/","source":{"type":"mock"}}`},
			{"bad json", `{"type":"file",`},
		}
		for _, tt := range tests {
			t.Run(tt.desc, func(t *testing.T) {
				_, err := UnmarshalFileRequest(reg, []byte(tt.raw))
				assert.Error(t, err)
			})
		}
	})
}

func TestUnmarshalRequests(t *testing.T) {
	t.Parallel()

	reg, _ := newRegistry()
	reqs, err := UnmarshalRequests(reg, []byte(`[
		{"type":"dir","path":"empty"},
		{"type":"file","path":"docs/readme.md","source":{"type":"mock"}}
	]`))
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.IsType(t, &collectionfs.DirCreateRequest{}, reqs[0])
	assert.Equal(t, "empty", reqs[0].Node().Path)
	assert.IsType(t, &collectionfs.FileCreateRequest{}, reqs[1])

	_, err = UnmarshalRequests(reg, []byte(`[{"type":"link","path":"x"}]`))
	assert.ErrorContains(t, err, `unknown node type "link"`)

	_, err = UnmarshalRequests(reg, []byte(`[{"type":"dir","path":"ok"},{"type":"dir","path":""}]`))
	assert.ErrorContains(t, err, "node 1")
}

func TestLoadManifestFile(t *testing.T) {
	t.Parallel()

	reg, src := newRegistry()
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "nodes.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
- type: dir
  path: textures
- type: file
  path: textures/grass.png
  readOnly: true
  mtime: 2024-01-02T03:04:05Z
  source:
    type: mock
`), 0o600))

	reqs, err := LoadManifestFile(reg, yamlPath)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	file, ok := reqs[1].(*collectionfs.FileCreateRequest)
	require.True(t, ok)
	assert.Same(t, src, file.Source)
	assert.True(t, file.ReadOnly)
	require.NotNil(t, file.Mtime)
	assert.True(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Equal(*file.Mtime))

	jsonPath := filepath.Join(dir, "nodes.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"type":"dir","path":"a"}]`), 0o600))
	reqs, err = LoadManifestFile(reg, jsonPath)
	require.NoError(t, err)
	assert.Len(t, reqs, 1)

	_, err = LoadManifestFile(reg, filepath.Join(dir, "nodes.toml"))
	assert.Error(t, err)

	badPath := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(badPath, []byte("- type: [unclosed"), 0o600))
	_, err = LoadManifestFile(reg, badPath)
	assert.Error(t, err)
}
