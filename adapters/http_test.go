package adapters

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brettbedarf/collectionfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHTTP_URLValidation(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	RegisterHTTP(r, nil)

	tests := []struct {
		url     string
		wantErr bool
		desc    string
	}{
		// Valid cases
		{"http://test.com", false, "basic HTTP URL"},
		{"https://test.com", false, "basic HTTPS URL"},
		{"  http://test.com   ", false, "URL with whitespace"},
		{"http://test.com/path?arg=1&arg2=2", false, "URL with path and query"},
		{"http://test.com:8080", false, "URL with port"},
		{"http://localhost:8080/test", false, "localhost with port"},
		{"http://123.123.123.123/test", false, "IP address"},
		{"http://mylocalnet/test", false, "single label hostname"},

		// Invalid cases
		{"", true, "empty string"},
		{" ", true, "whitespace only"},
		{"_", true, "invalid character"},
		{"ftp://test.com", true, "different scheme rejected"},
		{"test.com", true, "missing scheme"},
		{"http://user@test.com/path", true, "URL with user info"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			src, err := r.NewSource(createCfg(tt.url))

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, src)
			} else {
				require.NoError(t, err)
				assert.IsType(t, &HTTPSource{}, src)
			}
		})
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	modified := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	mux := http.NewServeMux()
	mux.HandleFunc("/file.txt", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Token") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Last-Modified", modified.Format(http.TimeFormat))
		w.Header().Set("Content-Length", "11")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = io.WriteString(w, "hello world")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSource_Entry(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	r := NewRegistry()
	RegisterHTTP(r, srv.Client())

	raw := createCfgWithOpts(srv.URL+"/file.txt", nil, map[string]string{"X-Token": "secret"})
	src, err := r.NewSource(raw)
	require.NoError(t, err)

	e := src.Entry()
	assert.False(t, e.Writable(), "HTTP sources are read-only")

	rc, err := e.OpenRead()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	size, err := e.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(11), size)

	mtime, err := e.Mtime()
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC).Equal(mtime))
}

func TestHTTPSource_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	t.Run("missing header", func(t *testing.T) {
		src, err := NewHTTPSource(srv.Client(), srv.URL+"/file.txt")
		require.NoError(t, err)

		_, err = src.Open()
		assert.ErrorContains(t, err, "403")
		_, err = src.Size()
		assert.Error(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		src, err := NewHTTPSource(srv.Client(), srv.URL+"/missing")
		require.NoError(t, err)

		_, err = src.Mtime()
		assert.ErrorContains(t, err, "404")
	})
}

func TestHTTPSource_RegisteredLazily(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, "x")
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.Client(), srv.URL)
	require.NoError(t, err)
	e := (&collectionfs.FileCreateRequest{Source: src}).Entry()
	assert.Zero(t, hits.Load(), "building the entry must not contact the server")

	rc, err := e.OpenRead()
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, int32(1), hits.Load())
}

// Test helpers

func createCfg(url string) []byte {
	return createCfgWithOpts(url, nil, nil)
}

func createCfgWithOpts(url string, method *HTTPMethod, headers map[string]string) []byte {
	config := struct {
		Type string `json:"type"`
		HTTPSource
	}{
		Type: HTTPSourceType,
		HTTPSource: HTTPSource{
			URL:     url,
			Method:  method,
			Headers: headers,
		},
	}
	data, _ := json.Marshal(config)
	return data
}
