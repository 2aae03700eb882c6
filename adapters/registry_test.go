package adapters

import (
	"fmt"
	"sync"
	"testing"

	"github.com/brettbedarf/collectionfs"
	"github.com/brettbedarf/collectionfs/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func factoryFor(src collectionfs.Source, err error) Factory {
	return func([]byte) (collectionfs.Source, error) { return src, err }
}

func TestRegister_SingleFactory(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	src := &mocks.MockSource{}
	r.Register(HTTPSourceType, factoryFor(src, nil))

	f, err := r.Factory(HTTPSourceType)
	require.NoError(t, err)
	got, err := f(nil)
	require.NoError(t, err)
	assert.Same(t, src, got)
	assert.Equal(t, []string{HTTPSourceType}, r.Types())
}

func TestRegister_DuplicateKeepsFirst(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	first := &mocks.MockSource{}
	second := &mocks.MockSource{}

	r.Register("test", factoryFor(first, nil))
	r.Register("test", factoryFor(second, nil))

	got, err := r.NewSource([]byte(`{"type":"test"}`))
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestRegister_Concurrent(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	r := NewRegistry()

	for i := range 100 {
		wg.Go(func() {
			sourceType := fmt.Sprintf("test%d", i)
			src := &mocks.MockSource{}
			r.Register(sourceType, factoryFor(src, nil))
			got, err := r.NewSource(fmt.Appendf(nil, `{"type":%q}`, sourceType))
			assert.NoError(t, err)
			assert.Same(t, src, got)
		})
	}
	wg.Wait()
	assert.Len(t, r.Types(), 100)
}

func TestNewSource_Errors(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("broken", factoryFor(nil, assert.AnError))

	tests := []struct {
		desc string
		raw  string
	}{
		{"invalid json", `{"type":`},
		{"missing type field", `{"foo":"bar"}`},
		{"unregistered type", `{"type":"foo"}`},
		{"factory error", `{"type":"broken"}`},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			src, err := r.NewSource([]byte(tt.raw))
			assert.Error(t, err)
			assert.Nil(t, src)
		})
	}

	_, err := r.NewSource([]byte(`{"type":"broken"}`))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRegisterBuiltins(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	RegisterBuiltins(r, Options{})
	assert.ElementsMatch(t,
		[]string{HTTPSourceType, DiskSourceType, MemorySourceType, ZipSourceType, S3SourceType},
		r.Types())

	only := NewRegistry()
	RegisterBuiltins(only, Options{}, ZipSourceType)
	assert.Equal(t, []string{ZipSourceType}, only.Types())
}
