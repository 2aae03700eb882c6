package mocks

import (
	"io"
	"time"

	"github.com/brettbedarf/collectionfs"
	"github.com/stretchr/testify/mock"
)

// MockSource implements collectionfs.Source for testing across packages
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Entry() collectionfs.FileEntry {
	args := m.Called()
	return args.Get(0).(collectionfs.FileEntry)
}

var _ collectionfs.Source = (*MockSource)(nil)

// MockPathLike implements collectionfs.PathLike for testing across packages
type MockPathLike struct {
	mock.Mock
}

func (m *MockPathLike) OpenRead() (io.ReadCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockPathLike) OpenWrite() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockPathLike) Size() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPathLike) Mtime() (time.Time, error) {
	args := m.Called()
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockPathLike) Writable() bool {
	args := m.Called()
	return args.Bool(0)
}

var _ collectionfs.PathLike = (*MockPathLike)(nil)

// NopWriteCloser adapts an io.Writer with a no-op Close
func NopWriteCloser(w io.Writer) io.WriteCloser {
	return nopWriteCloser{w}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
