// Package collectionfs contains core domain types and interfaces for composing
// heterogeneous backing resources into a single virtual directory tree.
package collectionfs

import (
	"io"
	"time"
)

// Provider function types. Each is a zero-argument deferred accessor; nothing
// is fetched from the backing resource until one of them is invoked.
type (
	ReadOpener  func() (io.ReadCloser, error)
	WriteOpener func() (io.WriteCloser, error)
	SizeFunc    func() (int64, error)
	MtimeFunc   func() (time.Time, error)
)

// FileEntry bundles the optional capabilities of a single registered file.
// A nil field means the capability is unsupported, never an error at
// registration time. Entries are immutable once registered: replace them via
// unlink and re-register instead of mutating the fields.
type FileEntry struct {
	OpenRead  ReadOpener
	OpenWrite WriteOpener
	Size      SizeFunc
	Mtime     MtimeFunc
}

// Readable reports whether the entry has a read provider.
func (e FileEntry) Readable() bool {
	return e.OpenRead != nil
}

// Writable reports whether the entry has a write provider.
func (e FileEntry) Writable() bool {
	return e.OpenWrite != nil
}

// Source is implemented by backing-store adapters (archive member, memory
// buffer, disk file, remote object) and produces the FileEntry to register.
// Instances are 1:1 with the resource they wrap.
type Source interface {
	Entry() FileEntry
}

// PathLike is any addressable file that can be snapshot into a FileEntry,
// typically a path handle of another collection.
type PathLike interface {
	OpenRead() (io.ReadCloser, error)
	OpenWrite() (io.WriteCloser, error)
	Size() (int64, error)
	Mtime() (time.Time, error)
	Writable() bool
}

// StaticSize returns a SizeFunc reporting a fixed value.
func StaticSize(n int64) SizeFunc {
	return func() (int64, error) { return n, nil }
}

// StaticMtime returns a MtimeFunc reporting a fixed value.
func StaticMtime(t time.Time) MtimeFunc {
	return func() (time.Time, error) { return t, nil }
}
