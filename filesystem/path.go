package filesystem

import (
	"io"
	"iter"
	"time"

	"github.com/brettbedarf/collectionfs"
)

// Path is a bound (collection, parts) value. It does not own anything in the
// tree; it is only an address plus registration helpers, so it stays valid
// (if dangling) across unlink and rmdir.
type Path struct {
	coll  *Collection
	parts collectionfs.Parts
}

// Collection returns the collection this path addresses.
func (p *Path) Collection() *Collection {
	return p.coll
}

// Parts returns a copy of the path's segments.
func (p *Path) Parts() collectionfs.Parts {
	return p.parts.Clone()
}

// String renders the path rooted at "/".
func (p *Path) String() string {
	return "/" + p.parts.String()
}

// Name returns the final segment, or nil for the root.
func (p *Path) Name() []byte {
	_, name := p.parts.Split()
	return name
}

// Join returns the handle for a slash separated path below p.
func (p *Path) Join(sub string) *Path {
	return &Path{coll: p.coll, parts: p.parts.Join(collectionfs.ParseParts(sub)...)}
}

// JoinParts returns the handle for raw segments below p.
func (p *Path) JoinParts(names ...[]byte) *Path {
	return &Path{coll: p.coll, parts: p.parts.Join(names...)}
}

// Parent returns the handle of the containing directory. The root is its own parent.
func (p *Path) Parent() *Path {
	dir, _ := p.parts.Split()
	return &Path{coll: p.coll, parts: dir}
}

// AddFile registers a file at this path; all parent directories are created
// if needed. Any provider may be nil, which makes that capability unsupported
// (e.g. no OpenWrite yields a read-only file).
func (p *Path) AddFile(entry collectionfs.FileEntry) error {
	return p.coll.AddEntry(p.parts, entry)
}

// AddFileFromPath is like AddFile but takes the providers from another path.
// The write provider is only taken if other is writable right now; that
// decision is frozen at registration and never re-evaluated.
func (p *Path) AddFileFromPath(other collectionfs.PathLike) error {
	entry := collectionfs.FileEntry{
		OpenRead: other.OpenRead,
		Size:     other.Size,
		Mtime:    other.Mtime,
	}
	if other.Writable() {
		entry.OpenWrite = other.OpenWrite
	}
	return p.AddFile(entry)
}

// AddSource registers the entry produced by a backing-store source.
func (p *Path) AddSource(src collectionfs.Source) error {
	return p.AddFile(src.Entry())
}

func (p *Path) Entry() (collectionfs.FileEntry, error) {
	return p.coll.Entry(p.parts)
}

func (p *Path) OpenRead() (io.ReadCloser, error) {
	return p.coll.OpenRead(p.parts)
}

func (p *Path) OpenWrite() (io.WriteCloser, error) {
	return p.coll.OpenWrite(p.parts)
}

func (p *Path) Size() (int64, error) {
	return p.coll.Size(p.parts)
}

func (p *Path) Mtime() (time.Time, error) {
	return p.coll.Mtime(p.parts)
}

func (p *Path) List() (iter.Seq[[]byte], error) {
	return p.coll.List(p.parts)
}

// Iterdir yields handles for the children of this directory.
func (p *Path) Iterdir() (iter.Seq[*Path], error) {
	names, err := p.List()
	if err != nil {
		return nil, err
	}
	return func(yield func(*Path) bool) {
		for name := range names {
			if !yield(p.JoinParts(name)) {
				return
			}
		}
	}, nil
}

func (p *Path) Mkdirs() error {
	return p.coll.MkdirAll(p.parts)
}

func (p *Path) Rmdir() error {
	return p.coll.Rmdir(p.parts)
}

func (p *Path) Unlink() error {
	return p.coll.Unlink(p.parts)
}

func (p *Path) Touch() error {
	return p.coll.Touch(p.parts)
}

func (p *Path) Rename(target *Path) error {
	return p.coll.Rename(p.parts, target.parts)
}

func (p *Path) IsFile() bool {
	return p.coll.IsFile(p.parts)
}

func (p *Path) IsDir() bool {
	return p.coll.IsDir(p.parts)
}

func (p *Path) Writable() bool {
	return p.coll.Writable(p.parts)
}

func (p *Path) Walk(fn WalkFunc) error {
	return p.coll.Walk(p.parts, fn)
}

var _ collectionfs.PathLike = (*Path)(nil)
