package filesystem

import (
	"fmt"
	"io"
	"iter"
	"sync"
	"time"

	"github.com/brettbedarf/collectionfs"
	"github.com/brettbedarf/collectionfs/internal/util"
)

// Operation names used in [collectionfs.PathError].
const (
	OpAdd    = "add"
	OpLookup = "lookup"
	OpOpen   = "open"
	OpList   = "list"
	OpStat   = "stat"
	OpMkdir  = "mkdir"
	OpRmdir  = "rmdir"
	OpUnlink = "unlink"
	OpTouch  = "touch"
	OpRename = "rename"
)

var (
	errNotReadable = fmt.Errorf("not readable: %w", collectionfs.ErrUnsupported)
	errNotWritable = fmt.Errorf("not writable: %w", collectionfs.ErrUnsupported)
)

// Collection is a virtual filesystem holding individually registered files.
// Each file is a [collectionfs.FileEntry] whose providers reach into some
// backing resource on demand; the collection itself only tracks structure.
//
// Structural operations are serialized by a single RWMutex. Providers are
// always invoked after the lock has been released, so a slow or remote
// resource never blocks unrelated lookups.
type Collection struct {
	root *DirNode
	mu   sync.RWMutex
}

func NewCollection() *Collection {
	return &Collection{root: NewDirNode()}
}

// Root returns a handle to the collection's root directory.
func (c *Collection) Root() *Path {
	return &Path{coll: c}
}

// Path returns a handle for a slash separated path relative to the root.
func (c *Collection) Path(p string) *Path {
	return &Path{coll: c, parts: collectionfs.ParseParts(p)}
}

// AddEntry registers entry at parts, creating any missing parent directories.
// A file already registered under the same name is replaced as a whole.
func (c *Collection) AddEntry(parts collectionfs.Parts, entry collectionfs.FileEntry) error {
	logger := util.GetLogger("Collection.AddEntry")
	if parts.IsRoot() {
		return collectionfs.NewPathError(OpAdd, parts, collectionfs.ErrIsDir)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dirParts, name := parts.Split()
	dir, err := c.resolveDir(OpAdd, dirParts, true)
	if err != nil {
		logger.Debug().Err(err).Stringer("path", parts).Msg("Failed to create file's ancestor directory(s)")
		return err
	}
	if dir.HasDir(name) {
		return collectionfs.NewPathError(OpAdd, parts, collectionfs.ErrExist)
	}
	dir.storeFile(name, entry)
	logger.Debug().
		Stringer("path", parts).
		Bool("readable", entry.Readable()).
		Bool("writable", entry.Writable()).
		Msg("Added file entry")
	return nil
}

// Entry returns the entry registered at parts.
func (c *Collection) Entry(parts collectionfs.Parts) (collectionfs.FileEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolveFile(OpLookup, parts)
}

// OpenRead opens the file at parts through its read provider.
func (c *Collection) OpenRead(parts collectionfs.Parts) (io.ReadCloser, error) {
	entry, err := c.Entry(parts)
	if err != nil {
		return nil, err
	}
	if entry.OpenRead == nil {
		return nil, collectionfs.NewPathError(OpOpen, parts, errNotReadable)
	}
	r, err := entry.OpenRead()
	if err != nil {
		return nil, collectionfs.NewPathError(OpOpen, parts, err)
	}
	return r, nil
}

// OpenWrite opens the file at parts through its write provider.
func (c *Collection) OpenWrite(parts collectionfs.Parts) (io.WriteCloser, error) {
	entry, err := c.Entry(parts)
	if err != nil {
		return nil, err
	}
	if entry.OpenWrite == nil {
		return nil, collectionfs.NewPathError(OpOpen, parts, errNotWritable)
	}
	w, err := entry.OpenWrite()
	if err != nil {
		return nil, collectionfs.NewPathError(OpOpen, parts, err)
	}
	return w, nil
}

// List yields the names of the directory's children: subdirectories first,
// then files, each in insertion order. The names are captured when List is
// called; the sequence does not observe later mutations.
func (c *Collection) List(parts collectionfs.Parts) (iter.Seq[[]byte], error) {
	c.mu.RLock()
	dir, err := c.resolveDir(OpList, parts, false)
	if err != nil {
		c.mu.RUnlock()
		return nil, err
	}
	names := dir.Names()
	c.mu.RUnlock()

	return func(yield func([]byte) bool) {
		for _, name := range names {
			if !yield([]byte(name)) {
				return
			}
		}
	}, nil
}

// Size returns the file size reported by the entry's size provider.
func (c *Collection) Size(parts collectionfs.Parts) (int64, error) {
	entry, err := c.Entry(parts)
	if err != nil {
		return 0, err
	}
	if entry.Size == nil {
		return 0, collectionfs.NewPathError(OpStat, parts, collectionfs.ErrUnsupported)
	}
	n, err := entry.Size()
	if err != nil {
		return 0, collectionfs.NewPathError(OpStat, parts, err)
	}
	return n, nil
}

// Mtime returns the modification time reported by the entry's mtime provider.
func (c *Collection) Mtime(parts collectionfs.Parts) (time.Time, error) {
	entry, err := c.Entry(parts)
	if err != nil {
		return time.Time{}, err
	}
	if entry.Mtime == nil {
		return time.Time{}, collectionfs.NewPathError(OpStat, parts, collectionfs.ErrUnsupported)
	}
	t, err := entry.Mtime()
	if err != nil {
		return time.Time{}, collectionfs.NewPathError(OpStat, parts, err)
	}
	return t, nil
}

// MkdirAll ensures every directory along parts exists. It is idempotent and
// equivalent to `mkdir -p`.
func (c *Collection) MkdirAll(parts collectionfs.Parts) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.resolveDir(OpMkdir, parts, true)
	return err
}

// Rmdir removes an empty directory.
func (c *Collection) Rmdir(parts collectionfs.Parts) error {
	logger := util.GetLogger("Collection.Rmdir")
	if parts.IsRoot() {
		return collectionfs.NewPathError(OpRmdir, parts, collectionfs.ErrUnsupported)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dirParts, name := parts.Split()
	parent, err := c.resolveDir(OpRmdir, dirParts, false)
	if err != nil {
		return err
	}
	if parent.HasFile(name) {
		return collectionfs.NewPathError(OpRmdir, parts, collectionfs.ErrNotDir)
	}
	dir, ok := parent.Dir(name)
	if !ok {
		return collectionfs.NewPathError(OpRmdir, parts, collectionfs.ErrNotFound)
	}
	if !dir.IsEmpty() {
		return collectionfs.NewPathError(OpRmdir, parts, collectionfs.ErrNotEmpty)
	}
	parent.removeDir(name)
	logger.Debug().Stringer("path", parts).Msg("Removed dir")
	return nil
}

// Unlink removes a file entry. Directories are never unlinked.
func (c *Collection) Unlink(parts collectionfs.Parts) error {
	logger := util.GetLogger("Collection.Unlink")
	if parts.IsRoot() {
		return collectionfs.NewPathError(OpUnlink, parts, collectionfs.ErrIsDir)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dirParts, name := parts.Split()
	parent, err := c.resolveDir(OpUnlink, dirParts, false)
	if err != nil {
		return err
	}
	if parent.HasDir(name) {
		return collectionfs.NewPathError(OpUnlink, parts, collectionfs.ErrIsDir)
	}
	if !parent.removeFile(name) {
		return collectionfs.NewPathError(OpUnlink, parts, collectionfs.ErrNotFound)
	}
	logger.Debug().Stringer("path", parts).Msg("Removed file entry")
	return nil
}

// Touch is not supported; entries carry no mutable timestamps.
func (c *Collection) Touch(parts collectionfs.Parts) error {
	return collectionfs.NewPathError(OpTouch, parts, collectionfs.ErrUnsupported)
}

// Rename is not supported.
func (c *Collection) Rename(src, dst collectionfs.Parts) error {
	return collectionfs.NewPathError(OpRename, src, collectionfs.ErrUnsupported)
}

// IsFile reports whether a file entry is registered at parts. Any error,
// whatever its kind, reads as false.
func (c *Collection) IsFile(parts collectionfs.Parts) bool {
	_, err := c.Entry(parts)
	return err == nil
}

// IsDir reports whether parts resolves to a directory. The root always does.
func (c *Collection) IsDir(parts collectionfs.Parts) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, err := c.resolveDir(OpLookup, parts, false)
	return err == nil
}

// Writable reports whether parts is a file entry with a write provider.
// Directories are not writable, though some of the files inside may be.
func (c *Collection) Writable(parts collectionfs.Parts) bool {
	entry, err := c.Entry(parts)
	if err != nil {
		return false
	}
	return entry.Writable()
}

// Watch always reports false: the collection has no change notification.
func (c *Collection) Watch(parts collectionfs.Parts, callback func(collectionfs.Parts)) bool {
	return false
}

// PollWatches is a no-op.
func (c *Collection) PollWatches() {}

// WalkFunc is called for every node visited by [Collection.Walk]. Returning
// an error stops the walk and is passed through.
type WalkFunc func(parts collectionfs.Parts, isDir bool) error

// Walk visits parts and everything below it depth-first, subdirectories
// before files, in insertion order. The tree is snapshotted before fn is
// first called, so fn may freely mutate the collection.
func (c *Collection) Walk(parts collectionfs.Parts, fn WalkFunc) error {
	type visit struct {
		parts collectionfs.Parts
		isDir bool
	}

	c.mu.RLock()
	start, err := c.resolveDir(OpList, parts, false)
	if err != nil {
		_, ferr := c.resolveFile(OpList, parts)
		c.mu.RUnlock()
		if ferr == nil {
			return fn(parts.Clone(), false)
		}
		return err
	}
	visits := []visit{{parts: parts.Clone(), isDir: true}}
	var collect func(d *DirNode, at collectionfs.Parts)
	collect = func(d *DirNode, at collectionfs.Parts) {
		for _, name := range d.dirs.keys {
			child, _ := d.dirs.Load(name)
			p := at.Join([]byte(name))
			visits = append(visits, visit{parts: p, isDir: true})
			collect(child, p)
		}
		for _, name := range d.files.keys {
			visits = append(visits, visit{parts: at.Join([]byte(name))})
		}
	}
	collect(start, parts.Clone())
	c.mu.RUnlock()

	for _, v := range visits {
		if err := fn(v.parts, v.isDir); err != nil {
			return err
		}
	}
	return nil
}
