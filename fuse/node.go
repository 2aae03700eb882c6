// Package fuse exposes a collection as a FUSE filesystem using the go-fuse
// node API. Nodes are thin views onto collection paths; every operation
// re-resolves its path so changes made through the collection are visible.
package fuse

import (
	"context"
	"syscall"
	"time"

	"github.com/brettbedarf/collectionfs"
	"github.com/brettbedarf/collectionfs/filesystem"
	"github.com/brettbedarf/collectionfs/internal/util"
	gofusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

const fakeBlockSize = 4096

// Options controls how collection entries are presented to the kernel
type Options struct {
	ReadOnly     bool // Refuse every mutation regardless of write providers
	DirectIO     bool // Bypass the page cache for file reads and writes
	AttrTimeout  time.Duration
	EntryTimeout time.Duration
	Uid, Gid     uint32
	// MountTime is reported for entries without an mtime provider
	MountTime time.Time
}

type node struct {
	gofusefs.Inode
	coll  *filesystem.Collection
	parts collectionfs.Parts
	opts  *Options
}

func (n *node) child(name string) collectionfs.Parts {
	return n.parts.Join([]byte(name))
}

func (n *node) newChild(ctx context.Context, parts collectionfs.Parts, isDir bool, out *fuse.EntryOut) *gofusefs.Inode {
	out.SetEntryTimeout(n.opts.EntryTimeout)
	out.SetAttrTimeout(n.opts.AttrTimeout)
	if isDir {
		d := &dirNode{node{coll: n.coll, parts: parts, opts: n.opts}}
		d.fillAttr(&out.Attr)
		return n.NewInode(ctx, d, gofusefs.StableAttr{Mode: fuse.S_IFDIR})
	}
	f := &fileNode{node{coll: n.coll, parts: parts, opts: n.opts}}
	f.fillAttr(&out.Attr)
	return n.NewInode(ctx, f, gofusefs.StableAttr{Mode: fuse.S_IFREG})
}

func (n *node) setTimes(a *fuse.Attr, mtime time.Time) {
	a.SetTimes(&mtime, &mtime, &mtime)
	a.Owner = fuse.Owner{Uid: n.opts.Uid, Gid: n.opts.Gid}
}

type dirNode struct {
	node
}

// NewRoot returns the root node for coll
func NewRoot(coll *filesystem.Collection, opts Options) gofusefs.InodeEmbedder {
	if opts.MountTime.IsZero() {
		opts.MountTime = time.Now()
	}
	return &dirNode{node{coll: coll, opts: &opts}}
}

// OnAdd is only called for the root, once the mount is attached
func (d *dirNode) OnAdd(ctx context.Context) {
	logger := util.GetLogger("Fuse.OnAdd")
	logger.Info().Bool("readOnly", d.opts.ReadOnly).Msg("FUSE initialized")
}

func (d *dirNode) fillAttr(a *fuse.Attr) {
	a.Mode = fuse.S_IFDIR | 0o755
	if d.opts.ReadOnly {
		a.Mode = fuse.S_IFDIR | 0o555
	}
	a.Nlink = 2
	d.setTimes(a, d.opts.MountTime)
}

func (d *dirNode) Getattr(ctx context.Context, _ gofusefs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	if !d.coll.IsDir(d.parts) {
		return syscall.ENOENT
	}
	d.fillAttr(&out.Attr)
	out.Ino = d.StableAttr().Ino
	out.SetTimeout(d.opts.AttrTimeout)
	return gofusefs.OK
}

func (d *dirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofusefs.Inode, syscall.Errno) {
	parts := d.child(name)
	switch {
	case d.coll.IsDir(parts):
		return d.newChild(ctx, parts, true, out), gofusefs.OK
	case d.coll.IsFile(parts):
		return d.newChild(ctx, parts, false, out), gofusefs.OK
	default:
		return nil, syscall.ENOENT
	}
}

func (d *dirNode) Readdir(ctx context.Context) (gofusefs.DirStream, syscall.Errno) {
	names, err := d.coll.List(d.parts)
	if err != nil {
		return nil, ToErrno(err)
	}

	result := []fuse.DirEntry{}
	for name := range names {
		mode := uint32(fuse.S_IFREG)
		if d.coll.IsDir(d.parts.Join(name)) {
			mode = fuse.S_IFDIR
		}
		result = append(result, fuse.DirEntry{Name: string(name), Mode: mode})
	}
	return gofusefs.NewListDirStream(result), gofusefs.OK
}

func (d *dirNode) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*gofusefs.Inode, syscall.Errno) {
	if d.opts.ReadOnly {
		return nil, syscall.EROFS
	}
	parts := d.child(name)
	if d.coll.IsDir(parts) {
		return nil, syscall.EEXIST
	}
	if err := d.coll.MkdirAll(parts); err != nil {
		return nil, ToErrno(err)
	}
	return d.newChild(ctx, parts, true, out), gofusefs.OK
}

func (d *dirNode) Rmdir(ctx context.Context, name string) syscall.Errno {
	if d.opts.ReadOnly {
		return syscall.EROFS
	}
	return ToErrno(d.coll.Rmdir(d.child(name)))
}

func (d *dirNode) Unlink(ctx context.Context, name string) syscall.Errno {
	if d.opts.ReadOnly {
		return syscall.EROFS
	}
	return ToErrno(d.coll.Unlink(d.child(name)))
}

func (d *dirNode) Rename(ctx context.Context, name string, newParent gofusefs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	dst, ok := newParent.(*dirNode)
	if !ok {
		return syscall.EXDEV
	}
	return ToErrno(d.coll.Rename(d.child(name), dst.child(newName)))
}

type fileNode struct {
	node
}

func (f *fileNode) writable() bool {
	return !f.opts.ReadOnly && f.coll.Writable(f.parts)
}

// fillAttr queries the entry's size and mtime providers. Missing providers
// report a zero size and the mount time; failing ones are logged.
func (f *fileNode) fillAttr(a *fuse.Attr) {
	logger := util.GetLogger("fuse.fileNode")

	size, err := f.coll.Size(f.parts)
	if err != nil {
		logger.Debug().Err(err).Stringer("path", f.parts).Msg("Size unavailable")
		size = 0
	}
	mtime, err := f.coll.Mtime(f.parts)
	if err != nil {
		logger.Debug().Err(err).Stringer("path", f.parts).Msg("Mtime unavailable")
		mtime = f.opts.MountTime
	}

	a.Mode = fuse.S_IFREG | 0o444
	if f.writable() {
		a.Mode = fuse.S_IFREG | 0o644
	}
	a.Nlink = 1
	a.Size = uint64(max(size, 0))
	a.Blocks = (a.Size + fakeBlockSize - 1) / fakeBlockSize
	f.setTimes(a, mtime)
}

func (f *fileNode) Getattr(ctx context.Context, _ gofusefs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	if !f.coll.IsFile(f.parts) {
		return syscall.ENOENT
	}
	f.fillAttr(&out.Attr)
	out.Ino = f.StableAttr().Ino
	out.SetTimeout(f.opts.AttrTimeout)
	return gofusefs.OK
}

// Setattr accepts truncation to zero, which every write performs anyway.
// Other size and time changes are unsupported.
func (f *fileNode) Setattr(ctx context.Context, fh gofusefs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	size, truncate := in.GetSize()
	if truncate && size != 0 {
		return syscall.ENOTSUP
	}
	_, mok := in.GetMTime()
	_, aok := in.GetATime()
	if mok || aok {
		return ToErrno(f.coll.Touch(f.parts))
	}
	if errno := f.Getattr(ctx, fh, out); errno != gofusefs.OK {
		return errno
	}
	if truncate {
		// The provider truncates on the open that follows
		out.Size, out.Blocks = 0, 0
	}
	return gofusefs.OK
}

func (f *fileNode) Open(ctx context.Context, flags uint32) (gofusefs.FileHandle, uint32, syscall.Errno) {
	logger := util.GetLogger("fuse.fileNode.Open")

	var fuseFlags uint32
	if f.opts.DirectIO {
		fuseFlags |= fuse.FOPEN_DIRECT_IO
	}

	switch flags & syscall.O_ACCMODE {
	case syscall.O_RDONLY:
		r, err := f.coll.OpenRead(f.parts)
		if err != nil {
			logger.Error().Err(err).Stringer("path", f.parts).Msg("Failed to open for reading")
			return nil, 0, ToErrno(err)
		}
		return newReadHandle(f.coll, f.parts, r), fuseFlags, gofusefs.OK
	case syscall.O_WRONLY:
		if f.opts.ReadOnly {
			return nil, 0, syscall.EROFS
		}
		w, err := f.coll.OpenWrite(f.parts)
		if err != nil {
			logger.Error().Err(err).Stringer("path", f.parts).Msg("Failed to open for writing")
			return nil, 0, ToErrno(err)
		}
		return newWriteHandle(f.parts, w), fuseFlags, gofusefs.OK
	default:
		// Providers are one-directional streams
		return nil, 0, syscall.ENOTSUP
	}
}

var (
	_ gofusefs.NodeOnAdder   = (*dirNode)(nil)
	_ gofusefs.NodeGetattrer = (*dirNode)(nil)
	_ gofusefs.NodeLookuper  = (*dirNode)(nil)
	_ gofusefs.NodeReaddirer = (*dirNode)(nil)
	_ gofusefs.NodeMkdirer   = (*dirNode)(nil)
	_ gofusefs.NodeRmdirer   = (*dirNode)(nil)
	_ gofusefs.NodeUnlinker  = (*dirNode)(nil)
	_ gofusefs.NodeRenamer   = (*dirNode)(nil)
	_ gofusefs.NodeGetattrer = (*fileNode)(nil)
	_ gofusefs.NodeSetattrer = (*fileNode)(nil)
	_ gofusefs.NodeOpener    = (*fileNode)(nil)
)
