package adapters

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/brettbedarf/collectionfs"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
)

// BillySource is a single file inside a billy filesystem. It backs both the
// "memory" (memfs) and "disk" (osfs) source types.
type BillySource struct {
	fs       billy.Filesystem
	name     string
	readOnly bool
}

// NewBillySource wraps name inside bfs. The file does not need to exist until
// one of the entry's providers is invoked.
func NewBillySource(bfs billy.Filesystem, name string, readOnly bool) *BillySource {
	return &BillySource{fs: bfs, name: name, readOnly: readOnly}
}

// Entry implements [collectionfs.Source]
func (b *BillySource) Entry() collectionfs.FileEntry {
	e := collectionfs.FileEntry{
		OpenRead: b.Open,
		Size:     b.Size,
		Mtime:    b.Mtime,
	}
	if !b.readOnly {
		e.OpenWrite = b.Create
	}
	return e
}

func (b *BillySource) Open() (io.ReadCloser, error) {
	f, err := b.fs.Open(b.name)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", b.name)
	}
	return f, nil
}

// Create truncates the file, creating it and its parent dirs when missing.
func (b *BillySource) Create() (io.WriteCloser, error) {
	if dir := filepath.Dir(b.name); dir != "." {
		if err := b.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create parent of %s", b.name)
		}
	}
	f, err := b.fs.OpenFile(b.name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", b.name)
	}
	return f, nil
}

func (b *BillySource) Size() (int64, error) {
	fi, err := b.fs.Stat(b.name)
	if err != nil {
		return 0, errors.Wrapf(err, "stat %s", b.name)
	}
	return fi.Size(), nil
}

func (b *BillySource) Mtime() (time.Time, error) {
	fi, err := b.fs.Stat(b.name)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "stat %s", b.name)
	}
	return fi.ModTime(), nil
}

// DiskSource fields of a "disk" source
type DiskSource struct {
	Path     string `json:"path"`
	ReadOnly bool   `json:"readOnly,omitempty"`
}

// MemorySource fields of a "memory" source. Content seeds the file when set.
type MemorySource struct {
	Name     string  `json:"name"`
	Content  *string `json:"content,omitempty"`
	ReadOnly bool    `json:"readOnly,omitempty"`
}

// RegisterDisk registers "disk" sources resolved against root. Relative
// source paths are relative to root.
func RegisterDisk(r *Registry, root string) {
	bfs := osfs.New(root)
	r.Register(DiskSourceType, func(raw []byte) (collectionfs.Source, error) {
		var cfg DiskSource
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, errors.Wrap(err, "decode disk source")
		}
		if cfg.Path == "" {
			return nil, errors.New("disk source requires a path")
		}
		return NewBillySource(bfs, cfg.Path, cfg.ReadOnly), nil
	})
}

// RegisterMemory registers "memory" sources sharing bfs. A nil bfs gets a
// fresh memfs.
func RegisterMemory(r *Registry, bfs billy.Filesystem) billy.Filesystem {
	if bfs == nil {
		bfs = memfs.New()
	}
	r.Register(MemorySourceType, func(raw []byte) (collectionfs.Source, error) {
		var cfg MemorySource
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, errors.Wrap(err, "decode memory source")
		}
		if cfg.Name == "" {
			return nil, errors.New("memory source requires a name")
		}
		if cfg.Content != nil {
			if err := util.WriteFile(bfs, cfg.Name, []byte(*cfg.Content), 0o644); err != nil {
				return nil, errors.Wrapf(err, "seed memory file %s", cfg.Name)
			}
		}
		return NewBillySource(bfs, cfg.Name, cfg.ReadOnly), nil
	})
	return bfs
}
