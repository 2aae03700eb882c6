package filesystem

import (
	"github.com/brettbedarf/collectionfs"
)

// DirNode is a directory in the collection tree. It holds its child file
// entries and child directories in two insertion-ordered maps.
//
// A name never appears in both maps of the same node. Every DirNode is owned
// by exactly one parent; there are no back references.
//
// NOTE: DirNode does no locking of its own; [Collection] guards the whole tree.
type DirNode struct {
	files *orderedMap[collectionfs.FileEntry]
	dirs  *orderedMap[*DirNode]
}

func NewDirNode() *DirNode {
	return &DirNode{
		files: newOrderedMap[collectionfs.FileEntry](),
		dirs:  newOrderedMap[*DirNode](),
	}
}

// File returns the file entry stored under name.
func (d *DirNode) File(name []byte) (collectionfs.FileEntry, bool) {
	return d.files.Load(string(name))
}

// Dir returns the subdirectory stored under name.
func (d *DirNode) Dir(name []byte) (*DirNode, bool) {
	return d.dirs.Load(string(name))
}

func (d *DirNode) HasFile(name []byte) bool {
	return d.files.Has(string(name))
}

func (d *DirNode) HasDir(name []byte) bool {
	return d.dirs.Has(string(name))
}

// IsEmpty reports whether the directory has neither files nor subdirectories.
func (d *DirNode) IsEmpty() bool {
	return d.files.Len() == 0 && d.dirs.Len() == 0
}

// Names returns the child names, subdirectories first then files, each group
// in insertion order.
func (d *DirNode) Names() []string {
	names := make([]string, 0, d.dirs.Len()+d.files.Len())
	names = append(names, d.dirs.keys...)
	return append(names, d.files.keys...)
}

// storeFile and addDir trust the caller to have checked the disjointness
// invariant against the other map.
func (d *DirNode) storeFile(name []byte, e collectionfs.FileEntry) {
	d.files.Store(string(name), e)
}

func (d *DirNode) addDir(name []byte) *DirNode {
	child := NewDirNode()
	d.dirs.Store(string(name), child)
	return child
}

func (d *DirNode) removeFile(name []byte) bool {
	return d.files.Delete(string(name))
}

func (d *DirNode) removeDir(name []byte) bool {
	return d.dirs.Delete(string(name))
}
