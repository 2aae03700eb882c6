package filesystem

import (
	"github.com/brettbedarf/collectionfs"
	"github.com/brettbedarf/collectionfs/internal/util"
)

// resolveDir walks parts from the root and returns the terminal directory.
//
// With create set, missing directories are materialized along the way and a
// file sitting where a directory is needed fails with ErrExist. Without it,
// anything that is not an existing directory fails with ErrNotFound. Errors
// name the prefix up to and including the offending segment.
//
// Caller must hold c.mu (write-locked when create is set).
func (c *Collection) resolveDir(op string, parts collectionfs.Parts, create bool) (*DirNode, error) {
	cur := c.root
	newCnt := 0
	for i, name := range parts {
		if next, ok := cur.Dir(name); ok {
			cur = next
			continue
		}
		prefix := parts[:i+1]
		if !create {
			return nil, collectionfs.NewPathError(op, prefix, collectionfs.ErrNotFound)
		}
		if cur.HasFile(name) {
			return nil, collectionfs.NewPathError(op, prefix, collectionfs.ErrExist)
		}
		cur = cur.addDir(name)
		newCnt++
	}
	if newCnt > 0 {
		logger := util.GetLogger("Collection.resolveDir")
		logger.Debug().Str("op", op).Stringer("path", parts).Int("created", newCnt).Msg("Created missing dir(s)")
	}
	return cur, nil
}

// resolveFile returns the entry registered at parts.
//
// Caller must hold c.mu.
func (c *Collection) resolveFile(op string, parts collectionfs.Parts) (collectionfs.FileEntry, error) {
	if parts.IsRoot() {
		return collectionfs.FileEntry{}, collectionfs.NewPathError(op, parts, collectionfs.ErrIsDir)
	}
	dirParts, name := parts.Split()
	dir, err := c.resolveDir(op, dirParts, false)
	if err != nil {
		return collectionfs.FileEntry{}, err
	}
	if dir.HasDir(name) {
		return collectionfs.FileEntry{}, collectionfs.NewPathError(op, parts, collectionfs.ErrIsDir)
	}
	entry, ok := dir.File(name)
	if !ok {
		return collectionfs.FileEntry{}, collectionfs.NewPathError(op, parts, collectionfs.ErrNotFound)
	}
	return entry, nil
}
