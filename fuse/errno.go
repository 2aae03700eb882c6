package fuse

import (
	"errors"
	"syscall"

	"github.com/brettbedarf/collectionfs"
	gofusefs "github.com/hanwen/go-fuse/v2/fs"
)

// ToErrno maps collection errors onto the errno reported to the kernel.
// Errors of unknown kind (e.g. a failing provider) become EIO.
func ToErrno(err error) syscall.Errno {
	switch {
	case err == nil:
		return gofusefs.OK
	case errors.Is(err, collectionfs.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, collectionfs.ErrExist):
		return syscall.EEXIST
	case errors.Is(err, collectionfs.ErrIsDir):
		return syscall.EISDIR
	case errors.Is(err, collectionfs.ErrNotDir):
		return syscall.ENOTDIR
	case errors.Is(err, collectionfs.ErrNotEmpty):
		return syscall.ENOTEMPTY
	case errors.Is(err, collectionfs.ErrUnsupported):
		return syscall.ENOTSUP
	default:
		return syscall.EIO
	}
}
