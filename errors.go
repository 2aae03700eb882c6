package collectionfs

import (
	"errors"
	"fmt"
	"io/fs"
)

// Error kinds returned by collection operations. Test with [errors.Is]; the
// first two are the io/fs sentinels so callers can treat them like os errors.
var (
	// ErrNotFound indicates a required path segment is absent
	ErrNotFound = fs.ErrNotExist

	// ErrExist indicates a creation collided with an incompatible existing entry
	ErrExist = fs.ErrExist

	// ErrIsDir indicates a file was required but a directory (or the root) was found
	ErrIsDir = errors.New("is a directory")

	// ErrNotDir indicates a directory was required but a file was found
	ErrNotDir = errors.New("not a directory")

	// ErrUnsupported indicates a capability was not provided or the operation is stubbed
	ErrUnsupported = errors.ErrUnsupported

	// ErrNotEmpty indicates removal of a directory that still has children
	ErrNotEmpty = errors.New("directory not empty")
)

// PathError records a failed collection operation and the path it was applied to.
type PathError struct {
	Op    string // Operation that failed (e.g. "open", "rmdir")
	Parts Parts  // Offending path; may be a prefix of the requested path
	Err   error  // One of the Err* kinds above
}

// Error renders the full offending path, substituting U+FFFD for undecodable bytes.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s /%s: %v", e.Op, e.Parts, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError copies parts so later mutation by the caller does not alter the message.
func NewPathError(op string, parts Parts, err error) *PathError {
	return &PathError{Op: op, Parts: parts.Clone(), Err: err}
}
