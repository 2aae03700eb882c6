package fuse

import (
	"context"
	"errors"
	"io"
	"sync"
	"syscall"

	"github.com/brettbedarf/collectionfs"
	"github.com/brettbedarf/collectionfs/filesystem"
	"github.com/brettbedarf/collectionfs/internal/util"
	gofusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// readHandle serves kernel reads from a provider stream. Streams that can
// seek are seeked; others are read forward, and reopened for backward reads.
type readHandle struct {
	mu    sync.Mutex
	coll  *filesystem.Collection
	parts collectionfs.Parts
	r     io.ReadCloser
	pos   int64
}

func newReadHandle(coll *filesystem.Collection, parts collectionfs.Parts, r io.ReadCloser) *readHandle {
	return &readHandle{coll: coll, parts: parts, r: r}
}

func (h *readHandle) seek(off int64) error {
	if off == h.pos {
		return nil
	}
	if s, ok := h.r.(io.Seeker); ok {
		if _, err := s.Seek(off, io.SeekStart); err != nil {
			return err
		}
		h.pos = off
		return nil
	}
	if off < h.pos {
		r, err := h.coll.OpenRead(h.parts)
		if err != nil {
			return err
		}
		h.r.Close() //nolint:errcheck
		h.r, h.pos = r, 0
	}
	n, err := io.CopyN(io.Discard, h.r, off-h.pos)
	h.pos += n
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (h *readHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger := util.GetLogger("fuse.readHandle")

	if err := h.seek(off); err != nil {
		logger.Error().Err(err).Stringer("path", h.parts).Int64("offset", off).Msg("Seek failed")
		return nil, syscall.EIO
	}
	if off > h.pos {
		// Past the end of the stream
		return fuse.ReadResultData(nil), gofusefs.OK
	}

	n, err := io.ReadFull(h.r, dest)
	h.pos += int64(n)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		logger.Error().Err(err).Stringer("path", h.parts).Msg("Read failed")
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(dest[:n]), gofusefs.OK
}

func (h *readHandle) Release(ctx context.Context) syscall.Errno {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.r.Close() //nolint:errcheck
	return gofusefs.OK
}

// writeHandle forwards strictly sequential kernel writes to a provider
// stream. The stream is closed on the first flush so close(2) reports the
// provider's commit error.
type writeHandle struct {
	mu    sync.Mutex
	parts collectionfs.Parts
	w     io.WriteCloser
	pos   int64
}

func newWriteHandle(parts collectionfs.Parts, w io.WriteCloser) *writeHandle {
	return &writeHandle{parts: parts, w: w}
}

func (h *writeHandle) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.w == nil {
		return 0, syscall.EBADF
	}
	if off != h.pos {
		return 0, syscall.ESPIPE
	}
	n, err := h.w.Write(data)
	h.pos += int64(n)
	if err != nil {
		logger := util.GetLogger("fuse.writeHandle")
		logger.Error().Err(err).Stringer("path", h.parts).Msg("Write failed")
		return uint32(n), syscall.EIO
	}
	return uint32(n), gofusefs.OK
}

func (h *writeHandle) close() syscall.Errno {
	if h.w == nil {
		return gofusefs.OK
	}
	err := h.w.Close()
	h.w = nil
	if err != nil {
		logger := util.GetLogger("fuse.writeHandle")
		logger.Error().Err(err).Stringer("path", h.parts).Int64("bytes", h.pos).Msg("Commit failed")
		return syscall.EIO
	}
	return gofusefs.OK
}

func (h *writeHandle) Flush(ctx context.Context) syscall.Errno {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.close()
}

func (h *writeHandle) Release(ctx context.Context) syscall.Errno {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.close()
}

var (
	_ gofusefs.FileReader   = (*readHandle)(nil)
	_ gofusefs.FileReleaser = (*readHandle)(nil)
	_ gofusefs.FileWriter   = (*writeHandle)(nil)
	_ gofusefs.FileFlusher  = (*writeHandle)(nil)
	_ gofusefs.FileReleaser = (*writeHandle)(nil)
)
