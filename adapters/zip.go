package adapters

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/brettbedarf/collectionfs"
	"github.com/brettbedarf/collectionfs/filesystem"
	"github.com/brettbedarf/collectionfs/internal/util"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

// ZipSource is a single member of a zip archive on disk. Members are
// read-only; every open re-opens the archive so no handle outlives a read.
type ZipSource struct {
	Archive string `json:"archive"`
	Member  string `json:"member"`

	// Populated by archive scans so Size and Mtime need no I/O
	size  *int64
	mtime *time.Time
}

func RegisterZip(r *Registry) {
	r.Register(ZipSourceType, func(raw []byte) (collectionfs.Source, error) {
		var s ZipSource
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.Wrap(err, "decode zip source")
		}
		if s.Archive == "" || s.Member == "" {
			return nil, errors.New("zip source requires archive and member")
		}
		return &s, nil
	})
}

// Entry implements [collectionfs.Source]
func (z *ZipSource) Entry() collectionfs.FileEntry {
	e := collectionfs.FileEntry{
		OpenRead: z.Open,
		Size:     z.Size,
		Mtime:    z.Mtime,
	}
	if z.size != nil {
		e.Size = collectionfs.StaticSize(*z.size)
	}
	if z.mtime != nil {
		e.Mtime = collectionfs.StaticMtime(*z.mtime)
	}
	return e
}

// memberReader closes the archive along with the member stream
type memberReader struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (m *memberReader) Close() error {
	err := m.ReadCloser.Close()
	if cerr := m.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

func (z *ZipSource) Open() (io.ReadCloser, error) {
	zr, f, err := z.find()
	if err != nil {
		return nil, err
	}
	rc, err := f.Open()
	if err != nil {
		zr.Close()
		return nil, errors.Wrapf(err, "open %s in %s", z.Member, z.Archive)
	}
	return &memberReader{ReadCloser: rc, archive: zr}, nil
}

func (z *ZipSource) Size() (int64, error) {
	zr, f, err := z.find()
	if err != nil {
		return 0, err
	}
	defer zr.Close()
	return int64(f.UncompressedSize64), nil
}

func (z *ZipSource) Mtime() (time.Time, error) {
	zr, f, err := z.find()
	if err != nil {
		return time.Time{}, err
	}
	defer zr.Close()
	return f.Modified, nil
}

// find opens the archive and locates the member. The caller closes the archive.
func (z *ZipSource) find() (*zip.ReadCloser, *zip.File, error) {
	zr, err := zip.OpenReader(z.Archive)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open archive %s", z.Archive)
	}
	for _, f := range zr.File {
		if f.Name == z.Member {
			return zr, f, nil
		}
	}
	zr.Close()
	return nil, nil, errors.Wrapf(collectionfs.ErrNotFound, "member %s in %s", z.Member, z.Archive)
}

// AddArchive registers every file member of the zip archive at archivePath
// below dst, recreating the archive's directory layout. Explicit directory
// members become (possibly empty) directories. It returns the number of files
// registered.
func AddArchive(dst *filesystem.Path, archivePath string) (int, error) {
	logger := util.GetLogger("AddArchive")

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, errors.Wrapf(err, "open archive %s", archivePath)
	}
	defer zr.Close()

	count := 0
	for _, f := range zr.File {
		target := dst.Join(f.Name)
		if strings.HasSuffix(f.Name, "/") {
			if err := target.Mkdirs(); err != nil {
				return count, errors.Wrapf(err, "archive dir %s", f.Name)
			}
			continue
		}

		size := int64(f.UncompressedSize64)
		mtime := f.Modified
		src := &ZipSource{Archive: archivePath, Member: f.Name, size: &size, mtime: &mtime}
		if err := target.AddSource(src); err != nil {
			return count, errors.Wrapf(err, "archive member %s", f.Name)
		}
		count++
	}

	logger.Debug().
		Str("archive", archivePath).
		Stringer("dst", dst).
		Int("files", count).
		Msg("Registered archive members")
	return count, nil
}
