package adapters

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"time"

	"github.com/brettbedarf/collectionfs"
	"github.com/brettbedarf/collectionfs/internal/util"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// S3Source contains the fields of an "s3" source: a single object in an
// S3-compatible store.
type S3Source struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"accessKey,omitempty"`
	SecretKey string `json:"secretKey,omitempty"`
	Region    string `json:"region,omitempty"`
	UseSSL    bool   `json:"useSSL,omitempty"`
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	ReadOnly  bool   `json:"readOnly,omitempty"`

	client *minio.Client
}

func RegisterS3(r *Registry) {
	r.Register(S3SourceType, func(raw []byte) (collectionfs.Source, error) {
		var s S3Source
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.Wrap(err, "decode s3 source")
		}
		if err := s.connect(); err != nil {
			return nil, err
		}
		return &s, nil
	})
}

// connect validates the fields and creates the client. No request is sent.
func (s *S3Source) connect() error {
	switch {
	case s.Endpoint == "":
		return errors.New("s3 source requires an endpoint")
	case s.Bucket == "":
		return errors.New("s3 source requires a bucket")
	case s.Key == "":
		return errors.New("s3 source requires a key")
	}

	client, err := minio.New(s.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s.AccessKey, s.SecretKey, ""),
		Secure: s.UseSSL,
		Region: s.Region,
	})
	if err != nil {
		return errors.Wrapf(err, "s3 client for %s", s.Endpoint)
	}
	s.client = client
	return nil
}

// Entry implements [collectionfs.Source]
func (s *S3Source) Entry() collectionfs.FileEntry {
	e := collectionfs.FileEntry{
		OpenRead: s.Open,
		Size:     s.Size,
		Mtime:    s.Mtime,
	}
	if !s.ReadOnly {
		e.OpenWrite = s.Create
	}
	return e
}

func (s *S3Source) Open() (io.ReadCloser, error) {
	obj, err := s.client.GetObject(context.Background(), s.Bucket, s.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "get s3://%s/%s", s.Bucket, s.Key)
	}
	return obj, nil
}

func (s *S3Source) stat() (minio.ObjectInfo, error) {
	info, err := s.client.StatObject(context.Background(), s.Bucket, s.Key, minio.StatObjectOptions{})
	if err != nil {
		return info, errors.Wrapf(err, "stat s3://%s/%s", s.Bucket, s.Key)
	}
	return info, nil
}

func (s *S3Source) Size() (int64, error) {
	info, err := s.stat()
	return info.Size, err
}

func (s *S3Source) Mtime() (time.Time, error) {
	info, err := s.stat()
	return info.LastModified, err
}

// Create streams writes into a single PutObject. The object is replaced when
// the returned writer is closed; Close reports the upload's result.
func (s *S3Source) Create() (io.WriteCloser, error) {
	pr, pw := io.Pipe()
	w := &objectWriter{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := s.client.PutObject(context.Background(), s.Bucket, s.Key, pr, -1,
			minio.PutObjectOptions{ContentType: "application/octet-stream"})
		if err != nil {
			logger := util.GetLogger("S3Source.Create")
			logger.Error().Err(err).Str("bucket", s.Bucket).Str("key", s.Key).Msg("Upload failed")
			err = errors.Wrapf(err, "put s3://%s/%s", s.Bucket, s.Key)
		}
		pr.CloseWithError(err)
		w.done <- err
	}()
	return w, nil
}

type objectWriter struct {
	pw     *io.PipeWriter
	done   chan error
	closed bool
}

func (w *objectWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *objectWriter) Close() error {
	if w.closed {
		return fs.ErrClosed
	}
	w.closed = true
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}
