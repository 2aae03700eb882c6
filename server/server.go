package server

import (
	stderrors "errors"
	"os"

	"github.com/brettbedarf/collectionfs"
	"github.com/brettbedarf/collectionfs/config"
	"github.com/brettbedarf/collectionfs/filesystem"
	cfuse "github.com/brettbedarf/collectionfs/fuse"
	"github.com/brettbedarf/collectionfs/internal/util"
	gofusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/pkg/errors"
)

// Server owns a collection and the FUSE mount exposing it
type Server struct {
	*filesystem.Collection
	cfg    *config.Config
	server *fuse.Server
}

// New creates a Server with an empty collection given your config.
func New(cfg *config.Config) *Server {
	return &Server{
		filesystem.NewCollection(),
		cfg,
		nil,
	}
}

// Load applies create requests in order: dirs are created, files registered.
// Failed requests are logged and skipped; the returned error joins them.
func (s *Server) Load(reqs []collectionfs.CreateRequest) (dirs, files int, err error) {
	logger := util.GetLogger("Server.Load")

	var errs []error
	for _, req := range reqs {
		node := req.Node()
		var addErr error
		switch r := req.(type) {
		case *collectionfs.DirCreateRequest:
			if addErr = s.Path(r.Path).Mkdirs(); addErr == nil {
				dirs++
			}
		case *collectionfs.FileCreateRequest:
			if addErr = s.Path(r.Path).AddFile(r.Entry()); addErr == nil {
				files++
			}
		default:
			addErr = errors.Errorf("unsupported request %T", req)
		}
		if addErr != nil {
			logger.Error().Err(addErr).Str("uuid", node.UUID).Str("path", node.Path).Msg("Failed to add node")
			errs = append(errs, errors.Wrapf(addErr, "request %s", node.UUID))
		}
	}

	logger.Info().Int("directories", dirs).Int("files", files).Msg("Added new nodes to collection")
	return dirs, files, stderrors.Join(errs...)
}

func (s *Server) fuseOptions() *gofusefs.Options {
	attrTimeout := config.Seconds(s.cfg.AttrTimeout)
	entryTimeout := config.Seconds(s.cfg.EntryTimeout)
	opts := &gofusefs.Options{
		MountOptions: fuse.MountOptions{
			Name:     s.cfg.Name,
			FsName:   s.cfg.FsName,
			Debug:    s.cfg.Debug,
			MaxWrite: s.cfg.MaxWrite,
			Logger:   util.NewLogLogger("FuseServer", util.DebugLevel),
		},
		AttrTimeout:  &attrTimeout,
		EntryTimeout: &entryTimeout,
		Logger:       util.NewLogLogger("FuseBridge", util.DebugLevel),
	}
	if s.cfg.ReadOnly {
		opts.Options = append(opts.Options, "ro")
	}
	return opts
}

// Serve mounts and serves the collection at the given mountPoint.
func (s *Server) Serve(mountPoint string) error {
	root := cfuse.NewRoot(s.Collection, cfuse.Options{
		ReadOnly:     s.cfg.ReadOnly,
		DirectIO:     s.cfg.DirectIO,
		AttrTimeout:  config.Seconds(s.cfg.AttrTimeout),
		EntryTimeout: config.Seconds(s.cfg.EntryTimeout),
		Uid:          uint32(os.Getuid()),
		Gid:          uint32(os.Getgid()),
	})

	srv, err := gofusefs.Mount(mountPoint, root, s.fuseOptions())
	if err != nil {
		return errors.Wrapf(err, "mount %s", mountPoint)
	}
	s.server = srv
	return nil
}

func (s *Server) ServeAsync(mountPoint string) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- s.Serve(mountPoint)
		close(done)
	}()

	return done
}

// Wait blocks until the filesystem is unmounted.
func (s *Server) Wait() {
	if s.server != nil {
		s.server.Wait()
	}
}

// Unmount cleanly unmounts the filesystem.
func (s *Server) Unmount() error {
	if s.server == nil {
		return nil
	}
	return s.server.Unmount()
}

// Config returns the server's config. Changes take effect on the next Serve.
func (s *Server) Config() *config.Config {
	return s.cfg
}
