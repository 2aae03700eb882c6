package adapters

import (
	"net/http"

	"github.com/go-git/go-billy/v5"
)

// NOTE: If build bloat becomes a concern for unused sources
// look into build tags i.e. +build !nos3
// or nested packages with init() and main app can include just importing
// import (_ github.com/.../adapters/s3)

type BuiltInSourceType = string

const (
	HTTPSourceType   BuiltInSourceType = "http"
	DiskSourceType   BuiltInSourceType = "disk"
	MemorySourceType BuiltInSourceType = "memory"
	ZipSourceType    BuiltInSourceType = "zip"
	S3SourceType     BuiltInSourceType = "s3"
)

// Options configures the built-in source types
type Options struct {
	HTTPClient *http.Client     // Defaults to http.DefaultClient
	DiskRoot   string           // Base for relative disk paths; defaults to "/"
	Memory     billy.Filesystem // Shared by memory sources; defaults to a new memfs
}

// RegisterBuiltins registers all built-in source types by default
// or only the specific ones if keys are provided
func RegisterBuiltins(r *Registry, opts Options, types ...BuiltInSourceType) {
	if len(types) == 0 {
		// Include all built-in sources here when adding implementations
		types = append(types, HTTPSourceType, DiskSourceType, MemorySourceType, ZipSourceType, S3SourceType)
	}
	if opts.DiskRoot == "" {
		opts.DiskRoot = "/"
	}

	for _, key := range types {
		switch key {
		case HTTPSourceType:
			var client HTTPClient
			if opts.HTTPClient != nil {
				client = opts.HTTPClient
			}
			RegisterHTTP(r, client)
		case DiskSourceType:
			RegisterDisk(r, opts.DiskRoot)
		case MemorySourceType:
			RegisterMemory(r, opts.Memory)
		case ZipSourceType:
			RegisterZip(r)
		case S3SourceType:
			RegisterS3(r)
		}
	}
}
