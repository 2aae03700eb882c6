package requests

import (
	"encoding/json"
	"time"

	"github.com/brettbedarf/collectionfs"
)

// NodeRequestDTO is the JSON representation of [collectionfs.NodeRequest]
type NodeRequestDTO struct {
	Path     string                             `json:"path"`
	Type     collectionfs.NodeCreateRequestType `json:"type"`
	UUID     *string                            `json:"uuid,omitempty"`     // Optional UUID to correlate logs with the manifest
	Size     *int64                             `json:"size,omitempty"`     // Overrides the source's size provider
	Mtime    *time.Time                         `json:"mtime,omitempty"`    // Overrides the source's mtime provider
	ReadOnly *bool                              `json:"readOnly,omitempty"` // Drop the source's write provider (Default false)
}

// FileRequestDTO is the JSON representation of [collectionfs.FileCreateRequest]
type FileRequestDTO struct {
	NodeRequestDTO
	Source json.RawMessage `json:"source"`
}

type DirRequestDTO struct {
	NodeRequestDTO
}

// SourceConfigDTO is the JSON representation of static source fields
//
// Additional fields depend on the "type" value:
//
// Ex. For type="http" (see [adapters.HTTPSource]):
//
//	URL     string            `json:"url"`
//	Method  *string           `json:"method,omitempty"`
//	Headers map\[string\]string `json:"headers,omitempty"`
//
// See adapters package for built-ins complete field specifications.
type SourceConfigDTO struct {
	Type string `json:"type"`
}
