package collectionfs

import "time"

// NodeRequest has common fields embedded in concrete request types
type NodeRequest struct {
	Path string
	Type NodeCreateRequestType
	UUID string // Identifies the request in logs and error reports
	// Size and Mtime override whatever the source reports when set
	Size  *int64
	Mtime *time.Time
	// ReadOnly drops the source's write provider at registration
	ReadOnly bool
}

// NodeCreateRequestType valid types are FileNodeType "file", DirNodeType "dir"
type NodeCreateRequestType string

const (
	FileNodeType NodeCreateRequestType = "file"
	DirNodeType  NodeCreateRequestType = "dir"
)

type FileCreateRequest struct {
	NodeRequest
	Source Source
}

// Entry builds the FileEntry to register, applying the request's overrides on
// top of the source's providers.
func (r *FileCreateRequest) Entry() FileEntry {
	var e FileEntry
	if r.Source != nil {
		e = r.Source.Entry()
	}
	if r.Size != nil {
		e.Size = StaticSize(*r.Size)
	}
	if r.Mtime != nil {
		e.Mtime = StaticMtime(*r.Mtime)
	}
	if r.ReadOnly {
		e.OpenWrite = nil
	}
	return e
}

type DirCreateRequest struct {
	NodeRequest
}

// CreateRequest is implemented by *FileCreateRequest and *DirCreateRequest
type CreateRequest interface {
	Node() *NodeRequest
}

// Node returns the common request fields
func (r *NodeRequest) Node() *NodeRequest {
	return r
}
