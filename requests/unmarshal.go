package requests

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/collectionfs"
	"github.com/brettbedarf/collectionfs/adapters"
	"github.com/brettbedarf/collectionfs/internal/util"
)

// GetNodeType extracts the node type from JSON without full unmarshaling
func GetNodeType(data []byte) (collectionfs.NodeCreateRequestType, error) {
	var meta struct {
		Type collectionfs.NodeCreateRequestType `json:"type"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", errors.Wrap(err, "decode node type")
	}
	return meta.Type, nil
}

// UnmarshalFileRequest handles file-specific unmarshaling, building the
// source through reg
func UnmarshalFileRequest(reg *adapters.Registry, data []byte) (*collectionfs.FileCreateRequest, error) {
	var dto FileRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, errors.Wrap(err, "decode file request")
	}
	if err := validatePath(dto.Path); err != nil {
		return nil, err
	}
	if len(dto.Source) == 0 {
		return nil, errors.Errorf("file %q has no source", dto.Path)
	}

	var meta SourceConfigDTO
	if err := json.Unmarshal(dto.Source, &meta); err != nil {
		return nil, errors.Wrapf(err, "file %q: decode source", dto.Path)
	}
	src, err := reg.NewSource(dto.Source)
	if err != nil {
		return nil, errors.Wrapf(err, "file %q: %s source", dto.Path, meta.Type)
	}

	return &collectionfs.FileCreateRequest{
		NodeRequest: convertNodeDTO(dto.NodeRequestDTO),
		Source:      src,
	}, nil
}

// UnmarshalDirRequest handles explicit directory unmarshaling (no source)
func UnmarshalDirRequest(data []byte) (*collectionfs.DirCreateRequest, error) {
	var dto DirRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, errors.Wrap(err, "decode dir request")
	}
	if err := validatePath(dto.Path); err != nil {
		return nil, err
	}

	return &collectionfs.DirCreateRequest{
		NodeRequest: convertNodeDTO(dto.NodeRequestDTO),
	}, nil
}

// UnmarshalRequests decodes a JSON array of node definitions in order. The
// first invalid node aborts decoding.
func UnmarshalRequests(reg *adapters.Registry, data []byte) ([]collectionfs.CreateRequest, error) {
	logger := util.GetLogger("UnmarshalRequests")

	var rawNodes []json.RawMessage
	if err := json.Unmarshal(data, &rawNodes); err != nil {
		return nil, errors.Wrap(err, "decode node list")
	}

	reqs := make([]collectionfs.CreateRequest, 0, len(rawNodes))
	for i, rawNode := range rawNodes {
		nodeType, err := GetNodeType(rawNode)
		if err != nil {
			return nil, errors.Wrapf(err, "node %d", i)
		}

		switch nodeType {
		case collectionfs.FileNodeType:
			req, err := UnmarshalFileRequest(reg, rawNode)
			if err != nil {
				return nil, errors.Wrapf(err, "node %d", i)
			}
			reqs = append(reqs, req)
		case collectionfs.DirNodeType:
			req, err := UnmarshalDirRequest(rawNode)
			if err != nil {
				return nil, errors.Wrapf(err, "node %d", i)
			}
			reqs = append(reqs, req)
		default:
			return nil, errors.Errorf("node %d: unknown node type %q", i, nodeType)
		}
		logger.Trace().Int("index", i).Str("type", string(nodeType)).Msg("Decoded node")
	}
	return reqs, nil
}

// LoadManifestFile reads node definitions from a YAML (.yaml, .yml) or JSON
// (.json) file.
func LoadManifestFile(reg *adapters.Registry, path string) ([]collectionfs.CreateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if data, err = yamlToJSON(data); err != nil {
			return nil, errors.Wrapf(err, "manifest %s", path)
		}
	case ".json":
	default:
		return nil, errors.Errorf("unknown manifest file extension: %s", path)
	}

	reqs, err := UnmarshalRequests(reg, data)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}
	return reqs, nil
}

// yamlToJSON re-encodes a YAML document as JSON so source factories only
// need to understand one format
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "re-encode yaml as json")
	}
	return out, nil
}

func validatePath(p string) error {
	if collectionfs.ParseParts(p).IsRoot() {
		return errors.Errorf("invalid node path %q", p)
	}
	return nil
}

// Conversion logic with defaults in the unmarshaling layer
func convertNodeDTO(dto NodeRequestDTO) collectionfs.NodeRequest {
	return collectionfs.NodeRequest{
		Path:     dto.Path,
		Type:     dto.Type,
		UUID:     valueOrDefault(dto.UUID, uuid.New().String()),
		Size:     dto.Size,
		Mtime:    dto.Mtime,
		ReadOnly: valueOrDefault(dto.ReadOnly, false),
	}
}

func valueOrDefault[T any](ptr *T, defaultVal T) T {
	if ptr != nil {
		return *ptr
	}
	return defaultVal
}
