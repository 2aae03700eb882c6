package adapters

import (
	"encoding/json"

	"github.com/brettbedarf/collectionfs"
	"github.com/brettbedarf/collectionfs/internal/util"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v4"
)

// Factory builds a Source from the raw JSON of a manifest's "source" object.
type Factory func(raw []byte) (collectionfs.Source, error)

// Registry maps a source "type" key to the Factory that decodes it. It is
// safe for concurrent use.
type Registry struct {
	factories *xsync.Map[string, Factory]
}

func NewRegistry() *Registry {
	return &Registry{factories: xsync.NewMap[string, Factory]()}
}

// Register ties a factory to a "type" key and should be called for each
// source type during app init. The first registration of a key wins.
func (r *Registry) Register(sourceType string, f Factory) {
	if _, loaded := r.factories.LoadOrStore(sourceType, f); loaded {
		logger := util.GetLogger("Registry.Register")
		logger.Warn().Str("type", sourceType).Msg("Source type already registered; ignoring")
	}
}

// Factory returns the factory registered for sourceType.
func (r *Registry) Factory(sourceType string) (Factory, error) {
	f, ok := r.factories.Load(sourceType)
	if !ok {
		return nil, errors.Errorf("no factory for source type %q", sourceType)
	}
	return f, nil
}

// Types lists the registered source type keys in no particular order.
func (r *Registry) Types() []string {
	types := make([]string, 0, r.factories.Size())
	r.factories.Range(func(k string, _ Factory) bool {
		types = append(types, k)
		return true
	})
	return types
}

// NewSource picks the right factory based on the "type" field of raw.
// All expected source types should be registered with [Registry.Register]
// before calling this method.
func (r *Registry) NewSource(raw []byte) (collectionfs.Source, error) {
	var meta struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, errors.Wrap(err, "decode source type")
	}
	if meta.Type == "" {
		return nil, errors.New("source is missing a \"type\" field")
	}
	f, err := r.Factory(meta.Type)
	if err != nil {
		return nil, err
	}
	return f(raw)
}
