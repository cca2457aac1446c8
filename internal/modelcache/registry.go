package modelcache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize bounds the number of compiled definitions kept per registry.
const DefaultSize = 128

// Registry holds the current compiled type definition per entity name.
// Swapping a definition is a process-global effect for that entity and is
// non-reentrant: it must not run concurrently with any read of the
// previously loaded definition.
type Registry struct {
	cache *lru.Cache[string, *Model]
}

func NewRegistry() *Registry {
	// Size is static and positive, so construction cannot fail.
	cache, err := lru.New[string, *Model](DefaultSize)
	if err != nil {
		panic(fmt.Sprintf("model registry: %v", err))
	}

	return &Registry{cache: cache}
}

// Lookup returns the currently loaded definition for an entity.
func (r *Registry) Lookup(name string) (*Model, bool) {
	return r.cache.Get(name)
}

// Swap recompiles the entity's definition from new schema text, purges the
// stale compiled artifact, and installs the new one.
func (r *Registry) Swap(name, schemaText string) (*Model, error) {
	model, err := Compile(name, schemaText)
	if err != nil {
		return nil, err
	}

	r.cache.Remove(name)
	r.cache.Add(name, model)

	return model, nil
}
