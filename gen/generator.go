// Package gen hosts the Generator Framework (spec.md §4.2): a registry of
// named generators plus shared formatting primitives. It does not itself
// emit any target language — concrete generators live in gen/graphschema,
// gen/recordstruct, gen/tableddl, gen/queryschema, gen/doc and
// gen/nsmanager.
//
// The interface-segregation style (small, composable contracts rather than
// one monolithic interface) is grounded on compiler/gen/dialect.go's split
// of EntityGenerator/GraphGenerator/FeatureGenerator.
package gen

import (
	"sync"

	"github.com/schemaforge/schemaforge"
	"github.com/schemaforge/schemaforge/resolve"
)

// GeneratedFile is one output artifact produced by a Generator.
type GeneratedFile struct {
	Filename string
	Content  []byte
	Metadata map[string]string
}

// Generator is the contract every target emitter implements (§4.2).
type Generator interface {
	// Name is the stable registry key, e.g. "graph-schema".
	Name() string
	// FileExtensions lists the extensions this generator's output uses.
	FileExtensions() []string
	// ValidateSchema rejects schemas whose feature set this generator
	// cannot faithfully render.
	ValidateSchema(r *resolve.Resolved) error
	// Generate is deterministic for a given (schema, options) pair.
	Generate(r *resolve.Resolved, opts *Options) ([]GeneratedFile, error)
}

// Registry is a concurrency-safe name -> Generator map. Reads (Get/Names)
// may happen from many workers concurrently; writes (Register) require
// exclusive access and in practice only happen at construction time (§5
// "Shared-resource policy").
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Generator
	order  []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Generator)}
}

// Register adds g under its own Name(). Registering a name twice replaces
// the prior entry without reordering it.
func (reg *Registry) Register(g Generator) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	name := g.Name()
	if _, exists := reg.byName[name]; !exists {
		reg.order = append(reg.order, name)
	}
	reg.byName[name] = g
}

// Get returns the generator registered under name, or a
// GeneratorNotFoundError (§6 "Selecting an unknown name yields a
// GeneratorNotFound error").
func (reg *Registry) Get(name string) (Generator, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	g, ok := reg.byName[name]
	if !ok {
		return nil, schemaforge.NewGeneratorNotFoundError(name)
	}
	return g, nil
}

// Names returns the registered generator names in registration order.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]string, len(reg.order))
	copy(out, reg.order)
	return out
}
