// Package nsmanager implements the namespace-manager generator: a
// prefix-map artifact (a JSON-LD context document) capturing every
// declared prefix plus the default namespace, grounded on
// original_source/linkml-service/src/generator/namespace_manager.rs's
// prefix expand/contract bookkeeping, reshaped here from an
// emitted-language class into a portable context document any consumer
// can load.
package nsmanager

import (
	"encoding/json"

	"github.com/schemaforge/schemaforge/gen"
	"github.com/schemaforge/schemaforge/resolve"
)

// Generator implements gen.Generator for the namespace-manager target.
type Generator struct{}

// New returns a namespace-manager Generator.
func New() *Generator { return &Generator{} }

func (g *Generator) Name() string             { return "namespace-manager" }
func (g *Generator) FileExtensions() []string { return []string{".jsonld"} }

func (g *Generator) ValidateSchema(r *resolve.Resolved) error { return nil }

// context is a minimal JSON-LD @context document: a map from prefix to
// namespace URI, plus "@vocab" for the schema's default prefix.
type context struct {
	Vocab string            `json:"@vocab,omitempty"`
	Terms map[string]string `json:"-"`
}

// MarshalJSON flattens Terms alongside "@vocab" into a single object, the
// shape a JSON-LD consumer expects from an @context value.
func (c context) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Terms)+1)
	if c.Vocab != "" {
		out["@vocab"] = c.Vocab
	}
	for k, v := range c.Terms {
		out[k] = v
	}
	return json.Marshal(out)
}

// document is the top-level JSON-LD context file.
type document struct {
	Context context `json:"@context"`
}

// Generate emits one JSON-LD context file mapping every declared prefix
// to its namespace URI (§4.1 expand_curie's reference table), with
// "@vocab" set to the schema's default_prefix namespace when resolvable.
func (g *Generator) Generate(r *resolve.Resolved, opts *gen.Options) ([]gen.GeneratedFile, error) {
	if opts == nil {
		var err error
		opts, err = gen.NewOptions()
		if err != nil {
			return nil, err
		}
	}

	ctx := context{Terms: make(map[string]string)}
	for _, name := range r.Schema.Prefixes.Keys() {
		p, _ := r.Schema.Prefixes.Get(name)
		ctx.Terms[name] = p.PrefixReference
	}
	if r.Schema.DefaultPrefix != "" {
		if p, ok := r.Schema.Prefixes.Get(r.Schema.DefaultPrefix); ok {
			ctx.Vocab = p.PrefixReference
		}
	}

	doc := document{Context: ctx}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')

	return []gen.GeneratedFile{{
		Filename: "context.jsonld",
		Content:  data,
	}}, nil
}
