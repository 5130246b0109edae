// Package registry wires every concrete target generator into a single
// gen.Registry. It is a separate leaf package (rather than a
// gen.DefaultRegistry function) because each generator package imports
// gen itself; collecting them here avoids an import cycle.
package registry

import (
	"github.com/schemaforge/schemaforge/gen"
	"github.com/schemaforge/schemaforge/gen/doc"
	"github.com/schemaforge/schemaforge/gen/graphschema"
	"github.com/schemaforge/schemaforge/gen/nsmanager"
	"github.com/schemaforge/schemaforge/gen/queryschema"
	"github.com/schemaforge/schemaforge/gen/recordstruct"
	"github.com/schemaforge/schemaforge/gen/tableddl"
)

// Default returns a gen.Registry with every built-in generator
// registered under its canonical name.
func Default() *gen.Registry {
	reg := gen.NewRegistry()
	reg.Register(graphschema.New())
	reg.Register(recordstruct.New())
	reg.Register(tableddl.New())
	reg.Register(queryschema.New())
	reg.Register(doc.New())
	reg.Register(nsmanager.New())
	return reg
}
