// Package ioformat defines the format-agnostic instance I/O contracts
// (spec.md §6 "Loader/Dumper contract"): the Loader/Dumper interfaces,
// the DataInstance shape they produce/consume, blank-node skolemization
// policies for the graph-triple loader, and the bounded-channel
// backpressure coordination between loaders and the Validation Engine.
//
// Concrete wire-format parsers for RDF/CSV/JSON beyond their semantic
// roles are out of scope (spec.md §1); this package ships the YAML and
// MessagePack loader/dumper pairs plus the graph-triple loader contract,
// since those are the formats the example pack's own dependencies cover.
package ioformat

import (
	"github.com/schemaforge/schemaforge/model"
)

// DataInstance is one loaded or dumped record (§6).
type DataInstance struct {
	ClassName string
	Data      map[string]any
	ID        string
	Metadata  map[string]string
}

// Options configures a single load or dump call. Custom holds
// format-specific keys the concrete loader/dumper recognizes.
type Options struct {
	ClassNameHint string
	Pretty        bool
	Custom        map[string]any
}

// Loader is the contract every format-specific instance reader implements
// (§6 "Each loader exposes { name, description, supported_extensions,
// load_bytes, validate_schema }").
type Loader interface {
	Name() string
	Description() string
	SupportedExtensions() []string
	LoadBytes(data []byte, schema *model.Schema, opts *Options) ([]DataInstance, error)
	ValidateSchema(schema *model.Schema) error
}

// Dumper mirrors Loader for the write direction.
type Dumper interface {
	Name() string
	Description() string
	SupportedExtensions() []string
	DumpBytes(instances []DataInstance, schema *model.Schema, opts *Options) ([]byte, error)
	ValidateSchema(schema *model.Schema) error
}
