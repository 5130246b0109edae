package ioformat

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/schemaforge/schemaforge"
	"github.com/schemaforge/schemaforge/model"
)

// msgpackRecord mirrors yamlRecord for the binary MessagePack encoding.
type msgpackRecord struct {
	Class string         `msgpack:"class"`
	ID    string         `msgpack:"id,omitempty"`
	Data  map[string]any `msgpack:"data"`
}

// MsgpackLoader loads a MessagePack-encoded list of instance records.
type MsgpackLoader struct{}

func (MsgpackLoader) Name() string                  { return "msgpack" }
func (MsgpackLoader) Description() string           { return "loads instance data from a MessagePack-encoded list of records" }
func (MsgpackLoader) SupportedExtensions() []string { return []string{".msgpack", ".mp"} }
func (MsgpackLoader) ValidateSchema(schema *model.Schema) error {
	if schema == nil {
		return schemaforge.NewSchemaValidationError("schema", "schema is nil")
	}
	return nil
}

func (MsgpackLoader) LoadBytes(data []byte, schema *model.Schema, opts *Options) ([]DataInstance, error) {
	var records []msgpackRecord
	if err := msgpack.Unmarshal(data, &records); err != nil {
		return nil, schemaforge.NewParseError("msgpack", err.Error())
	}
	out := make([]DataInstance, 0, len(records))
	for _, rec := range records {
		className := rec.Class
		if className == "" && opts != nil {
			className = opts.ClassNameHint
		}
		out = append(out, DataInstance{ClassName: className, Data: rec.Data, ID: rec.ID})
	}
	return out, nil
}

// MsgpackDumper emits the mirror-image MessagePack-encoded list.
type MsgpackDumper struct{}

func (MsgpackDumper) Name() string                  { return "msgpack" }
func (MsgpackDumper) Description() string           { return "dumps instance data as a MessagePack-encoded list of records" }
func (MsgpackDumper) SupportedExtensions() []string { return []string{".msgpack", ".mp"} }
func (MsgpackDumper) ValidateSchema(schema *model.Schema) error {
	if schema == nil {
		return schemaforge.NewSchemaValidationError("schema", "schema is nil")
	}
	return nil
}

func (MsgpackDumper) DumpBytes(instances []DataInstance, schema *model.Schema, opts *Options) ([]byte, error) {
	records := make([]msgpackRecord, 0, len(instances))
	for _, inst := range instances {
		records = append(records, msgpackRecord{Class: inst.ClassName, ID: inst.ID, Data: inst.Data})
	}
	out, err := msgpack.Marshal(records)
	if err != nil {
		return nil, schemaforge.NewGeneratorError("msgpack-dumper", "marshal failed", err)
	}
	return out, nil
}
