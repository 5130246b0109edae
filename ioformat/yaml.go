package ioformat

import (
	"gopkg.in/yaml.v3"

	"github.com/schemaforge/schemaforge"
	"github.com/schemaforge/schemaforge/model"
)

// yamlRecord is the on-disk shape for one instance: a `class` discriminator
// plus the instance fields themselves, nested under `data`. Both the
// loader and the dumper use a single top-level list of such records; the
// loader reads only the first YAML document of its input.
type yamlRecord struct {
	Class string         `yaml:"class"`
	ID    string         `yaml:"id,omitempty"`
	Data  map[string]any `yaml:"data"`
}

// YAMLLoader loads a list of yamlRecord documents.
type YAMLLoader struct{}

func (YAMLLoader) Name() string                   { return "yaml" }
func (YAMLLoader) Description() string            { return "loads instance data from a YAML list of {class, id, data} records" }
func (YAMLLoader) SupportedExtensions() []string  { return []string{".yaml", ".yml"} }
func (YAMLLoader) ValidateSchema(schema *model.Schema) error {
	if schema == nil {
		return schemaforge.NewSchemaValidationError("schema", "schema is nil")
	}
	return nil
}

func (YAMLLoader) LoadBytes(data []byte, schema *model.Schema, opts *Options) ([]DataInstance, error) {
	var records []yamlRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, schemaforge.NewParseError("yaml", err.Error())
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

// YAMLDumper emits the mirror-image list of yamlRecord documents.
type YAMLDumper struct{}

func (YAMLDumper) Name() string                  { return "yaml" }
func (YAMLDumper) Description() string           { return "dumps instance data as a YAML list of {class, id, data} records" }
func (YAMLDumper) SupportedExtensions() []string { return []string{".yaml", ".yml"} }
func (YAMLDumper) ValidateSchema(schema *model.Schema) error {
	if schema == nil {
		return schemaforge.NewSchemaValidationError("schema", "schema is nil")
	}
	return nil
}

func (YAMLDumper) DumpBytes(instances []DataInstance, schema *model.Schema, opts *Options) ([]byte, error) {
	records := make([]yamlRecord, 0, len(instances))
	for _, inst := range instances {
		records = append(records, yamlRecord{Class: inst.ClassName, ID: inst.ID, Data: inst.Data})
	}
	out, err := yaml.Marshal(records)
	if err != nil {
		return nil, schemaforge.NewGeneratorError("yaml-dumper", "marshal failed", err)
	}
	return out, nil
}
