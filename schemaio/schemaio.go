// Package schemaio parses and serializes the Schema Model itself (spec.md
// §3, §8 "Round-trip"): the two textual encodings of a schema — a
// tree-structured YAML-style document and a JSON object graph — both
// decoding into, and re-encoding from, the same *model.Schema value.
//
// This is distinct from package ioformat, which loads and dumps instance
// *data* against an already-parsed schema; schemaio's job is producing
// that schema in the first place.
package schemaio

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/schemaforge/schemaforge"
	"github.com/schemaforge/schemaforge/model"
)

// Format names one of the two accepted schema text encodings (§8 "The
// parser accepts two textual encodings of the same in-memory model").
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Parse decodes data as format into a *model.Schema.
func Parse(data []byte, format Format) (*model.Schema, error) {
	var s model.Schema
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, schemaforge.NewParseError("schema-yaml", err.Error())
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, schemaforge.NewParseError("schema-json", err.Error())
		}
	default:
		return nil, schemaforge.NewConfigError("format", format, fmt.Sprintf("unrecognized schema format %q", format))
	}
	return &s, nil
}

// Serialize encodes s as format. Serialize(Parse(Serialize(s))) reproduces
// s's field values exactly (§8 "Round-trip": `parse(serialize(s)) = s`);
// byte-for-byte stability of the JSON encoding is not guaranteed across Go
// versions, only the decoded value.
func Serialize(s *model.Schema, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		out, err := yaml.Marshal(s)
		if err != nil {
			return nil, schemaforge.NewGeneratorError("schema-yaml", "marshal failed", err)
		}
		return out, nil
	case FormatJSON:
		out, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, schemaforge.NewGeneratorError("schema-json", "marshal failed", err)
		}
		return out, nil
	default:
		return nil, schemaforge.NewConfigError("format", format, fmt.Sprintf("unrecognized schema format %q", format))
	}
}

// DetectFormat picks FormatJSON when the first non-whitespace byte is '{'
// or '[', and FormatYAML otherwise — mirroring how a schema file's
// extension would be resolved by a front end that isn't this package's
// concern (spec.md §1 Non-goals: no filesystem/CLI plumbing here).
func DetectFormat(data []byte) Format {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{', '[':
			return FormatJSON
		default:
			return FormatYAML
		}
	}
	return FormatYAML
}
